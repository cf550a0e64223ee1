package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/dex"
	"github.com/cory-johannsen/evspread/internal/game/stats"
	"github.com/cory-johannsen/evspread/internal/game/typechart"
)

// ErrDexEmpty is returned by Load when no type chart has been imported.
var ErrDexEmpty = errors.New("dex is empty")

// DexCounts reports how many rows of each table a Save wrote or a Load read.
type DexCounts struct {
	Types   int
	Entries int
	Species int
	Moves   int
	Natures int
}

// DexRepository persists the reference data behind a dex.Registry.
type DexRepository struct {
	db *pgxpool.Pool
}

// NewDexRepository creates a DexRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewDexRepository(db *pgxpool.Pool) *DexRepository {
	return &DexRepository{db: db}
}

// Save upserts every type, chart entry, species, move and nature of r in one
// transaction. Rows absent from r are left in place.
//
// Precondition: r must be non-nil.
// Postcondition: Returns the number of rows written per table, or an error
// with nothing committed.
func (d *DexRepository) Save(ctx context.Context, r *dex.Registry) (DexCounts, error) {
	var counts DexCounts
	err := pgx.BeginFunc(ctx, d.db, func(tx pgx.Tx) error {
		chart := r.TypeChart()
		for _, t := range chart.Types() {
			if _, err := tx.Exec(ctx,
				`INSERT INTO dex_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, t); err != nil {
				return fmt.Errorf("upserting type %s: %w", t, err)
			}
			counts.Types++
		}
		for _, e := range chart.Entries() {
			if _, err := tx.Exec(ctx,
				`INSERT INTO dex_type_chart (attack, defend, multiplier) VALUES ($1, $2, $3)
				 ON CONFLICT (attack, defend) DO UPDATE SET multiplier = EXCLUDED.multiplier`,
				e.Attack, e.Defend, e.Multiplier); err != nil {
				return fmt.Errorf("upserting chart entry %s/%s: %w", e.Attack, e.Defend, err)
			}
			counts.Entries++
		}
		for _, sp := range r.AllSpecies() {
			b := sp.Base
			if _, err := tx.Exec(ctx,
				`INSERT INTO dex_species (id, name, hp, atk, def, spa, spd, spe, types)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				 ON CONFLICT (id) DO UPDATE SET
				   name = EXCLUDED.name, hp = EXCLUDED.hp, atk = EXCLUDED.atk, def = EXCLUDED.def,
				   spa = EXCLUDED.spa, spd = EXCLUDED.spd, spe = EXCLUDED.spe, types = EXCLUDED.types`,
				sp.ID, sp.Name, b[stats.HP], b[stats.Atk], b[stats.Def], b[stats.SpAtk], b[stats.SpDef], b[stats.Speed], sp.Types,
			); err != nil {
				return fmt.Errorf("upserting species %s: %w", sp.ID, err)
			}
			counts.Species++
		}
		for _, m := range r.AllMoves() {
			if _, err := tx.Exec(ctx,
				`INSERT INTO dex_moves (name, type, power, category, accuracy)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (name) DO UPDATE SET
				   type = EXCLUDED.type, power = EXCLUDED.power,
				   category = EXCLUDED.category, accuracy = EXCLUDED.accuracy`,
				m.Name, m.Type, m.Power, m.Category.String(), m.Accuracy,
			); err != nil {
				return fmt.Errorf("upserting move %s: %w", m.Name, err)
			}
			counts.Moves++
		}
		for _, n := range r.AllNatures() {
			boosted, reduced := natureColumns(n)
			if _, err := tx.Exec(ctx,
				`INSERT INTO dex_natures (name, boosted, reduced) VALUES ($1, $2, $3)
				 ON CONFLICT (name) DO UPDATE SET boosted = EXCLUDED.boosted, reduced = EXCLUDED.reduced`,
				n.Name, boosted, reduced,
			); err != nil {
				return fmt.Errorf("upserting nature %s: %w", n.Name, err)
			}
			counts.Natures++
		}
		return nil
	})
	if err != nil {
		return DexCounts{}, err
	}
	return counts, nil
}

// natureColumns maps each side of n to a nullable column. A neutral nature
// stores NULL in both; a one-sided nature stores NULL on its missing side.
func natureColumns(n stats.Nature) (boosted, reduced *string) {
	if n.IsNeutral() {
		return nil, nil
	}
	return statColumn(n.Boosted), statColumn(n.Reduced)
}

func statColumn(s stats.Stat) *string {
	if !s.Valid() {
		return nil
	}
	name := s.String()
	return &name
}

// parseStatColumn is the inverse of statColumn: NULL yields stats.None.
func parseStatColumn(col *string) (stats.Stat, error) {
	if col == nil {
		return stats.None, nil
	}
	return stats.ParseStat(*col)
}

// Load reads the whole dex into a validated Registry. The standard natures are
// always present; stored natures add to or override them.
//
// Postcondition: Returns a Registry, ErrDexEmpty when no types are stored, or
// a non-nil error.
func (d *DexRepository) Load(ctx context.Context) (*dex.Registry, DexCounts, error) {
	var counts DexCounts
	chart := typechart.New()

	types, err := collect(ctx, d.db, `SELECT name FROM dex_types ORDER BY name`, func(row pgx.CollectableRow) (string, error) {
		var name string
		return name, row.Scan(&name)
	})
	if err != nil {
		return nil, counts, fmt.Errorf("querying types: %w", err)
	}
	if len(types) == 0 {
		return nil, counts, ErrDexEmpty
	}
	for _, t := range types {
		chart.AddType(t)
	}
	counts.Types = len(types)

	entries, err := collect(ctx, d.db, `SELECT attack, defend, multiplier FROM dex_type_chart`, func(row pgx.CollectableRow) (typechart.Entry, error) {
		var e typechart.Entry
		return e, row.Scan(&e.Attack, &e.Defend, &e.Multiplier)
	})
	if err != nil {
		return nil, counts, fmt.Errorf("querying type chart: %w", err)
	}
	for _, e := range entries {
		chart.Set(e.Attack, e.Defend, e.Multiplier)
	}
	counts.Entries = len(entries)
	r := dex.NewRegistry(chart)

	species, err := collect(ctx, d.db,
		`SELECT id, name, hp, atk, def, spa, spd, spe, types FROM dex_species`,
		func(row pgx.CollectableRow) (dex.Species, error) {
			var sp dex.Species
			b := &sp.Base
			err := row.Scan(&sp.ID, &sp.Name, &b[stats.HP], &b[stats.Atk], &b[stats.Def], &b[stats.SpAtk], &b[stats.SpDef], &b[stats.Speed], &sp.Types)
			return sp, err
		})
	if err != nil {
		return nil, counts, fmt.Errorf("querying species: %w", err)
	}
	for _, sp := range species {
		r.RegisterSpecies(sp)
	}
	counts.Species = len(species)

	moves, err := collect(ctx, d.db,
		`SELECT name, type, power, category, accuracy FROM dex_moves`,
		func(row pgx.CollectableRow) (damage.Move, error) {
			var m damage.Move
			var cat string
			if err := row.Scan(&m.Name, &m.Type, &m.Power, &cat, &m.Accuracy); err != nil {
				return m, err
			}
			c, err := damage.ParseCategory(cat)
			m.Category = c
			return m, err
		})
	if err != nil {
		return nil, counts, fmt.Errorf("querying moves: %w", err)
	}
	for _, m := range moves {
		r.RegisterMove(m)
	}
	counts.Moves = len(moves)

	natures, err := collect(ctx, d.db,
		`SELECT name, boosted, reduced FROM dex_natures`,
		func(row pgx.CollectableRow) (stats.Nature, error) {
			var name string
			var boosted, reduced *string
			if err := row.Scan(&name, &boosted, &reduced); err != nil {
				return stats.Nature{}, err
			}
			n := stats.Neutral(name)
			var err error
			if n.Boosted, err = parseStatColumn(boosted); err != nil {
				return n, fmt.Errorf("nature %s boosted: %w", name, err)
			}
			if n.Reduced, err = parseStatColumn(reduced); err != nil {
				return n, fmt.Errorf("nature %s reduced: %w", name, err)
			}
			return n, nil
		})
	if err != nil {
		return nil, counts, fmt.Errorf("querying natures: %w", err)
	}
	for _, n := range natures {
		r.RegisterNature(n)
	}
	counts.Natures = len(natures)

	if err := r.Validate(); err != nil {
		return nil, counts, err
	}
	return r, counts, nil
}

// collect runs query and scans every row with scan.
func collect[T any](ctx context.Context, db *pgxpool.Pool, query string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}
