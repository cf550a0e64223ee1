// Package main provides the evspread binary that solves EV allocation
// requests from a YAML file and reports the resulting spreads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/evspread/internal/config"
	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/dex"
	"github.com/cory-johannsen/evspread/internal/game/dice"
	"github.com/cory-johannsen/evspread/internal/game/optimizer"
	"github.com/cory-johannsen/evspread/internal/game/stats"
	"github.com/cory-johannsen/evspread/internal/observability"
	"github.com/cory-johannsen/evspread/internal/output"
	"github.com/cory-johannsen/evspread/internal/scripting"
	"github.com/cory-johannsen/evspread/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	requestsPath := flag.String("requests", "content/requests/example.yaml", "path to the request YAML file")
	reportDir := flag.String("report-dir", "", "directory for the xlsx report; overrides output.dir")
	reportName := flag.String("report-name", "spreads", "base name of the xlsx report")
	attacker := flag.String("attacker", "", "damage mode: attacking species")
	defender := flag.String("defender", "", "damage mode: defending species")
	moveName := flag.String("move", "", "damage mode: move name or comma-separated move names")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	registry, err := loadDex(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("loading dex", zap.Error(err))
	}

	opts := []damage.Option{}
	if cfg.Scripting.Dir != "" {
		scripts := scripting.NewManager(logger)
		if err := scripts.Load(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading modifier scripts", zap.String("dir", cfg.Scripting.Dir), zap.Error(err))
		}
		defer scripts.Close()
		opts = append(opts, damage.WithHook(scripts))
		logger.Info("modifier scripts loaded", zap.String("dir", cfg.Scripting.Dir))
	}
	calc, err := newCalculator(cfg.Solver, registry, logger, opts...)
	if err != nil {
		logger.Fatal("building calculator", zap.Error(err))
	}

	if *attacker != "" || *defender != "" || *moveName != "" {
		if err := printDamage(calc, registry, *attacker, *defender, *moveName); err != nil {
			logger.Fatal("damage calculation", zap.Error(err))
		}
		return
	}

	file, err := optimizer.LoadFile(*requestsPath)
	if err != nil {
		logger.Fatal("loading requests", zap.Error(err))
	}
	reqs, err := file.Resolve(registry)
	if err != nil {
		logger.Fatal("resolving requests", zap.String("path", *requestsPath), zap.Error(err))
	}

	solver := optimizer.NewSolver(calc, logger, cfg.Solver.Workers)
	results, err := solver.SolveBatch(ctx, reqs)
	if err != nil {
		logger.Fatal("solving requests", zap.Error(err))
	}
	fmt.Fprint(os.Stdout, output.RenderResults(results))

	dir := cfg.Output.Dir
	if *reportDir != "" {
		dir = *reportDir
	}
	if dir != "" {
		path, err := output.ExportXLSX(dir, *reportName, results, time.Now())
		if err != nil {
			logger.Fatal("writing report", zap.Error(err))
		}
		logger.Info("report written", zap.String("path", path))
	}

	logger.Info("evspread finished",
		zap.Int("requests", len(reqs)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// loadDex reads reference data from the configured source.
func loadDex(ctx context.Context, cfg config.Config, logger *zap.Logger) (*dex.Registry, error) {
	dexStart := time.Now()
	switch cfg.Dex.Source {
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		if err := pool.CheckSchema(ctx); err != nil {
			return nil, err
		}
		registry, counts, err := pool.Dex().Load(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("dex loaded",
			zap.String("source", cfg.Dex.Source),
			zap.String("host", cfg.Database.Host),
			zap.Int("species", counts.Species),
			zap.Int("moves", counts.Moves),
			zap.Duration("elapsed", time.Since(dexStart)),
		)
		return registry, nil
	default:
		registry, err := dex.LoadDir(cfg.Dex.Dir)
		if err != nil {
			return nil, err
		}
		logger.Info("dex loaded",
			zap.String("source", config.SourceYAML),
			zap.String("dir", cfg.Dex.Dir),
			zap.Int("species", len(registry.AllSpecies())),
			zap.Int("moves", len(registry.AllMoves())),
			zap.Duration("elapsed", time.Since(dexStart)),
		)
		return registry, nil
	}
}

// newCalculator builds the damage calculator. A non-zero seed makes unpinned
// rolls reproducible; otherwise they come from crypto/rand.
func newCalculator(sc config.SolverConfig, registry *dex.Registry, logger *zap.Logger, opts ...damage.Option) (*damage.Calculator, error) {
	mode, err := damage.ParseRetypeMode(sc.RetypeMode)
	if err != nil {
		return nil, err
	}
	src := dice.NewCryptoSource()
	if sc.Seed != 0 {
		src = dice.NewSeededSource(sc.Seed)
	}
	opts = append(opts,
		damage.WithRetypeMode(mode),
		damage.WithVariance(dice.NewLoggedRoller(src, logger)),
	)
	return damage.NewCalculator(registry.Chart(), opts...), nil
}

// printDamage reports each listed move between two default sets of the named species.
func printDamage(calc *damage.Calculator, registry *dex.Registry, attacker, defender, moveNames string) error {
	if attacker == "" || defender == "" || moveNames == "" {
		return fmt.Errorf("damage mode needs -attacker, -defender and -move")
	}
	atk, err := dex.Build(registry, dex.CreatureSet{Species: attacker, Moves: strings.Split(moveNames, ",")})
	if err != nil {
		return err
	}
	def, err := dex.Build(registry, dex.CreatureSet{Species: defender})
	if err != nil {
		return err
	}
	moves, err := dex.Moves(registry, atk)
	if err != nil {
		return err
	}
	hp := def.Compute(stats.HP)
	for _, mv := range moves {
		lo, hi, err := calc.Range(atk, def, mv, damage.Conditions{})
		if err != nil {
			return err
		}
		b, err := calc.Breakdown(atk, def, mv, damage.Conditions{Variance: dice.High})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s %s vs %s: %d-%d (%.1f%%-%.1f%% of %d HP)\n",
			atk.Species, mv.Name, def.Species, lo, hi,
			100*float64(lo)/float64(hp), 100*float64(hi)/float64(hp), hp)
		fmt.Fprintf(os.Stdout, "  base %d  stab %.2f  type %.2f  ability %.2f  item %.2f\n",
			b.Base, b.STAB, b.Effectiveness, b.Ability, b.Item)
	}
	return nil
}
