package damage

// Weather is an optional field condition. The zero value means no weather.
type Weather string

const (
	WeatherNone Weather = ""
	Sun         Weather = "sun"
	Rain        Weather = "rain"
	Sand        Weather = "sand"
	Hail        Weather = "hail"
)

// Terrain is an optional field condition. The zero value means no terrain.
type Terrain string

const (
	TerrainNone     Terrain = ""
	ElectricTerrain Terrain = "electric"
	GrassyTerrain   Terrain = "grassy"
	PsychicTerrain  Terrain = "psychic"
	MistyTerrain    Terrain = "misty"
)

var weatherTable = map[Weather]map[string]float64{
	Sun:  {"fire": 1.5, "water": 0.5},
	Rain: {"water": 1.5, "fire": 0.5},
	Sand: {"rock": 1.5},
	Hail: {"ice": 1.5},
}

var terrainTable = map[Terrain]map[string]float64{
	ElectricTerrain: {"electric": 1.5},
	GrassyTerrain:   {"grass": 1.5},
	PsychicTerrain:  {"psychic": 1.5},
	MistyTerrain:    {"dragon": 0.5},
}

// Valid reports whether w is a known weather.
func (w Weather) Valid() bool {
	_, ok := weatherTable[w]
	return ok || w == WeatherNone
}

// Valid reports whether t is a known terrain.
func (t Terrain) Valid() bool {
	_, ok := terrainTable[t]
	return ok || t == TerrainNone
}

func weatherFactor(w Weather, moveType string) float64 {
	if m, ok := weatherTable[w][moveType]; ok {
		return m
	}
	return 1.0
}

func terrainFactor(t Terrain, moveType string) float64 {
	if m, ok := terrainTable[t][moveType]; ok {
		return m
	}
	return 1.0
}

const (
	adaptability = "adaptability"
	technician   = "technician"
	tintedLens   = "tinted_lens"
	neuroforce   = "neuroforce"

	technicianCap = 60
	stabBonus     = 1.5
	stabAdapted   = 2.0
	critBonus     = 1.5
	burnPenalty   = 0.5
	retypeBonus   = 1.2
)

// retypers turn normal-type moves into another type.
var retypers = map[string]string{
	"aerilate":    "flying",
	"pixilate":    "fairy",
	"refrigerate": "ice",
	"galvanize":   "electric",
}

const retypeTrigger = "normal"

// abilityFactor applies the fixed ability table. Retyping is handled by the caller.
func abilityFactor(ability string, power int, effectiveness float64, retyped bool) float64 {
	switch ability {
	case technician:
		if power <= technicianCap {
			return 1.5
		}
	case tintedLens:
		if effectiveness > 0 && effectiveness < 1 {
			return 2.0
		}
	case neuroforce:
		if effectiveness > 1 {
			return 1.25
		}
	}
	if retyped {
		return retypeBonus
	}
	return 1.0
}

// knownAbility reports whether ability is handled by the fixed table.
func knownAbility(ability string) bool {
	switch ability {
	case adaptability, technician, tintedLens, neuroforce:
		return true
	}
	_, ok := retypers[ability]
	return ok
}

var itemTable = map[string]func(cat Category, effectiveness float64) float64{
	"choice_band":  func(c Category, _ float64) float64 { return pick(c == Physical, 1.5) },
	"choice_specs": func(c Category, _ float64) float64 { return pick(c == Special, 1.5) },
	"life_orb":     func(Category, float64) float64 { return 1.3 },
	"expert_belt":  func(_ Category, eff float64) float64 { return pick(eff > 1, 1.2) },
	"muscle_band":  func(c Category, _ float64) float64 { return pick(c == Physical, 1.1) },
	"wise_glasses": func(c Category, _ float64) float64 { return pick(c == Special, 1.1) },
}

func pick(cond bool, m float64) float64 {
	if cond {
		return m
	}
	return 1.0
}

func isBurned(status string) bool {
	switch status {
	case "burn", "brn", "burned":
		return true
	}
	return false
}
