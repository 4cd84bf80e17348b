package game

import (
	"math"
	"math/rand"
)

// Loot is one item lying on a road waiting to be picked up.
type Loot struct {
	ID   int
	Type int // index into the map's loot types
	Pos  Point
}

// BagItem is a loot item carried by a dog. It keeps the item's identity
// so the state endpoint can list bag contents.
type BagItem struct {
	ID   int `json:"id"`
	Type int `json:"type"`
}

// LootConfig is the catalog's lootGeneratorConfig block. Period is in
// seconds; Probability is the chance that a missing item appears within
// one period.
type LootConfig struct {
	Period      float64
	Probability float64
}

// LootGenerator decides how many new items to drop on a session each
// tick. Spawning is probabilistic: the longer the tick and the more
// dogs outnumber the items on the ground, the more items appear.
type LootGenerator struct {
	cfg LootConfig
	rng *rand.Rand
}

func NewLootGenerator(cfg LootConfig, rng *rand.Rand) *LootGenerator {
	return &LootGenerator{cfg: cfg, rng: rng}
}

// Generate returns the number of items to spawn after dt seconds given
// the current item and dog counts. The random rounding term keeps the
// long-run density right even when per-tick expectations are tiny.
func (g *LootGenerator) Generate(dt float64, lootCount, looterCount int) int {
	needed := looterCount - lootCount
	if needed <= 0 || dt <= 0 {
		return 0
	}
	pStep := 1 - math.Pow(1-g.cfg.Probability, dt/g.cfg.Period)
	return int(math.Floor(float64(needed)*pStep + g.rng.Float64()))
}
