package game

import "testing"

// TestLootGeneratorFillsDeficitWithCertainty pins the closed-form
// spawn count for probability 1: every missing item appears at once.
func TestLootGeneratorFillsDeficitWithCertainty(t *testing.T) {
	g := NewLootGenerator(LootConfig{Period: 5, Probability: 1}, newTestRand())

	tests := []struct {
		name       string
		dt         float64
		loot, dogs int
		want       int
	}{
		{"three dogs, empty ground", 1, 0, 3, 3},
		{"partial deficit", 0.5, 2, 5, 3},
		{"single dog", 5, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Generate(tt.dt, tt.loot, tt.dogs); got != tt.want {
				t.Errorf("Generate(%v, %d, %d) = %d, want %d", tt.dt, tt.loot, tt.dogs, got, tt.want)
			}
		})
	}
}

// TestLootGeneratorZeroWhenSatisfied verifies no items appear when the
// ground already holds one per dog, or when no time passed.
func TestLootGeneratorZeroWhenSatisfied(t *testing.T) {
	g := NewLootGenerator(LootConfig{Period: 5, Probability: 1}, newTestRand())

	tests := []struct {
		name       string
		dt         float64
		loot, dogs int
	}{
		{"exactly satisfied", 1, 3, 3},
		{"surplus on the ground", 1, 5, 2},
		{"no dogs", 1, 0, 0},
		{"zero dt", 0, 0, 3},
		{"negative dt", -1, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Generate(tt.dt, tt.loot, tt.dogs); got != 0 {
				t.Errorf("Generate(%v, %d, %d) = %d, want 0", tt.dt, tt.loot, tt.dogs, got)
			}
		})
	}
}

// TestLootGeneratorBounded samples mid-range probabilities and checks
// the count never goes negative or beyond the deficit.
func TestLootGeneratorBounded(t *testing.T) {
	g := NewLootGenerator(LootConfig{Period: 5, Probability: 0.5}, newTestRand())
	rng := newTestRand()

	for i := 0; i < 1000; i++ {
		dogs := rng.Intn(20)
		loot := rng.Intn(20)
		dt := rng.Float64() * 20
		got := g.Generate(dt, loot, dogs)
		if got < 0 {
			t.Fatalf("Generate(%v, %d, %d) = %d, negative", dt, loot, dogs, got)
		}
		if deficit := dogs - loot; got > deficit && deficit >= 0 {
			t.Fatalf("Generate(%v, %d, %d) = %d, beyond deficit %d", dt, loot, dogs, got, deficit)
		}
	}
}
