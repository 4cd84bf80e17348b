package app

import "dogwalk/internal/game"

// PlayerEntry is one row of the players listing.
type PlayerEntry struct {
	ID   int
	Name string
}

// DogView is a value copy of one dog, safe to hand off the strand.
type DogView struct {
	ID    int
	Pos   [2]float64
	Speed [2]float64
	Dir   string
	Bag   []game.BagItem
	Score int
}

// LootView is a value copy of one item on the ground.
type LootView struct {
	ID   int
	Type int
	Pos  [2]float64
}

// StateView is the full per-session picture served by the state
// endpoint and pushed over the websocket feed.
type StateView struct {
	Dogs []DogView
	Loot []LootView
}

func dogView(d *game.Dog) DogView {
	return DogView{
		ID:    d.ID,
		Pos:   [2]float64{d.Pos.X, d.Pos.Y},
		Speed: [2]float64{d.Speed.X, d.Speed.Y},
		Dir:   d.Dir.Letter(),
		Bag:   append([]game.BagItem(nil), d.Bag...),
		Score: d.Score,
	}
}
