package game

// Dog is a player's avatar: position and velocity on the road grid, the
// bag of gathered loot, the score, and the idle/play clocks that drive
// retirement.
type Dog struct {
	ID       int
	Name     string
	Token    Token
	Pos      Point
	Speed    Speed
	Dir      Direction
	Bag      []BagItem
	Score    int
	IdleTime float64 // seconds since the dog last moved
	PlayTime float64 // seconds since the dog joined
}

// SetMove points the dog in a direction and applies the map speed. The
// empty direction parks the dog.
func (d *Dog) SetMove(dir Direction, mapSpeed float64) {
	d.Dir = dir
	d.Speed = dir.SpeedFor(mapSpeed)
}

// Stop zeroes the velocity. The heading is kept so clients keep drawing
// the dog facing the way it walked.
func (d *Dog) Stop() {
	d.Speed = Speed{}
}

// HasBagRoom reports whether the dog can pick up one more item.
func (d *Dog) HasBagRoom(capacity int) bool {
	return len(d.Bag) < capacity
}

// DepositBag converts the carried items into score using the map's
// value table and empties the bag.
func (d *Dog) DepositBag(m *Map) {
	for _, it := range d.Bag {
		d.Score += m.LootValue(it.Type)
	}
	d.Bag = d.Bag[:0]
}
