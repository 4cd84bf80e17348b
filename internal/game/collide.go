package game

// Pickup geometry. A dog is 0.6 cells wide, an office 0.5; loot items
// are points. Collision radii are the half-width sums.
const (
	LootPickupRadius    = 0.3
	OfficeContactRadius = 0.6
)

// Approach describes the closest pass of a moving point to a target.
// Time is the parametric position [0,1] along the motion segment of
// the closest approach; Dist2 is the squared distance at that moment.
type Approach struct {
	Time  float64
	Dist2 float64
}

// Within reports whether the pass came closer than radius.
func (a Approach) Within(radius float64) bool {
	return a.Time >= 0 && a.Time <= 1 && a.Dist2 <= radius*radius
}

// ClosestApproach projects target onto the segment from start to end.
// All checks are O(1) vector math. The boolean is false for a
// degenerate (zero-length) segment, which produces no interactions.
func ClosestApproach(start, end, target Point) (Approach, bool) {
	vx, vy := end.X-start.X, end.Y-start.Y
	vLen2 := vx*vx + vy*vy
	if vLen2 == 0 {
		return Approach{}, false
	}
	ux, uy := target.X-start.X, target.Y-start.Y
	dot := ux*vx + uy*vy
	return Approach{
		Time:  dot / vLen2,
		Dist2: (ux*ux + uy*uy) - dot*dot/vLen2,
	}, true
}
