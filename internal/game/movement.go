package game

import "math"

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Advance computes where a dog moving at speed from pos ends up after dt
// seconds, constrained to the road grid. The second result reports that
// the dog ran into the end of its corridor; the caller must then zero
// the dog's speed so later ticks keep it parked at the wall.
//
// Movement is axis-aligned. For a horizontal move the dog travels the
// full extent of the horizontal road under its feet (±RoadHalfWidth past
// the endpoints); standing on a vertical road only, it may merely cross
// the road's width. At a junction the road parallel to the movement
// wins. Vertical moves mirror the rule.
func (m *Map) Advance(pos Point, speed Speed, dt float64) (Point, bool) {
	switch {
	case speed.X != 0:
		return m.advanceX(pos, speed.X*dt)
	case speed.Y != 0:
		return m.advanceY(pos, speed.Y*dt)
	default:
		return pos, false
	}
}

func (m *Map) advanceX(pos Point, dx float64) (Point, bool) {
	var lo, hi float64
	if road, ok := m.HorizontalRoadAt(pos.Y); ok {
		lo = math.Min(road.Start.X, road.End.X) - RoadHalfWidth
		hi = math.Max(road.Start.X, road.End.X) + RoadHalfWidth
		// Keep the dog inside the road's slab across the axis.
		pos.Y = clamp(pos.Y, road.Start.Y-RoadHalfWidth, road.Start.Y+RoadHalfWidth)
	} else if road, ok := m.VerticalRoadAt(pos.X); ok {
		lo = road.Start.X - RoadHalfWidth
		hi = road.Start.X + RoadHalfWidth
	} else {
		return pos, true
	}

	next := pos.X + dx
	if next <= lo {
		return Point{X: lo, Y: pos.Y}, true
	}
	if next >= hi {
		return Point{X: hi, Y: pos.Y}, true
	}
	return Point{X: next, Y: pos.Y}, false
}

func (m *Map) advanceY(pos Point, dy float64) (Point, bool) {
	var lo, hi float64
	if road, ok := m.VerticalRoadAt(pos.X); ok {
		lo = math.Min(road.Start.Y, road.End.Y) - RoadHalfWidth
		hi = math.Max(road.Start.Y, road.End.Y) + RoadHalfWidth
		pos.X = clamp(pos.X, road.Start.X-RoadHalfWidth, road.Start.X+RoadHalfWidth)
	} else if road, ok := m.HorizontalRoadAt(pos.Y); ok {
		lo = road.Start.Y - RoadHalfWidth
		hi = road.Start.Y + RoadHalfWidth
	} else {
		return pos, true
	}

	next := pos.Y + dy
	if next <= lo {
		return Point{X: pos.X, Y: lo}, true
	}
	if next >= hi {
		return Point{X: pos.X, Y: hi}, true
	}
	return Point{X: pos.X, Y: next}, false
}
