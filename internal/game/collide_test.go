package game

import "testing"

// TestClosestApproach checks the projection of targets onto motion
// segments.
func TestClosestApproach(t *testing.T) {
	tests := []struct {
		name       string
		start, end Point
		target     Point
		wantOK     bool
		wantTime   float64
		wantDist2  float64
	}{
		{"pass right over", Point{0, 0}, Point{10, 0}, Point{5, 0}, true, 0.5, 0},
		{"pass alongside", Point{0, 0}, Point{10, 0}, Point{5, 0.2}, true, 0.5, 0.04},
		{"target at start", Point{0, 0}, Point{10, 0}, Point{0, 0}, true, 0, 0},
		{"target at end", Point{0, 0}, Point{10, 0}, Point{10, 0}, true, 1, 0},
		{"target beyond end", Point{0, 0}, Point{10, 0}, Point{12, 0}, true, 1.2, 0},
		{"target behind start", Point{0, 0}, Point{10, 0}, Point{-2, 0}, true, -0.2, 0},
		{"vertical segment", Point{3, 1}, Point{3, 5}, Point{3.3, 3}, true, 0.5, 0.09},
		{"degenerate segment", Point{3, 3}, Point{3, 3}, Point{3, 3}, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := ClosestApproach(tt.start, tt.end, tt.target)
			if ok != tt.wantOK {
				t.Fatalf("ClosestApproach ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !almostEqual(a.Time, tt.wantTime) {
				t.Errorf("Time = %v, want %v", a.Time, tt.wantTime)
			}
			if !almostEqual(a.Dist2, tt.wantDist2) {
				t.Errorf("Dist2 = %v, want %v", a.Dist2, tt.wantDist2)
			}
		})
	}
}

// TestApproachWithin checks the radius test, including the boundary
// cases at the segment's ends and exactly at the radius.
func TestApproachWithin(t *testing.T) {
	tests := []struct {
		name   string
		a      Approach
		radius float64
		want   bool
	}{
		{"well inside", Approach{Time: 0.5, Dist2: 0.04}, 0.3, true},
		{"exactly at radius", Approach{Time: 0.5, Dist2: 0.25}, 0.5, true},
		{"just outside radius", Approach{Time: 0.5, Dist2: 0.1}, 0.3, false},
		{"at segment start", Approach{Time: 0, Dist2: 0}, 0.3, true},
		{"at segment end", Approach{Time: 1, Dist2: 0}, 0.3, true},
		{"before segment", Approach{Time: -0.01, Dist2: 0}, 0.3, false},
		{"past segment", Approach{Time: 1.01, Dist2: 0}, 0.3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Within(tt.radius); got != tt.want {
				t.Errorf("Within(%v) = %v, want %v", tt.radius, got, tt.want)
			}
		})
	}
}
