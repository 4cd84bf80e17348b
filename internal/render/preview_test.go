package render

import (
	"image/color"
	"testing"

	"dogwalk/internal/game"
)

func horizontalRoad(x0, x1, y float64) game.Road {
	return game.Road{Start: game.Point{X: x0, Y: y}, End: game.Point{X: x1, Y: y}}
}

func verticalRoad(y0, y1, x float64) game.Road {
	return game.Road{Start: game.Point{X: x, Y: y0}, End: game.Point{X: x, Y: y1}}
}

// TestPreviewSize verifies the image covers every feature plus the one
// cell margin, at 20 px per cell.
func TestPreviewSize(t *testing.T) {
	tests := []struct {
		name  string
		m     *game.Map
		wantW int
		wantH int
	}{
		{
			"single horizontal road",
			&game.Map{ID: "a", Roads: []game.Road{horizontalRoad(0, 10, 0)}},
			240, 40,
		},
		{
			"single vertical road",
			&game.Map{ID: "b", Roads: []game.Road{verticalRoad(0, 8, 0)}},
			40, 200,
		},
		{
			"building grows the bounds",
			&game.Map{
				ID:        "c",
				Roads:     []game.Road{horizontalRoad(0, 10, 0)},
				Buildings: []game.Building{{X: 2, Y: 2, W: 3, H: 2}},
			},
			240, 120,
		},
		{
			"office beyond the roads",
			&game.Map{
				ID:      "d",
				Roads:   []game.Road{horizontalRoad(0, 10, 0)},
				Offices: []game.Office{{ID: "o0", Pos: game.Point{X: 12, Y: 0}}},
			},
			280, 40,
		},
		{
			"empty map still renders",
			&game.Map{ID: "e"},
			40, 40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := Preview(tt.m)
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

// TestPreviewDrawsFeatures samples interior pixels of each feature,
// away from anti-aliased edges.
func TestPreviewDrawsFeatures(t *testing.T) {
	m := &game.Map{
		ID:        "town",
		Roads:     []game.Road{horizontalRoad(0, 10, 0)},
		Buildings: []game.Building{{X: 2, Y: 2, W: 3, H: 2}},
		Offices:   []game.Office{{ID: "o0", Pos: game.Point{X: 8, Y: 0}}},
	}
	img := Preview(m)

	at := func(x, y int) color.RGBA {
		return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	}

	// World (x, y) maps to pixel ((x+1)*20, (y+1)*20).
	if got := at(4, 4); got != lawnColor {
		t.Errorf("corner pixel = %v, want lawn %v", got, lawnColor)
	}
	// 5 px below the road axis: inside the 8 px half width, outside the
	// centerline stripe.
	if got := at(60, 25); got != roadColor {
		t.Errorf("road pixel = %v, want road %v", got, roadColor)
	}
	if got := at(60, 20); got != laneColor {
		t.Errorf("centerline pixel = %v, want lane %v", got, laneColor)
	}
	// Building (2,2)-(5,4) fills pixels (60,60)-(120,100).
	if got := at(90, 80); got != buildingColor {
		t.Errorf("building pixel = %v, want building %v", got, buildingColor)
	}
	// Office circle of radius 10 px centered at (180, 20).
	if got := at(180, 20); got != officeColor {
		t.Errorf("office pixel = %v, want office %v", got, officeColor)
	}
}
