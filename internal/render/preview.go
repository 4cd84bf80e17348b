package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"dogwalk/internal/game"
)

const (
	// cellSize is the pixel size of one map unit in previews.
	cellSize = 20.0

	// worldMargin pads the drawing so road caps are not clipped.
	worldMargin = 1.0
)

var (
	lawnColor     = color.RGBA{R: 171, G: 207, B: 132, A: 255}
	roadColor     = color.RGBA{R: 184, G: 184, B: 184, A: 255}
	laneColor     = color.RGBA{R: 214, G: 214, B: 214, A: 255}
	buildingColor = color.RGBA{R: 205, G: 183, B: 158, A: 255}
	wallColor     = color.RGBA{R: 142, G: 118, B: 93, A: 255}
	officeColor   = color.RGBA{R: 240, G: 156, B: 58, A: 255}
	officeRim     = color.RGBA{R: 150, G: 90, B: 20, A: 255}
)

// Preview renders a town map to an image: roads as wide strips,
// buildings as blocks, offices as circles. Maps are immutable, so the
// result can be cached forever.
func Preview(m *game.Map) image.Image {
	minX, minY, maxX, maxY := bounds(m)
	minX -= worldMargin
	minY -= worldMargin
	maxX += worldMargin
	maxY += worldMargin

	width := int(math.Ceil((maxX - minX) * cellSize))
	height := int(math.Ceil((maxY - minY) * cellSize))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	px := func(x float64) float64 { return (x - minX) * cellSize }
	py := func(y float64) float64 { return (y - minY) * cellSize }

	dc := gg.NewContext(width, height)

	dc.SetColor(lawnColor)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	// Roads first so buildings overlap them the way the town looks.
	dc.SetLineCap(gg.LineCapRound)
	dc.SetColor(roadColor)
	dc.SetLineWidth(2 * game.RoadHalfWidth * cellSize)
	for _, rd := range m.Roads {
		dc.DrawLine(px(rd.Start.X), py(rd.Start.Y), px(rd.End.X), py(rd.End.Y))
		dc.Stroke()
	}
	dc.SetColor(laneColor)
	dc.SetLineWidth(2)
	for _, rd := range m.Roads {
		dc.DrawLine(px(rd.Start.X), py(rd.Start.Y), px(rd.End.X), py(rd.End.Y))
		dc.Stroke()
	}

	for _, b := range m.Buildings {
		x, y := px(float64(b.X)), py(float64(b.Y))
		w, h := float64(b.W)*cellSize, float64(b.H)*cellSize
		dc.SetColor(buildingColor)
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
		dc.SetColor(wallColor)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}

	for _, o := range m.Offices {
		x, y := px(o.Pos.X), py(o.Pos.Y)
		dc.SetColor(officeColor)
		dc.DrawCircle(x, y, 0.5*cellSize)
		dc.Fill()
		dc.SetColor(officeRim)
		dc.SetLineWidth(2)
		dc.DrawCircle(x, y, 0.5*cellSize)
		dc.Stroke()
	}

	return dc.Image()
}

// bounds covers every drawable feature of the map.
func bounds(m *game.Map) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, rd := range m.Roads {
		grow(rd.Start.X, rd.Start.Y)
		grow(rd.End.X, rd.End.Y)
	}
	for _, b := range m.Buildings {
		grow(float64(b.X), float64(b.Y))
		grow(float64(b.X+b.W), float64(b.Y+b.H))
	}
	for _, o := range m.Offices {
		grow(o.Pos.X, o.Pos.Y)
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}
