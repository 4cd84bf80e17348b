package game

import (
	"math"
	"math/rand"

	jsoniter "github.com/json-iterator/go"
)

// RoadHalfWidth is the distance a dog may stray from a road's axis.
const RoadHalfWidth = 0.4

// Point is a position on a map, in cells.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Speed is a velocity vector, in cells per second.
type Speed struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero reports whether the vector has no motion on either axis.
func (s Speed) IsZero() bool {
	return s.X == 0 && s.Y == 0
}

// Direction is the compass heading of a dog. North is negative y.
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirSouth
	DirWest
	DirEast
)

// Letter returns the single-letter wire form: "U", "D", "L", "R" or ""
// for DirNone.
func (d Direction) Letter() string {
	switch d {
	case DirNorth:
		return "U"
	case DirSouth:
		return "D"
	case DirWest:
		return "L"
	case DirEast:
		return "R"
	default:
		return ""
	}
}

// DirectionFromLetter decodes the wire form accepted by the action
// endpoint. The empty string is a valid "stop" direction.
func DirectionFromLetter(s string) (Direction, bool) {
	switch s {
	case "U":
		return DirNorth, true
	case "D":
		return DirSouth, true
	case "L":
		return DirWest, true
	case "R":
		return DirEast, true
	case "":
		return DirNone, true
	default:
		return DirNone, false
	}
}

// SpeedFor returns the velocity of a dog heading in direction d at the
// map speed s.
func (d Direction) SpeedFor(s float64) Speed {
	switch d {
	case DirNorth:
		return Speed{0, -s}
	case DirSouth:
		return Speed{0, s}
	case DirWest:
		return Speed{-s, 0}
	case DirEast:
		return Speed{s, 0}
	default:
		return Speed{}
	}
}

// Road is an axis-aligned segment of the walkable grid. Start and End
// are integer-aligned; either their x or their y coordinates match.
type Road struct {
	Start Point
	End   Point
}

// IsHorizontal reports whether the road runs along the x axis.
func (r Road) IsHorizontal() bool {
	return r.Start.Y == r.End.Y
}

// IsVertical reports whether the road runs along the y axis.
func (r Road) IsVertical() bool {
	return r.Start.X == r.End.X
}

// Building is an axis-aligned rectangle. Buildings are decorative:
// clients draw them, the simulation ignores them.
type Building struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Office converts a dog's bag into score on contact.
type Office struct {
	ID      string
	Pos     Point
	OffsetX int
	OffsetY int
}

// LootType describes one entry of a map's lootTypes array. Raw keeps the
// original JSON object so the map endpoint can echo it untouched; Value
// is the score awarded when an item of this type is deposited.
type LootType struct {
	Name  string
	Value int
	Raw   jsoniter.RawMessage
}

// Map is the immutable static world: the road grid, buildings, offices
// and loot catalog, plus the per-map movement speed and bag capacity.
type Map struct {
	ID          string
	Name        string
	Roads       []Road
	Buildings   []Building
	Offices     []Office
	LootTypes   []LootType
	DogSpeed    float64
	BagCapacity int

	roadsByY map[int]*Road // horizontal roads keyed by their y
	roadsByX map[int]*Road // vertical roads keyed by their x
}

// buildRoadIndex fills the per-axis lookup tables. Roads sharing a key
// keep the last entry, matching the catalog's expectations of one road
// per grid line.
func (m *Map) buildRoadIndex() {
	m.roadsByY = make(map[int]*Road, len(m.Roads))
	m.roadsByX = make(map[int]*Road, len(m.Roads))
	for i := range m.Roads {
		r := &m.Roads[i]
		if r.IsHorizontal() {
			m.roadsByY[int(math.Round(r.Start.Y))] = r
		}
		if r.IsVertical() {
			m.roadsByX[int(math.Round(r.Start.X))] = r
		}
	}
}

// HorizontalRoadAt returns the horizontal road crossing the given y
// grid line, if any.
func (m *Map) HorizontalRoadAt(y float64) (*Road, bool) {
	r, ok := m.roadsByY[int(math.Round(y))]
	return r, ok
}

// VerticalRoadAt returns the vertical road crossing the given x grid
// line, if any.
func (m *Map) VerticalRoadAt(x float64) (*Road, bool) {
	r, ok := m.roadsByX[int(math.Round(x))]
	return r, ok
}

// SpawnPoint is where a joining dog appears when spawn randomization is
// off: the start of the first road.
func (m *Map) SpawnPoint() Point {
	return m.Roads[0].Start
}

// RandomRoadPoint picks a road uniformly and then a point uniformly on
// its interior. Used for randomized spawns and for placing loot.
func (m *Map) RandomRoadPoint(rng *rand.Rand) Point {
	r := m.Roads[rng.Intn(len(m.Roads))]
	if r.IsHorizontal() {
		lo, hi := math.Min(r.Start.X, r.End.X), math.Max(r.Start.X, r.End.X)
		return Point{X: lo + rng.Float64()*(hi-lo), Y: r.Start.Y}
	}
	lo, hi := math.Min(r.Start.Y, r.End.Y), math.Max(r.Start.Y, r.End.Y)
	return Point{X: r.Start.X, Y: lo + rng.Float64()*(hi-lo)}
}

// LootValue returns the score value of a loot type index, or 0 for an
// index outside the catalog.
func (m *Map) LootValue(typeIndex int) int {
	if typeIndex < 0 || typeIndex >= len(m.LootTypes) {
		return 0
	}
	return m.LootTypes[typeIndex].Value
}

// Catalog is the set of maps loaded from the config file together with
// the game-wide defaults that apply to every session.
type Catalog struct {
	Maps               []*Map
	DefaultDogSpeed    float64
	DefaultBagCapacity int
	LootConfig         LootConfig
	RetirementTime     float64 // seconds of idleness before a dog retires

	byID map[string]*Map
}

// Map looks a map up by id.
func (c *Catalog) Map(id string) (*Map, bool) {
	m, ok := c.byID[id]
	return m, ok
}
