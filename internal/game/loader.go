package game

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Catalog defaults applied when the config file omits the matching key.
const (
	defaultDogSpeed       = 1.0
	defaultBagCapacity    = 3
	defaultRetirementTime = 60.0
)

type roadDoc struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1"`
	Y1 *float64 `json:"y1"`
}

type officeDoc struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX int     `json:"offsetX"`
	OffsetY int     `json:"offsetY"`
}

type mapDoc struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	DogSpeed    *float64              `json:"dogSpeed"`
	BagCapacity *int                  `json:"bagCapacity"`
	Roads       []roadDoc             `json:"roads"`
	Buildings   []Building            `json:"buildings"`
	Offices     []officeDoc           `json:"offices"`
	LootTypes   []jsoniter.RawMessage `json:"lootTypes"`
}

type lootConfigDoc struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type catalogDoc struct {
	DefaultDogSpeed    *float64       `json:"defaultDogSpeed"`
	DefaultBagCapacity *int           `json:"defaultBagCapacity"`
	RetirementTime     *float64       `json:"dogRetirementTime"`
	LootGenerator      *lootConfigDoc `json:"lootGeneratorConfig"`
	Maps               []mapDoc       `json:"maps"`
}

// LoadCatalog reads and validates the map catalog from a JSON config
// file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a Catalog from raw config JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if doc.LootGenerator == nil {
		return nil, fmt.Errorf("config: lootGeneratorConfig is missing")
	}
	if doc.LootGenerator.Period <= 0 {
		return nil, fmt.Errorf("config: loot generator period must be positive")
	}
	if doc.LootGenerator.Probability <= 0 || doc.LootGenerator.Probability > 1 {
		return nil, fmt.Errorf("config: loot generator probability must be in (0, 1]")
	}
	if len(doc.Maps) == 0 {
		return nil, fmt.Errorf("config: maps array is empty")
	}

	cat := &Catalog{
		DefaultDogSpeed:    defaultDogSpeed,
		DefaultBagCapacity: defaultBagCapacity,
		RetirementTime:     defaultRetirementTime,
		LootConfig: LootConfig{
			Period:      doc.LootGenerator.Period,
			Probability: doc.LootGenerator.Probability,
		},
		byID: make(map[string]*Map, len(doc.Maps)),
	}
	if doc.DefaultDogSpeed != nil {
		cat.DefaultDogSpeed = *doc.DefaultDogSpeed
	}
	if doc.DefaultBagCapacity != nil {
		cat.DefaultBagCapacity = *doc.DefaultBagCapacity
	}
	if doc.RetirementTime != nil {
		cat.RetirementTime = *doc.RetirementTime
	}

	for i := range doc.Maps {
		m, err := buildMap(&doc.Maps[i], cat)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.byID[m.ID]; dup {
			return nil, fmt.Errorf("config: duplicate map id %q", m.ID)
		}
		cat.Maps = append(cat.Maps, m)
		cat.byID[m.ID] = m
	}
	return cat, nil
}

func buildMap(doc *mapDoc, cat *Catalog) (*Map, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("config: map without an id")
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("config: map %q has no name", doc.ID)
	}
	if len(doc.Roads) == 0 {
		return nil, fmt.Errorf("config: map %q has no roads", doc.ID)
	}

	m := &Map{
		ID:          doc.ID,
		Name:        doc.Name,
		Buildings:   doc.Buildings,
		DogSpeed:    cat.DefaultDogSpeed,
		BagCapacity: cat.DefaultBagCapacity,
	}
	if doc.DogSpeed != nil {
		m.DogSpeed = *doc.DogSpeed
	}
	if doc.BagCapacity != nil {
		m.BagCapacity = *doc.BagCapacity
	}
	if m.DogSpeed <= 0 {
		return nil, fmt.Errorf("config: map %q has non-positive dog speed", doc.ID)
	}
	if m.BagCapacity <= 0 {
		return nil, fmt.Errorf("config: map %q has non-positive bag capacity", doc.ID)
	}

	for i, rd := range doc.Roads {
		switch {
		case rd.X1 != nil:
			m.Roads = append(m.Roads, Road{
				Start: Point{X: rd.X0, Y: rd.Y0},
				End:   Point{X: *rd.X1, Y: rd.Y0},
			})
		case rd.Y1 != nil:
			m.Roads = append(m.Roads, Road{
				Start: Point{X: rd.X0, Y: rd.Y0},
				End:   Point{X: rd.X0, Y: *rd.Y1},
			})
		default:
			return nil, fmt.Errorf("config: map %q road %d has neither x1 nor y1", doc.ID, i)
		}
	}

	for _, od := range doc.Offices {
		m.Offices = append(m.Offices, Office{
			ID:      od.ID,
			Pos:     Point{X: od.X, Y: od.Y},
			OffsetX: od.OffsetX,
			OffsetY: od.OffsetY,
		})
	}

	for i, raw := range doc.LootTypes {
		var lt struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		if err := json.Unmarshal(raw, &lt); err != nil {
			return nil, fmt.Errorf("config: map %q loot type %d: %w", doc.ID, i, err)
		}
		m.LootTypes = append(m.LootTypes, LootType{Name: lt.Name, Value: lt.Value, Raw: raw})
	}

	m.buildRoadIndex()
	return m, nil
}
