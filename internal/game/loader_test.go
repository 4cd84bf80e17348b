package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const loaderTestConfig = `{
  "defaultDogSpeed": 2.5,
  "defaultBagCapacity": 4,
  "dogRetirementTime": 45.5,
  "lootGeneratorConfig": {"period": 5.0, "probability": 0.25},
  "maps": [
    {
      "id": "town",
      "name": "Town",
      "dogSpeed": 4.0,
      "bagCapacity": 2,
      "roads": [
        {"x0": 0, "y0": 0, "x1": 40},
        {"x0": 0, "y0": 0, "y1": 30}
      ],
      "buildings": [{"x": 5, "y": 5, "w": 4, "h": 3}],
      "offices": [{"id": "o0", "x": 40, "y": 30, "offsetX": 5, "offsetY": 0}],
      "lootTypes": [
        {"name": "key", "file": "assets/key.obj", "type": "obj", "rotation": 90, "color": "#338844", "scale": 0.03, "value": 10},
        {"name": "wallet", "file": "assets/wallet.obj", "type": "obj", "value": 30}
      ]
    },
    {
      "id": "village",
      "name": "Village",
      "roads": [{"x0": -3, "y0": 7, "x1": 12}]
    }
  ]
}`

// TestParseCatalogDefaultsAndOverrides checks the three-level settings
// cascade: built-in defaults, catalog defaults, per-map overrides.
func TestParseCatalogDefaultsAndOverrides(t *testing.T) {
	cat, err := ParseCatalog([]byte(loaderTestConfig))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	if len(cat.Maps) != 2 {
		t.Fatalf("maps = %d, want 2", len(cat.Maps))
	}
	if cat.RetirementTime != 45.5 {
		t.Errorf("retirement time = %v, want 45.5", cat.RetirementTime)
	}
	if cat.LootConfig.Period != 5 || cat.LootConfig.Probability != 0.25 {
		t.Errorf("loot config = %+v", cat.LootConfig)
	}

	town, ok := cat.Map("town")
	if !ok {
		t.Fatal("map town missing")
	}
	if town.DogSpeed != 4 || town.BagCapacity != 2 {
		t.Errorf("town speed/bag = %v/%d, want per-map overrides 4/2", town.DogSpeed, town.BagCapacity)
	}

	village, ok := cat.Map("village")
	if !ok {
		t.Fatal("map village missing")
	}
	if village.DogSpeed != 2.5 || village.BagCapacity != 4 {
		t.Errorf("village speed/bag = %v/%d, want catalog defaults 2.5/4", village.DogSpeed, village.BagCapacity)
	}
}

// TestParseCatalogBuildsGeometry verifies roads, buildings and offices
// land in the right shapes.
func TestParseCatalogBuildsGeometry(t *testing.T) {
	cat, err := ParseCatalog([]byte(loaderTestConfig))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	town, _ := cat.Map("town")

	if len(town.Roads) != 2 {
		t.Fatalf("roads = %d, want 2", len(town.Roads))
	}
	h, v := town.Roads[0], town.Roads[1]
	if !h.IsHorizontal() || h.Start != (Point{X: 0, Y: 0}) || h.End != (Point{X: 40, Y: 0}) {
		t.Errorf("horizontal road = %+v", h)
	}
	if !v.IsVertical() || v.End != (Point{X: 0, Y: 30}) {
		t.Errorf("vertical road = %+v", v)
	}

	if len(town.Buildings) != 1 || town.Buildings[0] != (Building{X: 5, Y: 5, W: 4, H: 3}) {
		t.Errorf("buildings = %+v", town.Buildings)
	}
	if len(town.Offices) != 1 {
		t.Fatalf("offices = %+v", town.Offices)
	}
	o := town.Offices[0]
	if o.ID != "o0" || o.Pos != (Point{X: 40, Y: 30}) || o.OffsetX != 5 || o.OffsetY != 0 {
		t.Errorf("office = %+v", o)
	}

	if _, ok := town.HorizontalRoadAt(0); !ok {
		t.Error("road index misses the horizontal road")
	}
	if _, ok := town.VerticalRoadAt(0); !ok {
		t.Error("road index misses the vertical road")
	}
}

// TestParseCatalogKeepsRawLootTypes checks the loot table values and
// that unknown rendering keys survive for the map endpoint to echo.
func TestParseCatalogKeepsRawLootTypes(t *testing.T) {
	cat, err := ParseCatalog([]byte(loaderTestConfig))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	town, _ := cat.Map("town")

	if len(town.LootTypes) != 2 {
		t.Fatalf("loot types = %d, want 2", len(town.LootTypes))
	}
	if town.LootTypes[0].Name != "key" || town.LootTypes[0].Value != 10 {
		t.Errorf("loot type 0 = %+v", town.LootTypes[0])
	}
	if town.LootValue(1) != 30 {
		t.Errorf("LootValue(1) = %d, want 30", town.LootValue(1))
	}
	if town.LootValue(2) != 0 || town.LootValue(-1) != 0 {
		t.Error("out-of-range loot indexes must be worth 0")
	}

	var echoed map[string]interface{}
	if err := json.Unmarshal(town.LootTypes[0].Raw, &echoed); err != nil {
		t.Fatalf("raw loot type does not reparse: %v", err)
	}
	if echoed["file"] != "assets/key.obj" || echoed["rotation"] != float64(90) {
		t.Errorf("raw loot type lost keys: %v", echoed)
	}
}

// TestParseCatalogErrors runs the validation table.
func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		want string
	}{
		{
			"not json",
			`{maps:`,
			"parse config",
		},
		{
			"missing loot generator",
			`{"maps": [{"id": "m", "name": "M", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"lootGeneratorConfig",
		},
		{
			"zero period",
			`{"lootGeneratorConfig": {"period": 0, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"period",
		},
		{
			"probability above one",
			`{"lootGeneratorConfig": {"period": 5, "probability": 1.5}, "maps": [{"id": "m", "name": "M", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"probability",
		},
		{
			"no maps",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": []}`,
			"maps array is empty",
		},
		{
			"map without id",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"name": "M", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"without an id",
		},
		{
			"map without name",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"no name",
		},
		{
			"map without roads",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "roads": []}]}`,
			"no roads",
		},
		{
			"road without endpoint",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "roads": [{"x0": 0, "y0": 0}]}]}`,
			"neither x1 nor y1",
		},
		{
			"duplicate map id",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}, {"id": "m", "name": "M2", "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"duplicate map id",
		},
		{
			"zero dog speed",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "dogSpeed": 0, "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"dog speed",
		},
		{
			"zero bag capacity",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "bagCapacity": 0, "roads": [{"x0": 0, "y0": 0, "x1": 1}]}]}`,
			"bag capacity",
		},
		{
			"loot type not an object",
			`{"lootGeneratorConfig": {"period": 5, "probability": 0.5}, "maps": [{"id": "m", "name": "M", "roads": [{"x0": 0, "y0": 0, "x1": 1}], "lootTypes": [42]}]}`,
			"loot type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.cfg))
			if err == nil {
				t.Fatal("ParseCatalog accepted a bad config")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

// TestLoadCatalogFromFile reads a config through the filesystem path.
func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(loaderTestConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(cat.Maps) != 2 {
		t.Errorf("maps = %d, want 2", len(cat.Maps))
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadCatalog accepted a missing file")
	}
}
