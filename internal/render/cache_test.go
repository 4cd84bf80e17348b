package render

import (
	"bytes"
	"image/png"
	"testing"

	"dogwalk/internal/game"
)

// TestCacheReturnsDecodablePNG checks the encoded bytes round-trip
// through a PNG decoder with the expected geometry.
func TestCacheReturnsDecodablePNG(t *testing.T) {
	c := NewCache(4)
	m := &game.Map{ID: "town", Roads: []game.Road{horizontalRoad(0, 10, 0)}}

	data, err := c.PNG(m)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 40 {
		t.Errorf("decoded size = %dx%d, want 240x40", b.Dx(), b.Dy())
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

// TestCacheMemoizesByID verifies a map id is rendered once: a second
// map with the same id returns the first image.
func TestCacheMemoizesByID(t *testing.T) {
	c := NewCache(4)
	first := &game.Map{ID: "same", Roads: []game.Road{horizontalRoad(0, 10, 0)}}
	second := &game.Map{ID: "same", Roads: []game.Road{verticalRoad(0, 8, 0)}}

	a, err := c.PNG(first)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	b, err := c.PNG(second)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("same id rendered twice")
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

// TestCacheEviction verifies the size bound holds under distinct ids.
func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	for _, id := range []string{"a", "b", "c", "d"} {
		m := &game.Map{ID: id, Roads: []game.Road{horizontalRoad(0, 4, 0)}}
		if _, err := c.PNG(m); err != nil {
			t.Fatalf("PNG(%s): %v", id, err)
		}
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want the max of 2", c.Size())
	}
}

// TestCacheSizeFloor verifies a non-positive bound falls back to the
// default instead of a cache that can hold nothing.
func TestCacheSizeFloor(t *testing.T) {
	c := NewCache(0)
	m := &game.Map{ID: "only", Roads: []game.Road{horizontalRoad(0, 4, 0)}}
	if _, err := c.PNG(m); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}
