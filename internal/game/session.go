package game

import (
	"math/rand"
	"sort"
)

// Retiree is the record of a dog removed from its session for idleness.
// The registry turns these into scoreboard rows.
type Retiree struct {
	Token    Token
	Name     string
	Score    int
	PlayTime float64
}

// Session hosts the dogs and loot of one map. It is not safe for
// concurrent use: every call must come through the API strand.
type Session struct {
	m           *Map
	randomSpawn bool
	retireAfter float64
	gen         *LootGenerator
	rng         *rand.Rand

	dogs       map[Token]*Dog
	loot       map[int]*Loot
	nextDogID  int
	nextLootID int
}

// NewSession creates an empty session for a map. The rng drives loot
// placement and randomized spawns; tests pass a seeded source.
func NewSession(m *Map, loot LootConfig, retireAfter float64, randomSpawn bool, rng *rand.Rand) *Session {
	return &Session{
		m:           m,
		randomSpawn: randomSpawn,
		retireAfter: retireAfter,
		gen:         NewLootGenerator(loot, rng),
		rng:         rng,
		dogs:        make(map[Token]*Dog),
		loot:        make(map[int]*Loot),
	}
}

// Map returns the session's immutable world.
func (s *Session) Map() *Map {
	return s.m
}

// Join adds a dog for the given player name under a token issued by the
// registry. The dog appears at the first road's start, or anywhere on
// the grid when spawn randomization is on.
func (s *Session) Join(name string, tok Token) *Dog {
	pos := s.m.SpawnPoint()
	if s.randomSpawn {
		pos = s.m.RandomRoadPoint(s.rng)
	}
	d := &Dog{ID: s.nextDogID, Name: name, Token: tok, Pos: pos, Dir: DirNone}
	s.nextDogID++
	s.dogs[tok] = d
	return d
}

// Dog looks a dog up by its token.
func (s *Session) Dog(tok Token) (*Dog, bool) {
	d, ok := s.dogs[tok]
	return d, ok
}

// Dogs returns the session's dogs ordered by id.
func (s *Session) Dogs() []*Dog {
	out := make([]*Dog, 0, len(s.dogs))
	for _, d := range s.dogs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LootItems returns the items on the ground ordered by id.
func (s *Session) LootItems() []*Loot {
	out := make([]*Loot, 0, len(s.loot))
	for _, l := range s.loot {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DogCount returns the number of dogs in the session.
func (s *Session) DogCount() int {
	return len(s.dogs)
}

// LootCount returns the number of items on the ground.
func (s *Session) LootCount() int {
	return len(s.loot)
}

// Tick advances the session by dt seconds: spawn loot, move every dog,
// resolve pickups and deposits along the travelled segments in temporal
// order, then retire dogs that have idled past the threshold. Retired
// dogs are gone from the session before Tick returns.
func (s *Session) Tick(dt float64) []Retiree {
	s.spawnLoot(dt)
	moves := s.moveDogs(dt)
	s.applyEvents(s.collectEvents(moves))
	return s.retire()
}

func (s *Session) spawnLoot(dt float64) {
	if len(s.m.LootTypes) == 0 {
		return
	}
	n := s.gen.Generate(dt, len(s.loot), len(s.dogs))
	for i := 0; i < n; i++ {
		id := s.nextLootID
		s.nextLootID++
		s.loot[id] = &Loot{
			ID:   id,
			Type: s.rng.Intn(len(s.m.LootTypes)),
			Pos:  s.m.RandomRoadPoint(s.rng),
		}
	}
}

type dogMove struct {
	dog      *Dog
	from, to Point
}

func (s *Session) moveDogs(dt float64) []dogMove {
	moves := make([]dogMove, 0, len(s.dogs))
	for _, d := range s.dogs {
		from := d.Pos
		to, blocked := s.m.Advance(from, d.Speed, dt)
		d.Pos = to
		if blocked {
			d.Stop()
		}
		d.PlayTime += dt
		if from == to {
			d.IdleTime += dt
		} else {
			d.IdleTime = 0
		}
		moves = append(moves, dogMove{dog: d, from: from, to: to})
	}
	return moves
}

type eventKind int

const (
	gatherEvent eventKind = iota
	depositEvent
)

type interaction struct {
	t    float64
	dog  *Dog
	kind eventKind
	loot int // loot id, gather events only
}

// collectEvents tests each travelled segment against every item and
// office and orders the hits by closest-approach time. Ties go to the
// lower player id, and a gather beats a deposit at the same instant so
// an item picked up right at an office still counts.
func (s *Session) collectEvents(moves []dogMove) []interaction {
	var events []interaction
	for _, mv := range moves {
		if mv.from == mv.to {
			continue
		}
		for _, item := range s.loot {
			if a, ok := ClosestApproach(mv.from, mv.to, item.Pos); ok && a.Within(LootPickupRadius) {
				events = append(events, interaction{t: a.Time, dog: mv.dog, kind: gatherEvent, loot: item.ID})
			}
		}
		for i := range s.m.Offices {
			if a, ok := ClosestApproach(mv.from, mv.to, s.m.Offices[i].Pos); ok && a.Within(OfficeContactRadius) {
				events = append(events, interaction{t: a.Time, dog: mv.dog, kind: depositEvent})
			}
		}
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.t != b.t {
			return a.t < b.t
		}
		if a.dog.ID != b.dog.ID {
			return a.dog.ID < b.dog.ID
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.loot < b.loot
	})
	return events
}

func (s *Session) applyEvents(events []interaction) {
	for _, ev := range events {
		switch ev.kind {
		case gatherEvent:
			item, ok := s.loot[ev.loot]
			if !ok || !ev.dog.HasBagRoom(s.m.BagCapacity) {
				continue
			}
			ev.dog.Bag = append(ev.dog.Bag, BagItem{ID: item.ID, Type: item.Type})
			delete(s.loot, ev.loot)
		case depositEvent:
			ev.dog.DepositBag(s.m)
		}
	}
}

func (s *Session) retire() []Retiree {
	var idle []*Dog
	for _, d := range s.dogs {
		if d.IdleTime >= s.retireAfter {
			idle = append(idle, d)
		}
	}
	if len(idle) == 0 {
		return nil
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].ID < idle[j].ID })
	retired := make([]Retiree, 0, len(idle))
	for _, d := range idle {
		delete(s.dogs, d.Token)
		retired = append(retired, Retiree{Token: d.Token, Name: d.Name, Score: d.Score, PlayTime: d.PlayTime})
	}
	return retired
}
