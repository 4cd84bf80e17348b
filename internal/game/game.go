package game

import (
	"errors"
	"math/rand"
	"sort"
)

// Failures surfaced to the HTTP layer, which maps them onto the public
// error taxonomy.
var (
	ErrMapNotFound  = errors.New("map not found")
	ErrInvalidName  = errors.New("invalid name")
	ErrUnknownToken = errors.New("unknown token")
)

// JoinResult is what a successful join hands back to the client.
type JoinResult struct {
	Token    Token
	PlayerID int
}

// Game owns the map catalog, the per-map sessions and the global token
// index. Sessions are created lazily on first join and live until the
// process exits. Not safe for concurrent use; the API strand serializes
// every call.
type Game struct {
	catalog     *Catalog
	randomSpawn bool
	sessions    map[string]*Session
	tokens      map[Token]string // token → map id
	tokgen      *tokenGenerator
	seeds       *rand.Rand // per-session seed source
}

// NewGame wraps a loaded catalog into a live registry.
func NewGame(cat *Catalog, randomSpawn bool) *Game {
	return &Game{
		catalog:     cat,
		randomSpawn: randomSpawn,
		sessions:    make(map[string]*Session),
		tokens:      make(map[Token]string),
		tokgen:      newTokenGenerator(),
		seeds:       rand.New(rand.NewSource(tokenSeed())),
	}
}

// Maps lists the catalog in config order.
func (g *Game) Maps() []*Map {
	return g.catalog.Maps
}

// Map looks a map up by id.
func (g *Game) Map(id string) (*Map, bool) {
	return g.catalog.Map(id)
}

func (g *Game) session(m *Map) *Session {
	s, ok := g.sessions[m.ID]
	if !ok {
		rng := rand.New(rand.NewSource(g.seeds.Int63()))
		s = NewSession(m, g.catalog.LootConfig, g.catalog.RetirementTime, g.randomSpawn, rng)
		g.sessions[m.ID] = s
	}
	return s
}

// Join places a new dog on the requested map and issues its token.
func (g *Game) Join(mapID, name string) (JoinResult, error) {
	if name == "" {
		return JoinResult{}, ErrInvalidName
	}
	m, ok := g.catalog.Map(mapID)
	if !ok {
		return JoinResult{}, ErrMapNotFound
	}
	tok := g.tokgen.Next()
	for {
		if _, exists := g.tokens[tok]; !exists {
			break
		}
		tok = g.tokgen.Next()
	}
	d := g.session(m).Join(name, tok)
	g.tokens[tok] = mapID
	return JoinResult{Token: tok, PlayerID: d.ID}, nil
}

// FindDog resolves a bearer token to its session and dog.
func (g *Game) FindDog(tok Token) (*Session, *Dog, error) {
	mapID, ok := g.tokens[tok]
	if !ok {
		return nil, nil, ErrUnknownToken
	}
	s, ok := g.sessions[mapID]
	if !ok {
		return nil, nil, ErrUnknownToken
	}
	d, ok := s.Dog(tok)
	if !ok {
		return nil, nil, ErrUnknownToken
	}
	return s, d, nil
}

// Move points a dog in a new direction at the map speed.
func (g *Game) Move(tok Token, dir Direction) error {
	s, d, err := g.FindDog(tok)
	if err != nil {
		return err
	}
	d.SetMove(dir, s.Map().DogSpeed)
	return nil
}

// Tick advances every session by dt seconds. Retired dogs have their
// tokens unmapped before the retirees are handed to the caller, so a
// stale token can never resolve to a gone player.
func (g *Game) Tick(dt float64) []Retiree {
	ids := make([]string, 0, len(g.sessions))
	for id := range g.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var retired []Retiree
	for _, id := range ids {
		rs := g.sessions[id].Tick(dt)
		for _, r := range rs {
			delete(g.tokens, r.Token)
		}
		retired = append(retired, rs...)
	}
	return retired
}

// Totals reports world counters for the metrics gauges.
func (g *Game) Totals() (dogs, loot, sessions int) {
	for _, s := range g.sessions {
		dogs += s.DogCount()
		loot += s.LootCount()
	}
	return dogs, loot, len(g.sessions)
}
