package game

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/pierrec/lz4"
)

// stateVersion guards the state file layout; a file written by an
// incompatible build is rejected on load.
const stateVersion = 1

// DogState is the frozen form of one dog inside a state file.
type DogState struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Token    string    `json:"token"`
	Pos      Point     `json:"pos"`
	Speed    Speed     `json:"speed"`
	Dir      string    `json:"dir"`
	Bag      []BagItem `json:"bag"`
	Score    int       `json:"score"`
	IdleTime float64   `json:"idleTime"`
	PlayTime float64   `json:"playTime"`
}

// LootState is the frozen form of one item on the ground.
type LootState struct {
	ID   int   `json:"id"`
	Type int   `json:"type"`
	Pos  Point `json:"pos"`
}

// SessionState freezes one session, including the id counters so a
// restored session never reissues an id.
type SessionState struct {
	MapID      string      `json:"mapId"`
	NextDogID  int         `json:"nextDogId"`
	NextLootID int         `json:"nextLootId"`
	Dogs       []DogState  `json:"dogs"`
	Loot       []LootState `json:"loot"`
}

// State is the whole world as written to the state file.
type State struct {
	Version  int            `json:"version"`
	SavedAt  time.Time      `json:"savedAt"`
	Sessions []SessionState `json:"sessions"`
}

// Snapshot freezes every session into plain values. The result shares
// nothing with the live world and can be serialized off the strand.
func (g *Game) Snapshot() *State {
	st := &State{Version: stateVersion, SavedAt: time.Now().UTC()}

	ids := make([]string, 0, len(g.sessions))
	for id := range g.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := g.sessions[id]
		ss := SessionState{MapID: id, NextDogID: s.nextDogID, NextLootID: s.nextLootID}
		for _, d := range s.Dogs() {
			ss.Dogs = append(ss.Dogs, DogState{
				ID:       d.ID,
				Name:     d.Name,
				Token:    string(d.Token),
				Pos:      d.Pos,
				Speed:    d.Speed,
				Dir:      d.Dir.Letter(),
				Bag:      append([]BagItem(nil), d.Bag...),
				Score:    d.Score,
				IdleTime: d.IdleTime,
				PlayTime: d.PlayTime,
			})
		}
		for _, l := range s.LootItems() {
			ss.Loot = append(ss.Loot, LootState{ID: l.ID, Type: l.Type, Pos: l.Pos})
		}
		st.Sessions = append(st.Sessions, ss)
	}
	return st
}

// Restore rebuilds the sessions and the token index from a frozen
// state. It validates everything before touching the registry, so a
// bad file leaves the game unchanged.
func (g *Game) Restore(st *State) error {
	if st.Version != stateVersion {
		return fmt.Errorf("state version %d, want %d", st.Version, stateVersion)
	}

	sessions := make(map[string]*Session, len(st.Sessions))
	tokens := make(map[Token]string)

	for _, ss := range st.Sessions {
		m, ok := g.catalog.Map(ss.MapID)
		if !ok {
			return fmt.Errorf("state references unknown map %q", ss.MapID)
		}
		if _, dup := sessions[ss.MapID]; dup {
			return fmt.Errorf("state has two sessions for map %q", ss.MapID)
		}
		rng := rand.New(rand.NewSource(g.seeds.Int63()))
		s := NewSession(m, g.catalog.LootConfig, g.catalog.RetirementTime, g.randomSpawn, rng)
		s.nextDogID = ss.NextDogID
		s.nextLootID = ss.NextLootID

		for _, ds := range ss.Dogs {
			tok, ok := ParseToken(ds.Token)
			if !ok {
				return fmt.Errorf("state: map %q dog %d has a malformed token", ss.MapID, ds.ID)
			}
			if _, dup := tokens[tok]; dup {
				return fmt.Errorf("state: token %s appears twice", ds.Token)
			}
			dir, ok := DirectionFromLetter(ds.Dir)
			if !ok {
				return fmt.Errorf("state: map %q dog %d has direction %q", ss.MapID, ds.ID, ds.Dir)
			}
			if ds.ID >= ss.NextDogID {
				return fmt.Errorf("state: map %q dog id %d not below next id %d", ss.MapID, ds.ID, ss.NextDogID)
			}
			s.dogs[tok] = &Dog{
				ID:       ds.ID,
				Name:     ds.Name,
				Token:    tok,
				Pos:      ds.Pos,
				Speed:    ds.Speed,
				Dir:      dir,
				Bag:      append([]BagItem(nil), ds.Bag...),
				Score:    ds.Score,
				IdleTime: ds.IdleTime,
				PlayTime: ds.PlayTime,
			}
			tokens[tok] = ss.MapID
		}

		for _, ls := range ss.Loot {
			if ls.ID >= ss.NextLootID {
				return fmt.Errorf("state: map %q loot id %d not below next id %d", ss.MapID, ls.ID, ss.NextLootID)
			}
			s.loot[ls.ID] = &Loot{ID: ls.ID, Type: ls.Type, Pos: ls.Pos}
		}
		sessions[ss.MapID] = s
	}

	g.sessions = sessions
	g.tokens = tokens
	return nil
}

// EncodeState writes the lz4-compressed JSON form of st to w.
func EncodeState(w io.Writer, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compress state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish state stream: %w", err)
	}
	return nil
}

// DecodeState reads a state previously written by EncodeState.
func DecodeState(r io.Reader) (*State, error) {
	data, err := io.ReadAll(lz4.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("decompress state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &st, nil
}
