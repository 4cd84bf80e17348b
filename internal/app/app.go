package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"dogwalk/internal/game"
	"dogwalk/internal/scores"
)

// ScoreSink receives the records of retired players. Offer must not
// block; it reports false when the record had to be dropped.
type ScoreSink interface {
	Offer(rec scores.Record) bool
}

// TickStats is handed to the tick listener after every step.
type TickStats struct {
	Duration time.Duration
	Dogs     int
	Loot     int
	Sessions int
	Retired  int
}

// Options tune the application beyond its collaborators.
type Options struct {
	// StateFile enables snapshotting when non-empty.
	StateFile string
	// SavePeriod triggers a snapshot whenever this much simulated time
	// has accumulated. Zero disables periodic saves; the shutdown save
	// still happens.
	SavePeriod time.Duration
	// OnTick, when set, observes every simulation step. It runs on the
	// strand and must be cheap.
	OnTick func(TickStats)
}

// Application glues the game registry to the strand, the state file
// and the score sink. Every game mutation funnels through here and,
// via the strand, executes strictly one at a time.
type Application struct {
	game   *game.Game
	strand *Strand
	sink   ScoreSink

	stateFile   string
	savePeriod  float64
	accumulated float64
	onTick      func(TickStats)
}

// New assembles the application. sink may be nil when score
// persistence is disabled (tests).
func New(g *game.Game, strand *Strand, sink ScoreSink, opts Options) *Application {
	return &Application{
		game:       g,
		strand:     strand,
		sink:       sink,
		stateFile:  opts.StateFile,
		savePeriod: opts.SavePeriod.Seconds(),
		onTick:     opts.OnTick,
	}
}

// Maps lists the immutable catalog. Catalog reads skip the strand.
func (a *Application) Maps() []*game.Map {
	return a.game.Maps()
}

// Map looks a catalog map up by id.
func (a *Application) Map(id string) (*game.Map, bool) {
	return a.game.Map(id)
}

// Join adds a player to a map's session and returns the issued token.
func (a *Application) Join(mapID, name string) (game.JoinResult, error) {
	var (
		res game.JoinResult
		err error
	)
	a.strand.Do(func() { res, err = a.game.Join(mapID, name) })
	return res, err
}

// Move points the caller's dog in a new direction.
func (a *Application) Move(tok game.Token, dir game.Direction) error {
	var err error
	a.strand.Do(func() { err = a.game.Move(tok, dir) })
	return err
}

// Players lists the dogs sharing the caller's session.
func (a *Application) Players(tok game.Token) ([]PlayerEntry, error) {
	var (
		out []PlayerEntry
		err error
	)
	a.strand.Do(func() {
		var sess *game.Session
		sess, _, err = a.game.FindDog(tok)
		if err != nil {
			return
		}
		for _, d := range sess.Dogs() {
			out = append(out, PlayerEntry{ID: d.ID, Name: d.Name})
		}
	})
	return out, err
}

// State copies the caller's session into plain values: every dog with
// position, speed, heading, bag and score, plus the loot on the ground.
func (a *Application) State(tok game.Token) (StateView, error) {
	var (
		view StateView
		err  error
	)
	a.strand.Do(func() {
		var sess *game.Session
		sess, _, err = a.game.FindDog(tok)
		if err != nil {
			return
		}
		for _, d := range sess.Dogs() {
			view.Dogs = append(view.Dogs, dogView(d))
		}
		for _, l := range sess.LootItems() {
			view.Loot = append(view.Loot, LootView{ID: l.ID, Type: l.Type, Pos: [2]float64{l.Pos.X, l.Pos.Y}})
		}
	})
	return view, err
}

// AdvanceTime runs one simulation step of dt seconds. The internal
// ticker and the external tick endpoint both end up here.
func (a *Application) AdvanceTime(dt float64) {
	a.strand.Do(func() { a.tick(dt) })
}

// tick runs on the strand.
func (a *Application) tick(dt float64) {
	start := time.Now()
	retired := a.game.Tick(dt)
	for _, r := range retired {
		rec := scores.Record{Name: r.Name, Score: r.Score, PlayTime: r.PlayTime}
		if a.sink != nil && !a.sink.Offer(rec) {
			log.WithFields(log.Fields{"name": r.Name, "score": r.Score}).
				Warn("score queue full, retirement record dropped")
		}
	}
	a.maybeSave(dt)
	if a.onTick != nil {
		dogs, loot, sessions := a.game.Totals()
		a.onTick(TickStats{
			Duration: time.Since(start),
			Dogs:     dogs,
			Loot:     loot,
			Sessions: sessions,
			Retired:  len(retired),
		})
	}
}

// maybeSave snapshots once enough simulated time has accumulated. A
// failed save is logged and retried after the next full period.
func (a *Application) maybeSave(dt float64) {
	if a.stateFile == "" || a.savePeriod <= 0 {
		return
	}
	a.accumulated += dt
	if a.accumulated < a.savePeriod {
		return
	}
	a.accumulated = 0
	if err := a.saveState(); err != nil {
		log.WithFields(log.Fields{"file": a.stateFile, "error": err.Error()}).
			Error("periodic state save failed")
	}
}

// SaveState snapshots the world to the state file. A no-op without a
// configured file.
func (a *Application) SaveState() error {
	var err error
	a.strand.Do(func() { err = a.saveState() })
	return err
}

// saveState runs on the strand. The snapshot is written to a temp file
// in the target directory and renamed over the old state, so a crash
// mid-write never leaves a truncated file behind.
func (a *Application) saveState() error {
	if a.stateFile == "" {
		return nil
	}
	st := a.game.Snapshot()

	tmp, err := os.CreateTemp(filepath.Dir(a.stateFile), ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := game.EncodeState(tmp, st); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), a.stateFile); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// LoadState restores the world from the state file. A missing file
// means a fresh start; any other failure is fatal for the caller.
func (a *Application) LoadState() error {
	var err error
	a.strand.Do(func() { err = a.loadState() })
	return err
}

func (a *Application) loadState() error {
	if a.stateFile == "" {
		return nil
	}
	f, err := os.Open(a.stateFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	st, err := game.DecodeState(f)
	if err != nil {
		return err
	}
	return a.game.Restore(st)
}
