package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"dogwalk/internal/app"
	"dogwalk/internal/game"
	"dogwalk/internal/render"
	"dogwalk/internal/scores"
)

// GameApp is the slice of the application facade the HTTP layer calls.
// *app.Application implements it; tests may substitute a stub without
// spinning up the strand.
type GameApp interface {
	// Maps lists the immutable catalog in config order.
	Maps() []*game.Map
	// Map looks a catalog map up by id.
	Map(id string) (*game.Map, bool)
	// Join adds a player to a map's session and issues a token.
	Join(mapID, name string) (game.JoinResult, error)
	// Move points the caller's dog in a new direction.
	Move(tok game.Token, dir game.Direction) error
	// Players lists the dogs sharing the caller's session.
	Players(tok game.Token) ([]app.PlayerEntry, error)
	// State copies the caller's session into plain values.
	State(tok game.Token) (app.StateView, error)
	// AdvanceTime runs one simulation step of dt seconds.
	AdvanceTime(dt float64)
}

// RecordsProvider serves scoreboard pages. *scores.Repository implements
// it; record reads bypass the game strand and hit the database directly.
type RecordsProvider interface {
	Page(ctx context.Context, start, maxItems int) ([]scores.Record, error)
}

// Config carries the dependencies of the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.Config{
//	    App:         application,
//	    TickEnabled: true,
//	    RateLimit:   &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type Config struct {
	// App is the game facade (required).
	App GameApp

	// Records backs /api/v1/game/records. When nil the endpoint answers
	// with the catch-all bad request, which keeps handler tests free of
	// a database.
	Records RecordsProvider

	// Previews caches rendered map images. A fresh cache is created
	// when nil.
	Previews *render.Cache

	// Feed, when set, mounts the /ws/state live state feed.
	Feed *StateFeed

	// WWWRoot is the static asset directory. Empty disables the file
	// server.
	WWWRoot string

	// TickEnabled mounts POST /api/v1/game/tick. It must be true only
	// when the server runs without an internal ticker.
	TickEnabled bool

	// RateLimiter is an optional pre-built limiter; when nil one is
	// created from RateLimit (or the defaults).
	RateLimiter *IPRateLimiter

	// RateLimit configures the per-IP limiter when RateLimiter is nil.
	RateLimit *RateLimitConfig

	// CORSOrigins overrides the allowed origins. Nil means any origin:
	// the API is a public game surface played from arbitrary hosts.
	CORSOrigins []string

	// DisableLogging drops the request log middleware (benchmarks).
	DisableLogging bool
}

// NewRouter builds the HTTP routing tree. It opens no listeners, so the
// mux can be handed straight to httptest. Middleware order is request
// log, recoverer, then per-IP rate limiting and CORS on the API subtree
// only; the websocket feed and static files are exempt from the limiter.
// A nil RateLimiter gets one built here whose cleanup goroutine is never
// stopped; long-lived callers should pass their own.
func NewRouter(cfg Config) *chi.Mux {
	h := &apiHandlers{
		app:         cfg.App,
		records:     cfg.Records,
		previews:    cfg.Previews,
		tickEnabled: cfg.TickEnabled,
	}
	if h.previews == nil {
		h.previews = render.NewCache(render.DefaultCacheSize)
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		limitCfg := DefaultRateLimitConfig
		if cfg.RateLimit != nil {
			limitCfg = *cfg.RateLimit
		}
		limiter = NewIPRateLimiter(limitCfg)
	}

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	if !cfg.DisableLogging {
		r.Use(requestLogger)
	}
	r.Use(recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Use(limiter.Middleware)
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "HEAD", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}))

		api.HandleFunc("/v1/maps", h.handleMaps)
		api.HandleFunc("/v1/maps/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.handleMapByID(w, r, chi.URLParam(r, "id"))
		})
		api.HandleFunc("/v1/maps/{id}/preview", func(w http.ResponseWriter, r *http.Request) {
			h.handleMapPreview(w, r, chi.URLParam(r, "id"))
		})

		api.HandleFunc("/v1/game/join", h.handleJoin)
		api.HandleFunc("/v1/game/players", h.handlePlayers)
		api.HandleFunc("/v1/game/state", h.handleState)
		api.HandleFunc("/v1/game/player/action", h.handleAction)
		api.HandleFunc("/v1/game/tick", h.handleTick)
		api.HandleFunc("/v1/game/records", h.handleRecords)

		// Anything else under /api is a client error, never a file.
		api.NotFound(h.handleBadRequest)
	})

	if cfg.Feed != nil {
		r.Get("/ws/state", cfg.Feed.Handle)
	}

	if cfg.WWWRoot != "" {
		r.Handle("/*", NewStaticHandler(cfg.WWWRoot))
	}

	return r
}
