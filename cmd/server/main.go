package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"dogwalk/internal/api"
	"dogwalk/internal/app"
	"dogwalk/internal/config"
	"dogwalk/internal/game"
	"dogwalk/internal/render"
	"dogwalk/internal/scores"
)

// strandQueueSize bounds pending game operations. Requests beyond it
// block in their handler goroutines until the strand catches up.
const strandQueueSize = 1024

func main() {
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	cmd := &cli.Command{
		Name:  "game_server",
		Usage: "dog walking game backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config-file",
				Aliases:  []string{"c"},
				Usage:    "map catalog `FILE` (JSON)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "www-root",
				Aliases:  []string{"w"},
				Usage:    "static frontend `DIR`",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "tick-period",
				Aliases: []string{"t"},
				Usage:   "simulation step period in `MS`; omit to drive time via POST /api/v1/game/tick",
			},
			&cli.BoolFlag{
				Name:  "randomize-spawn-points",
				Usage: "spawn dogs at random road points instead of the first road's start",
			},
			&cli.StringFlag{
				Name:  "state-file",
				Usage: "snapshot `FILE` to restore on start and save on exit",
			},
			&cli.IntFlag{
				Name:  "save-state-period",
				Usage: "auto-save period in `MS` of game time (requires --state-file)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithFields(log.Fields{
			"code":      "EXIT_FAILURE",
			"exception": err.Error(),
		}).Error("server exited")
		os.Exit(1)
	}
	log.WithFields(log.Fields{"code": 0}).Info("server exited")
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return fmt.Errorf("%s environment variable not found", config.DatabaseEnvVar)
	}

	catalog, err := game.LoadCatalog(cmd.String("config-file"))
	if err != nil {
		return fmt.Errorf("load map catalog: %w", err)
	}
	log.WithField("maps", len(catalog.Maps)).Info("map catalog loaded")

	g := game.NewGame(catalog, cmd.Bool("randomize-spawn-points"))

	repo, err := scores.Open(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		return fmt.Errorf("open scoreboard database: %w", err)
	}
	defer repo.Close()

	writer := scores.NewWriter(repo, cfg.Scores.QueueSize)
	writer.Start(cfg.Scores.Workers)
	defer writer.Close()

	strand := app.NewStrand(strandQueueSize)
	defer strand.Close()

	// The feed is constructed after the application but observes its
	// ticks; the indirection through the variable breaks the cycle.
	var feed *api.StateFeed
	application := app.New(g, strand, writer, app.Options{
		StateFile:  cmd.String("state-file"),
		SavePeriod: time.Duration(cmd.Int("save-state-period")) * time.Millisecond,
		OnTick: func(st app.TickStats) {
			api.ObserveTick(st)
			if feed != nil {
				feed.TickNotify()
			}
		},
	})
	feed = api.NewStateFeed(application, api.FeedConfig{
		MaxTotal:       cfg.Feed.MaxConnections,
		MaxPerIP:       cfg.Feed.MaxPerIP,
		AllowedOrigins: cfg.Feed.AllowedOrigins,
	})

	if err := application.LoadState(); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	if file := cmd.String("state-file"); file != "" {
		log.WithField("file", file).Info("state persistence enabled")
	}

	limiter := api.NewIPRateLimiter(api.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	defer limiter.Stop()

	tickPeriod := time.Duration(cmd.Int("tick-period")) * time.Millisecond

	router := api.NewRouter(api.Config{
		App:         application,
		Records:     repo,
		Previews:    render.NewCache(render.DefaultCacheSize),
		Feed:        feed,
		WWWRoot:     cmd.String("www-root"),
		TickEnabled: tickPeriod == 0,
		RateLimiter: limiter,
	})

	if err := api.StartDebugServer(api.ObservabilityConfig{
		Enabled:       cfg.Debug.Enabled,
		ListenAddr:    cfg.Debug.Address,
		BasicAuthUser: cfg.Debug.BasicAuthUser,
		BasicAuthPass: cfg.Debug.BasicAuthPass,
	}, limiter, feed.Limiter()); err != nil {
		log.WithField("error", err.Error()).Warn("debug server not started")
	}

	server := api.NewServer(cfg.Server.Addr(), router, api.ServerOptions{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tickCtx, stopTicker := context.WithCancel(context.Background())
	defer stopTicker()
	tickerDone := make(chan struct{})
	if tickPeriod > 0 {
		ticker := app.NewTicker(tickPeriod, application.AdvanceTime)
		go func() {
			defer close(tickerDone)
			ticker.Run(tickCtx)
		}()
		log.WithField("period_ms", tickPeriod.Milliseconds()).Info("internal ticker running")
	} else {
		close(tickerDone)
		log.Info("external tick endpoint enabled")
	}

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Run() }()

	log.WithFields(log.Fields{
		"address": cfg.Server.Address,
		"port":    cfg.Server.Port,
	}).Info("server started")

	var runErr error
	select {
	case <-sigCtx.Done():
	case err := <-serverErr:
		runErr = err
	}

	// Shutdown: stop feeding time, close the listener, hang up the
	// feed, then take the final snapshot while the strand still runs.
	// The deferred closes drain the strand and the score queue after.
	stopTicker()
	<-tickerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Error("http shutdown failed")
	}
	feed.Close()

	if err := application.SaveState(); err != nil {
		log.WithField("error", err.Error()).Error("final state save failed")
		if runErr == nil {
			runErr = err
		}
	}

	return runErr
}
