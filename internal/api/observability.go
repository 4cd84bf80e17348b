package api

import (
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"

	"dogwalk/internal/app"
)

// Metrics with bounded cardinality (no per-player or per-token labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one simulation step",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	dogCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_dog_count",
		Help: "Current number of dogs across all sessions",
	})

	lootCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_loot_count",
		Help: "Current number of lost objects on the ground",
	})

	sessionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_session_count",
		Help: "Current number of live map sessions",
	})

	retiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_retired_players_total",
		Help: "Players retired for inactivity",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: "rate_limit", "origin", "ws_limit"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active state feed connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total state feed messages sent",
	})
)

// ObserveTick feeds one step's numbers into the gauges. Wired as the
// application's tick listener, so it runs on the strand and must stay
// allocation-free.
func ObserveTick(st app.TickStats) {
	tickDuration.Observe(st.Duration.Seconds())
	dogCount.Set(float64(st.Dogs))
	lootCount.Set(float64(st.Loot))
	sessionCount.Set(float64(st.Sessions))
	if st.Retired > 0 {
		retiredTotal.Add(float64(st.Retired))
	}
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of: "rate_limit", "origin", "ws_limit".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates the state feed connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one pushed state frame.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// ObservabilityConfig configures the localhost debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // must stay on a loopback address in production
	BasicAuthUser string // optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the internal observability server: pprof,
// Prometheus metrics, a health probe and a process stats page. It must
// bind to localhost only; pprof on a public interface is an easy DoS.
func StartDebugServer(cfg ObservabilityConfig, limiter *IPRateLimiter, wsLimiter *WebSocketRateLimiter) error {
	if !cfg.Enabled {
		log.Info("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Warn("debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := collectProcessStats(proc)
		if limiter != nil {
			stats["rate_limiter"] = limiter.GetStats()
		}
		if wsLimiter != nil {
			stats["ws_limiter"] = wsLimiter.GetStats()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.WithField("address", cfg.ListenAddr).Info("debug server started")
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.WithField("error", err.Error()).Warn("debug server stopped")
		}
	}()

	return nil
}

// collectProcessStats gathers process and host numbers for /stats.
// Every gopsutil call can fail on exotic platforms; failures leave the
// key out rather than failing the page.
func collectProcessStats(proc *process.Process) map[string]interface{} {
	stats := map[string]interface{}{
		"goroutines": runtime.NumGoroutine(),
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats["cpu_percent"] = cpu
	}
	if mi, err := proc.MemoryInfo(); err == nil {
		stats["rss_bytes"] = mi.RSS
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["host_mem_used_percent"] = vm.UsedPercent
	}
	if hi, err := host.Info(); err == nil {
		stats["host_uptime_seconds"] = hi.Uptime
		stats["host_os"] = hi.OS
	}
	if la, err := load.Avg(); err == nil {
		stats["load_1m"] = la.Load1
		stats["load_5m"] = la.Load5
		stats["load_15m"] = la.Load15
	}
	return stats
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
