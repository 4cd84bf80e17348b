package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dogwalk/internal/game"
)

const (
	// MaxWSConnectionsTotal caps state feed connections server-wide.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps state feed connections per client IP.
	MaxWSConnectionsPerIP = 10
)

const (
	// feedWriteWait bounds a single frame write to the peer.
	feedWriteWait = time.Second

	// feedPingInterval is how often liveness pings go out. A peer that
	// returns no pong for feedPongWait is considered gone.
	feedPingInterval = 5 * time.Second
	feedPongWait     = 4 * feedPingInterval
)

var errPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// FeedConfig tunes the state feed limits.
type FeedConfig struct {
	MaxTotal int
	MaxPerIP int
	// AllowedOrigins lists extra origins accepted besides same-host and
	// localhost. Non-browser clients send no Origin and always pass.
	AllowedOrigins []string
}

// DefaultFeedConfig returns the production limits.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		MaxTotal: MaxWSConnectionsTotal,
		MaxPerIP: MaxWSConnectionsPerIP,
	}
}

// feedClient is one live state feed connection. notify has capacity one
// so that a burst of ticks collapses into a single pending wakeup; the
// publish pump always fetches fresh state anyway.
type feedClient struct {
	conn   *websocket.Conn
	ip     string
	tok    game.Token
	notify chan struct{}
}

// StateFeed pushes a player's session state over a websocket after
// every simulation step, sparing clients the polling of
// /api/v1/game/state. Connections authenticate with the same player
// token, passed as the authToken query parameter since browsers cannot
// set headers on websocket dials.
type StateFeed struct {
	app       GameApp
	cfg       FeedConfig
	wsLimiter *WebSocketRateLimiter
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	closed  bool
	serving sync.WaitGroup
}

// NewStateFeed builds the feed. No goroutines start until a client
// connects.
func NewStateFeed(app GameApp, cfg FeedConfig) *StateFeed {
	if cfg.MaxTotal <= 0 {
		cfg.MaxTotal = MaxWSConnectionsTotal
	}
	if cfg.MaxPerIP <= 0 {
		cfg.MaxPerIP = MaxWSConnectionsPerIP
	}
	f := &StateFeed{
		app:       app,
		cfg:       cfg,
		wsLimiter: NewWebSocketRateLimiter(cfg.MaxPerIP),
		clients:   make(map[*feedClient]struct{}),
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     f.checkOrigin,
	}
	return f
}

// checkOrigin admits same-host browsers, localhost during development,
// configured extras, and non-browser clients (no Origin header).
func (f *StateFeed) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		RecordConnectionRejected("origin")
		return false
	}
	host := u.Hostname()
	if u.Host == r.Host || host == "localhost" || host == "127.0.0.1" {
		return true
	}
	for _, allowed := range f.cfg.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	log.WithField("origin", origin).Warn("state feed connection rejected by origin check")
	RecordConnectionRejected("origin")
	return false
}

// TickNotify wakes every connected client. It runs on the game strand
// after each step, so it only flips buffered channels and never blocks.
func (f *StateFeed) TickNotify() {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		select {
		case c.notify <- struct{}{}:
		default:
		}
	}
}

// ClientCount reports live connections.
func (f *StateFeed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Limiter exposes the per-IP counter for the debug stats page.
func (f *StateFeed) Limiter() *WebSocketRateLimiter {
	return f.wsLimiter
}

// Close tears down every live connection and waits for their pumps to
// stop, so after it returns nothing touches the game anymore. New
// connections are refused afterwards.
func (f *StateFeed) Close() {
	f.mu.Lock()
	f.closed = true
	conns := make([]*websocket.Conn, 0, len(f.clients))
	for c := range f.clients {
		conns = append(conns, c.conn)
	}
	f.mu.Unlock()

	// Closing the conn fails the read pump, which cancels the errgroup
	// and unwinds the other pumps.
	for _, conn := range conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(feedWriteWait))
		conn.Close()
	}
	f.serving.Wait()
}

// Handle upgrades GET /ws/state?authToken=... into a push connection.
// Auth failures keep the error envelope of the REST API because they
// happen before the upgrade.
func (f *StateFeed) Handle(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("authToken")
	if raw == "" {
		writeError(w, http.StatusUnauthorized, codeInvalidToken, "Authorization header is missing")
		return
	}
	tok, ok := game.ParseToken(raw)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeInvalidToken, "Token has an invalid length")
		return
	}
	if _, err := f.app.Players(tok); err != nil {
		writeGameError(w, err)
		return
	}

	ip := GetClientIP(r)
	f.mu.RLock()
	total := len(f.clients)
	closed := f.closed
	f.mu.RUnlock()
	if closed {
		http.Error(w, "Shutting down", http.StatusServiceUnavailable)
		return
	}
	if total >= f.cfg.MaxTotal {
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !f.wsLimiter.Allow(ip) {
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.wsLimiter.Release(ip)
		return
	}

	client := &feedClient{
		conn:   conn,
		ip:     ip,
		tok:    tok,
		notify: make(chan struct{}, 1),
	}
	client.notify <- struct{}{} // first frame goes out without waiting for a tick
	f.register(client)

	f.serving.Add(1)
	go f.serve(client, r)
}

func (f *StateFeed) register(c *feedClient) {
	f.mu.Lock()
	f.clients[c] = struct{}{}
	count := len(f.clients)
	f.mu.Unlock()
	log.WithFields(log.Fields{"ip": c.ip, "total": count}).Info("state feed client connected")
	UpdateWSConnections(count)
}

func (f *StateFeed) unregister(c *feedClient) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		f.wsLimiter.Release(c.ip)
		c.conn.Close()
	}
	count := len(f.clients)
	f.mu.Unlock()
	log.WithFields(log.Fields{"ip": c.ip, "total": count}).Info("state feed client disconnected")
	UpdateWSConnections(count)
}

// serve runs the three pumps until any of them fails: publishing state
// frames, the ping/pong liveness check, and the read loop that notices
// peer closes. Errors from websocket reads and writes are permanent, so
// the first failure unwinds the whole group.
func (f *StateFeed) serve(c *feedClient, r *http.Request) {
	defer f.serving.Done()
	defer f.unregister(c)

	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error { return f.readMessages(c) })
	group.Go(func() error { return f.pingPong(ctx, c) })
	group.Go(func() error { return f.publish(ctx, c) })

	if err := group.Wait(); err != nil && websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.WithFields(log.Fields{"ip": c.ip, "error": err.Error()}).Warn("state feed client failed")
	}
}

// readMessages drains the peer. The feed is push-only; reading is still
// required for pong handlers and close frames to be processed.
func (f *StateFeed) readMessages(c *feedClient) error {
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func (f *StateFeed) pingPong(ctx context.Context, c *feedClient) error {
	pong := make(chan struct{}, 1)
	c.conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), feedPingInterval)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > feedPongWait {
				return errPongDeadlineExceeded
			}
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait))
			if err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

// publish pushes one personalized state frame per wakeup. When the
// player retires mid-connection the token disappears from the game; the
// feed then says goodbye with a normal close instead of an error.
func (f *StateFeed) publish(ctx context.Context, c *feedClient) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.notify:
			view, err := f.app.State(c.tok)
			if err != nil {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(feedWriteWait))
				return nil
			}
			payload, err := json.Marshal(stateBodyFrom(view))
			if err != nil {
				return err
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait)); err != nil {
				return err
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
			IncrementWSMessages()
		}
	}
}
