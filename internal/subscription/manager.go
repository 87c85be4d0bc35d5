// Package subscription owns one streaming price connection per domain
// and keeps it alive: explicit replacement on every scan refresh,
// delayed reconnect on unexpected close.
package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"

	pmws "polymarket-hunter/internal/polymarket/websocket"
	"polymarket-hunter/internal/polymarket/price"
)

// MaxBatchSize is the venue's subscribe-message limit.
const MaxBatchSize = 500

const DefaultReconnectDelay = 3 * time.Second

// TickHandler receives one parsed price update. Handlers run in their
// own goroutine so a slow risk check never delays the read loop.
type TickHandler func(ctx context.Context, tokenID string, p price.Price)

type Config struct {
	URL            string
	Domain         string
	ReconnectDelay time.Duration
}

// Manager is the per-domain connection state machine:
// Idle -> Connecting -> Subscribed -> Reconnecting -> Connecting ...
// A session replaced by Start never reconnects; only the session that
// is still current when its connection drops does. The guard is the
// identity comparison in isCurrent.
type Manager struct {
	cfg     Config
	handler TickHandler
	log     *slog.Logger

	mu      sync.Mutex
	current *session
}

type session struct {
	ids []string

	mu   sync.Mutex
	conn *pmws.Client
}

// attach records the session's live connection so a replacement can
// terminate it. Returns false once the session has been detached.
func (s *session) attach(conn *pmws.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == detached {
		return false
	}
	s.conn = conn
	return true
}

// detach marks the session dead and returns the connection to close,
// if any.
func (s *session) detach() *pmws.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn := s.conn
	s.conn = detached
	if conn == detached {
		return nil
	}
	return conn
}

// detached is a sentinel marking a session that must not reconnect.
var detached = &pmws.Client{}

func New(cfg Config, handler TickHandler, log *slog.Logger) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Manager{
		cfg:     cfg,
		handler: handler,
		log:     log.With("component", "subscription", "domain", cfg.Domain),
	}
}

// Start replaces any active connection with a fresh subscription to
// ids, truncated to the venue's batch limit. The replaced connection
// is terminated immediately and must not enter the reconnect path.
func (m *Manager) Start(ctx context.Context, ids []string) {
	if len(ids) > MaxBatchSize {
		m.log.Warn("truncating subscription list", "requested", len(ids), "limit", MaxBatchSize)
		ids = ids[:MaxBatchSize]
	}
	if len(ids) == 0 {
		m.log.Warn("no tokens to subscribe to")
		return
	}

	sess := &session{ids: ids}
	m.mu.Lock()
	old := m.current
	m.current = sess
	m.mu.Unlock()

	if old != nil {
		m.log.Info("replacing active subscription")
		if conn := old.detach(); conn != nil {
			conn.Close(ctx)
		}
	}

	go m.run(ctx, sess)
}

// Stop terminates the current session without replacement.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	old := m.current
	m.current = nil
	m.mu.Unlock()

	if old != nil {
		if conn := old.detach(); conn != nil {
			conn.Close(ctx)
		}
	}
}

func (m *Manager) isCurrent(sess *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == sess
}

// run drives one session through connect/subscribe/read cycles until
// the session is replaced or the context ends.
func (m *Manager) run(ctx context.Context, sess *session) {
	for m.isCurrent(sess) && ctx.Err() == nil {
		conn, err := pmws.New(ctx, m.cfg.URL)
		if err != nil {
			m.log.Error("couldn't connect", "error", err)
			if !m.sleep(ctx, sess) {
				return
			}
			continue
		}

		if !sess.attach(conn) {
			// Replaced while dialing.
			conn.Close(ctx)
			return
		}

		if err := conn.SubscribePrices(ctx, sess.ids); err != nil {
			m.log.Error("couldn't subscribe", "error", err)
			conn.Close(ctx)
			if !m.sleep(ctx, sess) {
				return
			}
			continue
		}
		m.log.Info("subscribed", "tokens", len(sess.ids))

		m.readLoop(ctx, sess, conn)
		conn.Close(ctx)

		if !m.isCurrent(sess) || ctx.Err() != nil {
			return
		}
		m.log.Warn("connection lost, reconnecting", "delay", m.cfg.ReconnectDelay)
		if !m.sleep(ctx, sess) {
			return
		}
	}
}

// readLoop returns when the connection errors out. Replacement is
// detected per message so a stale session stops promptly.
func (m *Manager) readLoop(ctx context.Context, sess *session, conn *pmws.Client) {
	for {
		ticks, err := conn.ReadTicks(ctx)
		if err != nil {
			if ctx.Err() == nil && m.isCurrent(sess) {
				m.log.Warn("read failed", "error", err)
			}
			return
		}
		if !m.isCurrent(sess) {
			return
		}

		for _, t := range ticks {
			if t.AssetID == "" || t.Price == "" {
				continue
			}
			p, err := price.Parse(string(t.Price))
			if err != nil {
				m.log.Debug("unparseable tick price", "token", t.AssetID, "price", t.Price)
				continue
			}
			go m.handler(ctx, t.AssetID, p)
		}
	}
}

// sleep waits out the reconnect delay; false means give up (session
// replaced or context done).
func (m *Manager) sleep(ctx context.Context, sess *session) bool {
	timer := time.NewTimer(m.cfg.ReconnectDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return m.isCurrent(sess)
	}
}
