// Package eventbus implements the connection pool, per-connection bounded
// queues, heartbeats, and broadcast fan-out described by the core. Framing
// onto the wire is handled by the sibling httpapi package; this file is
// transport-agnostic.
package eventbus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaye773/summarizer-core/internal/logging"
)

// EventType is the closed set of event types consumed by clients.
type EventType string

const (
	EventConnected   EventType = "connected"
	EventHeartbeat   EventType = "heartbeat"
	EventJobStarted  EventType = "job_started"
	EventJobProgress EventType = "job_progress"
	EventJobRetry    EventType = "job_retry"
	EventJobComplete EventType = "job_complete"
	EventJobFailed   EventType = "job_failed"
	EventSystem      EventType = "system"
)

// Event is one record published to the bus.
type Event struct {
	Type                EventType
	Data                map[string]any
	Timestamp           time.Time
	TargetSubscriberKey string // optional; empty means no per-subscriber targeting
	TargetSubscriptions []EventType
}

// ConnState is a node in the connection lifecycle.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosing
	StateClosed
)

// Connection is one subscriber's mailbox. The outbound transport (the
// httpapi SSE handler) drains Outgoing; the bus only ever enqueues.
type Connection struct {
	ID            string
	ClientID      string
	SubscriberKey string
	Subscriptions map[EventType]bool

	CreatedAt    time.Time
	lastActivity atomic64Time

	Outgoing chan Event

	metrics *Metrics

	mu            sync.Mutex
	state         ConnState
	overflowCount int
	missedBeats   int
}

// atomic64Time is a tiny helper so LastActivity can be read/written without a
// dedicated mutex on the hot publish path.
type atomic64Time struct {
	mu sync.RWMutex
	t  time.Time
}

func (a *atomic64Time) set(t time.Time) {
	a.mu.Lock()
	a.t = t
	a.mu.Unlock()
}

func (a *atomic64Time) get() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.t
}

func (c *Connection) touch() { c.lastActivity.set(time.Now()) }

// LastActivity returns the last time an event was enqueued or a heartbeat
// delivered.
func (c *Connection) LastActivity() time.Time { return c.lastActivity.get() }

// State returns the connection's current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// enqueue pushes ev, dropping the oldest queued event on overflow rather
// than blocking or disconnecting the client.
func (c *Connection) enqueue(ev Event) {
	c.touch()
	for {
		select {
		case c.Outgoing <- ev:
			return
		default:
		}
		select {
		case <-c.Outgoing:
			c.mu.Lock()
			c.overflowCount++
			c.mu.Unlock()
			c.metrics.RecordOverflow()
		default:
			// channel momentarily empty (drained concurrently); retry send
		}
	}
}

// Config tunes pool-wide limits, matching the configuration surface in spec.
type Config struct {
	MaxConnections      int
	MaxPerClient        int
	QueueCapacity       int
	HeartbeatInterval   time.Duration
	IdleTimeout         time.Duration
	CompressionThreshold int
	Logger              logging.StandardLogger
	Metrics             *Metrics
}

const (
	DefaultMaxConnections       = 500
	DefaultMaxPerClient         = 10
	DefaultQueueCapacity        = 256
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultIdleTimeout          = 5 * time.Minute
	DefaultCompressionThreshold = 1024
	missedBeatsThreshold        = 2
)

func defaultConfig(cfg Config) Config {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = DefaultMaxConnections
	}
	if cfg.MaxPerClient <= 0 {
		cfg.MaxPerClient = DefaultMaxPerClient
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = DefaultCompressionThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = &logging.DiscardLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewNoopMetrics()
	}
	return cfg
}

// PoolFullError reports that Register could not admit a new connection.
type PoolFullError struct {
	PerClient bool
}

func (e *PoolFullError) Error() string {
	if e.PerClient {
		return "eventbus: per-client connection limit reached"
	}
	return "eventbus: global connection limit reached"
}

// Bus is the connection pool and broadcaster.
type Bus struct {
	cfg Config
	log logging.StandardLogger

	mu          sync.RWMutex
	conns       map[string]*Connection
	perClient   map[string]int

	stopHeartbeat chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// New constructs a Bus and starts its heartbeat/reaper loop.
func New(cfg Config) *Bus {
	cfg = defaultConfig(cfg)
	b := &Bus{
		cfg:           cfg,
		log:           cfg.Logger,
		conns:         make(map[string]*Connection),
		perClient:     make(map[string]int),
		stopHeartbeat: make(chan struct{}),
	}
	b.wg.Add(1)
	go b.heartbeatLoop()
	return b
}

// Register admits a new connection, subject to the global and per-client
// caps, and enqueues its initial `connected` event.
func (b *Bus) Register(clientID, subscriberKey string, subscriptions []EventType) (*Connection, error) {
	b.mu.Lock()
	if len(b.conns) >= b.cfg.MaxConnections {
		b.mu.Unlock()
		b.cfg.Metrics.RecordRejected(false)
		return nil, &PoolFullError{}
	}
	if b.perClient[clientID] >= b.cfg.MaxPerClient {
		b.mu.Unlock()
		b.cfg.Metrics.RecordRejected(true)
		return nil, &PoolFullError{PerClient: true}
	}

	subs := make(map[EventType]bool, len(subscriptions))
	for _, s := range subscriptions {
		subs[s] = true
	}

	conn := &Connection{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		SubscriberKey: subscriberKey,
		Subscriptions: subs,
		CreatedAt:     time.Now(),
		Outgoing:      make(chan Event, b.cfg.QueueCapacity),
		state:         StateOpen,
		metrics:       b.cfg.Metrics,
	}
	conn.touch()

	b.conns[conn.ID] = conn
	b.perClient[clientID]++
	connCount := len(b.conns)
	b.mu.Unlock()
	b.cfg.Metrics.RecordConnectionCount(connCount)

	names := make([]string, 0, len(subscriptions))
	for _, s := range subscriptions {
		names = append(names, string(s))
	}
	conn.enqueue(Event{
		Type:      EventConnected,
		Data:      map[string]any{"connection_id": conn.ID, "subscriptions": names},
		Timestamp: time.Now(),
	})
	return conn, nil
}

// Unregister removes a connection from the pool. Safe to call more than
// once.
func (b *Bus) Unregister(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn, ok := b.conns[connID]
	if !ok {
		return
	}
	conn.setState(StateClosed)
	delete(b.conns, connID)
	b.perClient[conn.ClientID]--
	if b.perClient[conn.ClientID] <= 0 {
		delete(b.perClient, conn.ClientID)
	}
	b.cfg.Metrics.RecordConnectionCount(len(b.conns))
}

// Publish fans ev out to every open connection whose subscriptions include
// ev.Type and whose subscriber key matches ev.TargetSubscriberKey, if set.
// Enqueue-only: never blocks on a slow connection.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	b.mu.RLock()
	var delivered bool
	for _, conn := range b.conns {
		if conn.State() != StateOpen {
			continue
		}
		if !conn.Subscriptions[ev.Type] {
			continue
		}
		if ev.TargetSubscriberKey != "" && conn.SubscriberKey != ev.TargetSubscriberKey {
			continue
		}
		conn.enqueue(ev)
		delivered = true
	}
	b.mu.RUnlock()
	if delivered {
		b.cfg.Metrics.RecordPublish(ev.Type)
	}
}

// Broadcast delivers ev to every open connection, irrespective of
// subscriptions — used only for the terminal system:shutdown notice.
func (b *Bus) Broadcast(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, conn := range b.conns {
		if conn.State() != StateOpen {
			continue
		}
		conn.enqueue(ev)
	}
}

func (b *Bus) heartbeatLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopHeartbeat:
			return
		case <-ticker.C:
			b.beatAndReap()
		}
	}
}

func (b *Bus) beatAndReap() {
	now := time.Now()

	b.mu.RLock()
	conns := make([]*Connection, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.RUnlock()

	var toReap []string
	for _, conn := range conns {
		if conn.State() != StateOpen {
			continue
		}
		if now.Sub(conn.LastActivity()) > b.cfg.IdleTimeout {
			toReap = append(toReap, conn.ID)
			continue
		}

		before := conn.overflowQueueDepth()
		conn.enqueue(Event{Type: EventHeartbeat, Data: map[string]any{}})
		after := conn.overflowQueueDepth()

		if before == b.cfg.QueueCapacity && after == b.cfg.QueueCapacity {
			conn.mu.Lock()
			conn.missedBeats++
			missed := conn.missedBeats
			conn.mu.Unlock()
			if missed >= missedBeatsThreshold {
				toReap = append(toReap, conn.ID)
			}
		} else {
			conn.mu.Lock()
			conn.missedBeats = 0
			conn.mu.Unlock()
		}
	}

	for _, id := range toReap {
		b.mu.Lock()
		if conn, ok := b.conns[id]; ok {
			conn.setState(StateClosing)
		}
		b.mu.Unlock()
	}
}

func (c *Connection) overflowQueueDepth() int { return len(c.Outgoing) }

// Shutdown sends a terminal system:shutdown event to every connection, stops
// the heartbeat loop, and marks every connection Closing so the SSE handler
// unwinds its request.
func (b *Bus) Shutdown() {
	b.Broadcast(Event{Type: EventSystem, Data: map[string]any{"reason": "shutdown"}})
	b.stopOnce.Do(func() { close(b.stopHeartbeat) })
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conn := range b.conns {
		conn.setState(StateClosing)
	}
}

// ConnectionCount reports the current pool size, for metrics/health.
func (b *Bus) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

// CompressionThreshold reports the resolved (defaulted) payload-size cutoff
// above which a subscriber's handler should gzip+base64 an event body.
func (b *Bus) CompressionThreshold() int {
	return b.cfg.CompressionThreshold
}
