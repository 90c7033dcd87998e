// Package agent maintains the outbound WebSocket connection to the agent
// service that answers user queries. The process keeps a single connection,
// forwards queries over it, and persists the replies through a sink.
package agent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nvoss/agent-chat/internal/config"
	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State describes the bridge connection lifecycle
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	defaultDialTimeout    = 10 * time.Second
	defaultReconnectDelay = 3 * time.Second
)

// Sink receives agent replies for persistence
type Sink interface {
	AppendAgentReply(ctx context.Context, conversationID, ownerID primitive.ObjectID, reply domain.AgentReply) error
}

// queryFrame is the outbound wire format expected by the agent service
type queryFrame struct {
	Query   string `json:"query"`
	AgentID string `json:"agentId"`
}

// replyFrame is the inbound wire format produced by the agent service
type replyFrame struct {
	Type       string        `json:"type"`
	Content    string        `json:"content"`
	Sources    []sourceFrame `json:"sources"`
	Confidence float64       `json:"confidence"`
	Method     string        `json:"method"`
}

type sourceFrame struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Confidence float64 `json:"confidence"`
}

// method collapses the frame's type/method pair into one stored value.
func (f replyFrame) method() string {
	if f.Method != "" {
		return f.Method
	}
	switch f.Type {
	case "search_response":
		return "search"
	case "model_response":
		return "model"
	case "error":
		return "error"
	}
	return ""
}

// pendingQuery remembers which conversation a forwarded query belongs to.
// The agent service answers queries in order on a connection, so a FIFO
// queue is enough to route each reply.
type pendingQuery struct {
	conversationID primitive.ObjectID
	ownerID        primitive.ObjectID
}

// Bridge owns the connection to the agent service. It reconnects forever
// with a fixed delay until its context is cancelled.
type Bridge struct {
	url            string
	dialTimeout    time.Duration
	reconnectDelay time.Duration
	sink           Sink

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	pending []pendingQuery
}

// NewBridge creates a bridge for the configured agent endpoint
func NewBridge(cfg config.AgentConfig, sink Sink) *Bridge {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}

	return &Bridge{
		url:            cfg.URL,
		dialTimeout:    dialTimeout,
		reconnectDelay: reconnectDelay,
		sink:           sink,
		state:          Disconnected,
	}
}

// Run connects to the agent service and processes replies until ctx is
// cancelled. Connection loss is not fatal; the bridge waits out the
// reconnect delay and dials again.
func (b *Bridge) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		b.setState(Connecting)
		conn, err := b.dial(ctx)
		if err != nil {
			b.setState(Disconnected)
			log.Warn().Err(err).Str("url", b.url).Msg("agent connection failed")
			if !b.sleep(ctx) {
				return
			}
			continue
		}

		log.Info().Str("url", b.url).Msg("agent connected")
		b.attach(conn)
		b.readLoop(ctx, conn)
		b.detach()
		log.Warn().Str("url", b.url).Msg("agent disconnected")

		if !b.sleep(ctx) {
			return
		}
	}
}

// Send forwards a user query to the agent service. It reports false when
// no connection is available or the write fails; the caller treats that as
// "stored without reply" rather than an error.
func (b *Bridge) Send(conversationID, ownerID primitive.ObjectID, query, agentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != Connected || b.conn == nil {
		return false
	}

	if err := b.conn.WriteJSON(queryFrame{Query: query, AgentID: agentID}); err != nil {
		log.Error().Err(err).Msg("failed to forward query to agent")
		// The read loop notices the broken connection and reconnects.
		b.conn.Close()
		return false
	}

	b.pending = append(b.pending, pendingQuery{conversationID: conversationID, ownerID: ownerID})
	return true
}

// Connected reports whether the bridge currently has a live connection
func (b *Bridge) Connected() bool {
	return b.State() == Connected
}

// State returns the current connection state
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bridge) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: b.dialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, b.dialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, b.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the blocking read when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		b.handleFrame(ctx, data)
	}
}

func (b *Bridge) handleFrame(ctx context.Context, data []byte) {
	var frame replyFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Warn().Err(err).Msg("dropping unparseable agent frame")
		return
	}

	pq, ok := b.takePending()
	if !ok {
		log.Warn().Str("type", frame.Type).Msg("dropping agent frame with no pending query")
		return
	}

	if frame.Content == "" {
		log.Warn().Str("type", frame.Type).Msg("dropping agent frame without content")
		return
	}

	sources := make([]domain.Source, 0, len(frame.Sources))
	for _, s := range frame.Sources {
		sources = append(sources, domain.Source{
			Title:      s.Title,
			URL:        s.URL,
			Confidence: s.Confidence,
		})
	}

	reply := domain.AgentReply{
		Content:    frame.Content,
		Sources:    sources,
		Confidence: frame.Confidence,
		Method:     frame.method(),
	}

	if err := b.sink.AppendAgentReply(ctx, pq.conversationID, pq.ownerID, reply); err != nil {
		log.Error().
			Err(err).
			Str("conversation_id", pq.conversationID.Hex()).
			Msg("failed to store agent reply")
	}
}

func (b *Bridge) attach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conn = conn
	b.state = Connected
}

// detach drops the connection and every pending query; replies for them
// can no longer arrive on a fresh connection.
func (b *Bridge) detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	if n := len(b.pending); n > 0 {
		log.Warn().Int("dropped", n).Msg("discarding pending agent queries")
	}
	b.pending = nil
	b.state = Disconnected
}

func (b *Bridge) takePending() (pendingQuery, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return pendingQuery{}, false
	}
	pq := b.pending[0]
	b.pending = b.pending[1:]
	return pq, true
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

// sleep waits out the reconnect delay, returning false when the context
// is cancelled first.
func (b *Bridge) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(b.reconnectDelay):
		return true
	}
}
