package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zoobzio/cadence"
)

// Actions fired by every session's pair.
const (
	actionIncrease = "increase"
	actionDecrease = "decrease"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	sessionSendBuf = 64
)

// inboundMsg is the wire format for client → daemon messages.
//
//	{"type":"keydown"|"keyup","code":N,"mods":["ctrl",...],"repeat":bool}
//	{"type":"focuslost"}
//	{"type":"action","name":"increase"|"decrease"}
type inboundMsg struct {
	Type   string   `json:"type"`
	Code   uint32   `json:"code,omitempty"`
	Mods   []string `json:"mods,omitempty"`
	Repeat bool     `json:"repeat,omitempty"`
	Name   string   `json:"name,omitempty"`
}

// outboundMsg is the wire format for daemon → client messages.
//
//	{"type":"trigger","action":...,"value":N,"count":N}
//	{"type":"mode","action":...,"mode":...}
type outboundMsg struct {
	Type   string  `json:"type"`
	Action string  `json:"action,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Count  int     `json:"count,omitempty"`
	Mode   string  `json:"mode,omitempty"`
}

// Server exposes the edge dispatcher over a WebSocket feed. Each connection
// gets its own pair, dispatcher and simulated quantity; the shared registry
// keeps every pair's configuration live.
type Server struct {
	logger   *slog.Logger
	registry *cadence.Registry
	up       cadence.Combo
	down     cadence.Combo
	quantity QuantityConfig

	nextID atomic.Uint64

	mu       sync.Mutex
	sessions map[*session]struct{}
}

// NewServer wires the WS edge feed against the registry.
func NewServer(logger *slog.Logger, registry *cadence.Registry, cfg Config) (*Server, error) {
	up, down, err := cfg.Combos()
	if err != nil {
		return nil, err
	}
	return &Server{
		logger:   logger,
		registry: registry,
		up:       up,
		down:     down,
		quantity: cfg.Quantity,
		sessions: make(map[*session]struct{}),
	}, nil
}

var upgrader = websocket.Upgrader{
	// NOTE: If you need stricter origin checks, implement them at integration time.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Register registers the WS and health handlers on the provided mux.
func (s *Server) Register(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	id := fmt.Sprintf("conn-%d", s.nextID.Add(1))
	sess := newSession(id, conn, s.quantity, s.logger.With("session", id))

	pair, err := s.registry.Create(id, sess, actionIncrease, actionDecrease, cadence.WithMetrics(sess))
	if err != nil {
		s.logger.Error("session create failed", "session", id, "error", err)
		_ = conn.Close()
		return
	}
	sess.bind(pair, s.up, s.down)

	s.track(sess)
	s.logger.Info("session opened", "session", id, "remote_addr", r.RemoteAddr)

	go sess.writePump()
	sess.readPump() // blocks until the client disconnects

	s.untrack(sess)
	// Remove stops the pair's timers before the send queue goes away, so no
	// trigger callback can outlive the session.
	s.registry.Remove(id)
	sess.shutdown()
	_ = conn.Close()
	s.logger.Info("session closed", "session", id)
}

// CloseAll disconnects every session. Handlers finish their own cleanup.
func (s *Server) CloseAll() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.conn.Close()
	}
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// session is one connection's state: the simulated bounded quantity it
// controls, its dispatcher, and the outbound queue. It is both the Host its
// channels fire at and their MetricsProvider, which is how press and mode
// edges reach the outbound feed.
type session struct {
	cadence.NoOpMetricsProvider

	id     string
	logger *slog.Logger
	conn   *websocket.Conn

	send chan []byte
	done chan struct{}
	once sync.Once

	dispatcher *cadence.Dispatcher
	pair       *cadence.Pair

	mu     sync.Mutex
	value  float64
	min    float64
	max    float64
	step   float64
	counts map[string]int
}

func newSession(id string, conn *websocket.Conn, q QuantityConfig, logger *slog.Logger) *session {
	return &session{
		id:     id,
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, sessionSendBuf),
		done:   make(chan struct{}),
		value:  q.Initial,
		min:    q.Min,
		max:    q.Max,
		step:   q.Step,
		counts: make(map[string]int),
	}
}

func (s *session) bind(pair *cadence.Pair, up, down cadence.Combo) {
	s.pair = pair
	s.dispatcher = cadence.NewDispatcher()
	s.dispatcher.Bind(pair.Up(), up)
	s.dispatcher.Bind(pair.Down(), down)
}

// Quantity implements cadence.Host.
func (s *session) Quantity() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, true
}

// FireAction implements cadence.Host: one clamped step of the simulated
// quantity, reported to the client.
func (s *session) FireAction(name string) error {
	s.mu.Lock()
	switch name {
	case actionIncrease:
		s.value = min(s.value+s.step, s.max)
	case actionDecrease:
		s.value = max(s.value-s.step, s.min)
	}
	s.counts[name]++
	msg := outboundMsg{Type: "trigger", Action: name, Value: s.value, Count: s.counts[name]}
	s.mu.Unlock()

	s.enqueue(msg)
	return nil
}

// OnPress resets the per-press trigger count.
func (s *session) OnPress(action string) {
	s.mu.Lock()
	s.counts[action] = 0
	s.mu.Unlock()
}

// OnModeChange feeds mode transitions to the client.
func (s *session) OnModeChange(action string, _, to cadence.Mode) {
	s.enqueue(outboundMsg{Type: "mode", Action: action, Mode: to.String()})
}

// enqueue serializes and queues an outbound message. It never blocks; a full
// queue drops the message, since these callbacks run inside channel timers.
func (s *session) enqueue(msg outboundMsg) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal outbound message", "error", err)
		return
	}
	select {
	case s.send <- b:
	default:
		s.logger.Warn("session send queue full, dropping message", "type", msg.Type)
	}
}

func (s *session) shutdown() {
	s.once.Do(func() { close(s.done) })
}

// readPump parses inbound edge messages and routes them to the dispatcher.
// It returns when the connection dies; the caller handles cleanup.
func (s *session) readPump() {
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				s.logger.Debug("session read closed", "code", ce.Code, "reason", ce.Text)
			} else {
				s.logger.Debug("session read error", "error", err)
			}
			return
		}
		s.handleMessage(data)
	}
}

func (s *session) handleMessage(data []byte) {
	var m inboundMsg
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("bad inbound message", "error", err)
		return
	}

	switch m.Type {
	case "keydown":
		s.dispatcher.KeyDown(cadence.Event{Code: cadence.Code(m.Code), Mods: parseMods(m.Mods), Repeat: m.Repeat})
	case "keyup":
		s.dispatcher.KeyUp(cadence.Event{Code: cadence.Code(m.Code), Mods: parseMods(m.Mods), Repeat: m.Repeat})
	case "focuslost":
		s.dispatcher.FocusLost()
	case "action":
		switch m.Name {
		case actionIncrease:
			s.dispatcher.ActionTriggered(s.pair.Up())
		case actionDecrease:
			s.dispatcher.ActionTriggered(s.pair.Down())
		default:
			s.logger.Warn("unknown action", "name", m.Name)
		}
	default:
		s.logger.Warn("unknown message type", "type", m.Type)
	}
}

// writePump drains the send queue to the connection and keeps the client
// alive with pings. It exits on write error or shutdown.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					s.logger.Debug("session write error", "error", err)
				}
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					s.logger.Debug("session ping error", "error", err)
				}
				return
			}
		}
	}
}

func parseMods(names []string) cadence.Modifier {
	mods := cadence.ModNone
	for _, n := range names {
		mods = mods.With(cadence.ModifierFromName(n))
	}
	return mods
}
