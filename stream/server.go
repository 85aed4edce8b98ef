package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/sim"
)

const (
	writeWait      = 2 * time.Second
	maxMessageSize = 512
	sendQueue      = 4
)

// Options configures a Server.
type Options struct {
	Path      string  // websocket endpoint
	FrameRate float64 // frames simulated and broadcast per second
	MaxSpeed  float64 // speed encoded as 1 in frames
}

// OptionsFromConfig builds server options from the stream and render sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Path:      cfg.Stream.Path,
		FrameRate: cfg.Stream.FrameRate,
		MaxSpeed:  cfg.Render.MaxSpeed,
	}
}

// Server runs a simulation and broadcasts every frame to websocket clients.
// The most recent pointer message from any client drives the interaction.
type Server struct {
	runner   *sim.Runner
	bounds   components.Bounds
	opts     Options
	upgrader websocket.Upgrader

	mu           sync.Mutex
	clients      map[*client]struct{}
	pointer      components.Interaction
	pointerOwner *client

	lastTick atomic.Uint64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer wraps a runner. The runner must not be driven elsewhere.
func NewServer(r *sim.Runner, opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/ws"
	}
	if !(opts.FrameRate > 0) {
		opts.FrameRate = 30
	}
	return &Server{
		runner: r,
		bounds: r.Sim().Bounds(),
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local viewer; any page may connect
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving the websocket endpoint and a
// JSON status document at the root.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.wsHandler)
	mux.HandleFunc("/", s.statusHandler)
	return mux
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Interaction returns the current pointer interaction.
func (s *Server) Interaction() components.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer
}

// Step simulates one frame and broadcasts it.
func (s *Server) Step() error {
	if _, err := s.runner.Frame(1/s.opts.FrameRate, s.Interaction()); err != nil {
		return err
	}

	sm := s.runner.Sim()
	n := sm.Len()
	frame := EncodeFrame(make([]byte, 0, headerSize+n*pointSize),
		sm.Tick(), s.bounds, sm.Positions(), sm.Velocities(), s.opts.MaxSpeed)
	s.lastTick.Store(sm.Tick())

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		// Slow clients skip frames instead of stalling the simulation
		select {
		case c.send <- frame:
		default:
		}
	}
	return nil
}

// Run listens on addr and steps at the configured frame rate until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	slog.Info("streaming", "addr", addr, "path", s.opts.Path, "frame_rate", s.opts.FrameRate)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.opts.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errc:
			return fmt.Errorf("listen: %w", err)
		case <-ticker.C:
			if err := s.Step(); err != nil {
				s.closeClients()
				_ = srv.Close()
				return err
			}
		}
	}
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		var he websocket.HandshakeError
		if !errors.As(err, &he) {
			slog.Error("websocket upgrade failed", "error", err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	slog.Info("client connected", "remote", r.RemoteAddr)

	go s.writePump(c)
	s.readPump(c)
}

// readPump applies pointer messages until the connection fails.
func (s *Server) readPump(c *client) {
	defer s.unregister(c)
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("client read failed", "error", err)
			}
			return
		}

		in, err := DecodePointer(msg, s.bounds)
		if err != nil {
			slog.Debug("ignoring pointer message", "error", err)
			continue
		}
		s.mu.Lock()
		s.pointer = in
		s.pointerOwner = c
		s.mu.Unlock()
	}
}

// writePump sends queued frames. A closed queue ends the connection.
func (s *Server) writePump(c *client) {
	defer c.conn.Close()

	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// unregister drops a client and releases its pointer.
func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
	if s.pointerOwner == c {
		s.pointer = components.Interaction{}
		s.pointerOwner = nil
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		s.unregister(c)
	}
}

type status struct {
	Particles int    `json:"particles"`
	Tick      uint64 `json:"tick"`
	Clients   int    `json:"clients"`
	Path      string `json:"path"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status{
		Particles: s.runner.Sim().Len(),
		Tick:      s.lastTick.Load(),
		Clients:   s.ClientCount(),
		Path:      s.opts.Path,
	})
}
