package stream

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/sim"
)

func newTestServer(t *testing.T, count int) *Server {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	opts, err := sim.OptionsFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	opts.Count = count
	opts.Workers = 1
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sim.New(opts)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	t.Cleanup(s.Close)

	r := sim.NewRunner(s, sim.RunnerOptions{
		Clock:  sim.Clock{FixedDT: 0.002, Substeps: 2},
		Params: cfg.Fluid,
	})
	return NewServer(r, OptionsFromConfig(cfg))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func TestServerBroadcastsFrames(t *testing.T) {
	s := newTestServer(t, 30)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts, "/ws")
	defer conn.Close()
	waitFor(t, "client registration", func() bool { return s.ClientCount() == 1 })

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", mt)
	}

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(f.Points) != 30 {
		t.Errorf("frame has %d points, want 30", len(f.Points))
	}
	if f.Tick != 2 {
		t.Errorf("frame tick = %d, want 2", f.Tick)
	}
}

func TestServerPointerLifecycle(t *testing.T) {
	s := newTestServer(t, 10)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts, "/ws")
	waitFor(t, "client registration", func() bool { return s.ClientCount() == 1 })

	if err := conn.WriteJSON(Pointer{U: 0.5, V: 0.5, Mode: "repel"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "pointer", func() bool { return s.Interaction().Active })

	in := s.Interaction()
	if in.Sign >= 0 {
		t.Errorf("sign = %d, want repel", in.Sign)
	}
	centre := s.bounds.Center()
	if d := in.Position.X - centre.X; d*d > 1e-9 {
		t.Errorf("pointer at %v, want bounds centre %v", in.Position, centre)
	}

	// Garbage is ignored without dropping the client
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Pointer{Mode: "release"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "release", func() bool { return !s.Interaction().Active })
	if s.ClientCount() != 1 {
		t.Fatalf("client dropped after bad message")
	}

	if err := conn.WriteJSON(Pointer{U: 0.1, V: 0.1, Mode: "attract"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "pointer", func() bool { return s.Interaction().Active })

	conn.Close()
	waitFor(t, "unregister", func() bool { return s.ClientCount() == 0 })
	if s.Interaction().Active {
		t.Error("pointer still active after its client left")
	}
}

func TestServerStatus(t *testing.T) {
	s := newTestServer(t, 12)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	if err := s.Step(); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Particles != 12 || st.Tick != 2 || st.Path != "/ws" {
		t.Errorf("unexpected status %+v", st)
	}

	resp2, err := http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("status %d for unknown path, want 404", resp2.StatusCode)
	}
}
