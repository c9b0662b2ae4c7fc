package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
	"github.com/vango-dev/mini/pkg/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *ServerConfig {
	cfg := DefaultServerConfig()
	cfg.Logger = quietLogger()
	cfg.ShutdownTimeout = 5 * time.Second
	cfg.SessionConfig.Loop = idle.LoopConfig{
		FrameInterval: time.Millisecond,
		Budget:        5 * time.Millisecond,
	}
	return cfg
}

// counterApp renders a button showing how often it was clicked. Its effect
// cleanup reports on cleaned when the session unmounts.
func counterApp(cleaned chan<- struct{}) func() *element.Element {
	counter := func(element.Props) *element.Element {
		n, set := fiber.UseState(0)
		fiber.UseEffect(func() fiber.Cleanup {
			return func() {
				select {
				case cleaned <- struct{}{}:
				default:
				}
			}
		})
		return element.H("button", element.Props{
			"onClick": func() { set(func(c int) int { return c + 1 }) },
		}, n)
	}
	return func() *element.Element {
		return element.CreateElement(counter, nil)
	}
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	return &testClient{t: t, conn: conn}
}

func (c *testClient) read() *protocol.Frame {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	f, err := protocol.DecodeFrame(msg)
	require.NoError(c.t, err)
	return f
}

func (c *testClient) readBatch() *protocol.Batch {
	c.t.Helper()
	for {
		f := c.read()
		if f.Type != protocol.FrameMutations {
			continue
		}
		b, err := protocol.DecodeMutations(f.Payload)
		require.NoError(c.t, err)
		return b
	}
}

func (c *testClient) send(ft protocol.FrameType, payload []byte) {
	c.t.Helper()
	data := protocol.NewFrame(ft, payload).Encode()
	require.NoError(c.t, c.conn.WriteMessage(websocket.BinaryMessage, data))
}

func findCreate(b *protocol.Batch, typ string) uint32 {
	for _, m := range b.Mutations {
		if m.Op == host.OpCreate && m.Type == typ {
			return m.Node
		}
	}
	return 0
}

func TestSessionEndToEnd(t *testing.T) {
	cleaned := make(chan struct{}, 1)
	srv := New(counterApp(cleaned), testConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	c := dial(t, ts)
	defer c.conn.Close()

	mount := c.readBatch()
	btn := findCreate(mount, "button")
	text := findCreate(mount, host.TextNode)
	require.NotZero(t, btn, "mount batch: %v", mount.Mutations)
	assert.Contains(t, mount.Mutations, protocol.Mutation{Op: host.OpListen, Node: btn, Name: "click"})
	assert.Contains(t, mount.Mutations, protocol.Mutation{Op: host.OpSetProp, Node: text, Name: "nodeValue", Value: int64(0)})
	assert.Contains(t, mount.Mutations, protocol.Mutation{Op: host.OpAppend, Node: btn, Parent: protocol.ContainerID})

	c.send(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Seq: 1, Node: btn, Name: "click"}))
	update := c.readBatch()
	assert.Greater(t, update.Seq, mount.Seq)
	assert.Equal(t, []protocol.Mutation{
		{Op: host.OpSetProp, Node: text, Name: "nodeValue", Value: int64(1)},
	}, update.Mutations)

	// Ping is answered with a pong carrying the same timestamp.
	c.send(protocol.FrameControl, protocol.NewPing(77))
	f := c.read()
	require.Equal(t, protocol.FrameControl, f.Type)
	ct, payload, err := protocol.DecodeControl(f.Payload)
	require.NoError(t, err)
	assert.Equal(t, protocol.ControlPong, ct)
	assert.Equal(t, uint64(77), payload.(*protocol.PingPong).Timestamp)

	// Events for unknown nodes are reported back.
	c.send(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Seq: 2, Node: 999, Name: "click"}))
	f = c.read()
	require.Equal(t, protocol.FrameError, f.Type)
	perr, err := protocol.DecodeError(f.Payload)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrUnknownNode, perr.Code)

	require.Equal(t, 1, srv.Sessions().Count())

	// Leaving unmounts the tree.
	c.send(protocol.FrameControl, protocol.NewClose(protocol.CloseGoingAway, "bye"))
	select {
	case <-cleaned:
	case <-time.After(5 * time.Second):
		t.Fatal("effect cleanup did not run after disconnect")
	}
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 0 },
		5*time.Second, 5*time.Millisecond)

	stats := srv.Sessions().Stats()
	assert.Equal(t, uint64(1), stats.TotalCreated)
	assert.Equal(t, uint64(1), stats.TotalClosed)
}

func TestShutdownClosesSessions(t *testing.T) {
	cleaned := make(chan struct{}, 1)
	srv := New(counterApp(cleaned), testConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := dial(t, ts)
	defer c.conn.Close()
	c.readBatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Equal(t, 0, srv.Sessions().Count())

	select {
	case <-cleaned:
	default:
		t.Error("effect cleanup did not run on shutdown")
	}

	// New connections are refused.
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServeUntilCancelled(t *testing.T) {
	srv := New(counterApp(nil), testConfig())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.ErrorIs(t, srv.Serve(context.Background(), ln), ErrServerClosed)
}

func TestHTTPRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.Title = "counter demo"
	srv := New(counterApp(nil), cfg)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	client := ts.Client()

	get := func(path string, header http.Header) (*http.Response, string) {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		require.NoError(t, err)
		for k, v := range header {
			req.Header[k] = v
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	t.Run("page", func(t *testing.T) {
		resp, body := get("/", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "<title>counter demo</title>")
		assert.Contains(t, body, `<script src="/client.js"`)
	})

	t.Run("client", func(t *testing.T) {
		resp, body := get("/client.js", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "javascript")
		assert.Contains(t, body, "FRAME_MUTATIONS")

		etag := resp.Header.Get("ETag")
		require.NotEmpty(t, etag)
		resp, _ = get("/client.js", http.Header{"If-None-Match": {`W/` + etag}})
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("healthz", func(t *testing.T) {
		resp, body := get("/healthz", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok","sessions":0}`, body)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, body := get("/metrics", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "mini_active_sessions")
		assert.Contains(t, body, "go_goroutines")
	})

	t.Run("cross origin upgrade", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestMetricsAfterSession(t *testing.T) {
	srv := New(counterApp(nil), testConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	c := dial(t, ts)
	c.readBatch()
	c.conn.Close()
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 0 },
		5*time.Second, 5*time.Millisecond)

	families, err := srv.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["mini_sessions_total"])
	assert.Equal(t, 0.0, values["mini_active_sessions"])
	// Mount plus unmount.
	assert.GreaterOrEqual(t, values["mini_commits_total"], 2.0)
	assert.Greater(t, values["mini_host_mutations_total"], 0.0)
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.ValidateConfig())

	cfg.SessionConfig.HeartbeatInterval = time.Minute
	cfg.MetricsPath = "metrics"
	err := cfg.ValidateConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heartbeat interval")
	assert.Contains(t, err.Error(), "metrics path")
}
