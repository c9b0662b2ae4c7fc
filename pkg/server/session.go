package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
	"github.com/vango-dev/mini/pkg/protocol"
)

// Session is one connected client: an engine rendering into a RemoteHost,
// driven by the session's idle loop.
type Session struct {
	// Identity
	ID        string
	CreatedAt time.Time

	conn   *websocket.Conn
	config *SessionConfig
	logger *slog.Logger

	// Owned by the loop goroutine.
	remote *RemoteHost
	engine *fiber.Engine
	seq    uint64

	loop *idle.Loop

	// Serializes writes to conn.
	writeMu sync.Mutex

	closed atomic.Bool
	done   chan struct{}

	lastActive atomic.Int64

	// Stats
	eventCount    atomic.Uint64
	batchCount    atomic.Uint64
	mutationCount atomic.Uint64
	bytesSent     atomic.Uint64
	bytesRecv     atomic.Uint64
}

// sessionOptions are the per-session additions the server makes.
type sessionOptions struct {
	wrapHost  func(host.Host) host.Host
	observers func(sessionID string) []fiber.Observer
}

func newSession(conn *websocket.Conn, config *SessionConfig, logger *slog.Logger, so sessionOptions) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		logger:    logger.With("session_id", id),
		remote:    NewRemoteHost(),
		done:      make(chan struct{}),
	}
	s.lastActive.Store(s.CreatedAt.UnixNano())

	loopCfg := config.Loop
	loopCfg.Logger = s.logger
	s.loop = idle.NewLoop(loopCfg)

	var h host.Host = s.remote
	if so.wrapHost != nil {
		h = so.wrapHost(h)
	}
	opts := []fiber.Option{fiber.WithLogger(s.logger), fiber.WithObserver(s)}
	if so.observers != nil {
		for _, o := range so.observers(id) {
			opts = append(opts, fiber.WithObserver(o))
		}
	}
	opts = append(opts, config.EngineOptions...)
	s.engine = fiber.New(h, opts...)
	s.engine.Start(s.loop)
	return s
}

// Mount schedules app to be rendered into the client's container.
func (s *Session) Mount(app *element.Element) {
	s.loop.Submit(func() {
		if err := s.engine.Render(s.remote.Container(), app); err != nil {
			s.logger.Error("mount failed", "error", err)
		}
	})
}

// Run serves the session until the connection closes or ctx is cancelled.
// On return the mounted tree has been unmounted, so every effect cleanup
// has run.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.loop.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		s.readLoop()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		s.heartbeat(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Close()
		return nil
	})

	err := g.Wait()
	s.unmount()
	s.logger.Info("session ended",
		"events", s.eventCount.Load(),
		"batches", s.batchCount.Load(),
		"mutations", s.mutationCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_recv", s.bytesRecv.Load())
	return err
}

// unmount tears the tree down once the loop has stopped.
func (s *Session) unmount() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unmount panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	s.engine.Abort()
	if s.engine.Root() == nil {
		return
	}
	if err := s.engine.Render(s.remote.Container(), nil); err == nil {
		s.engine.Flush()
	}
}

// PassStarted implements fiber.Observer.
func (s *Session) PassStarted(fiber.PassKind) {}

// PassAbandoned implements fiber.Observer.
func (s *Session) PassAbandoned(fiber.PassKind) {}

// Committed implements fiber.Observer. It sends the commit's mutations.
func (s *Session) Committed(fiber.CommitStats) {
	s.flush()
}

// flush sends the pending mutations, split across frames as needed.
func (s *Session) flush() {
	muts := s.remote.Flush()
	if len(muts) == 0 {
		return
	}
	chunks := s.encodeBatches(muts)
	for i, payload := range chunks {
		frame := protocol.NewFrame(protocol.FrameMutations, payload)
		if i == len(chunks)-1 {
			frame.Flags = protocol.FlagFinal
		}
		if err := s.writeFrame(frame); err != nil {
			if err != ErrSessionClosed {
				s.logger.Error("mutation send failed", "error", err)
			}
			return
		}
	}
	s.batchCount.Add(1)
	s.mutationCount.Add(uint64(len(muts)))
}

// encodeBatches encodes muts as one payload per frame, halving batches
// that do not fit.
func (s *Session) encodeBatches(muts []protocol.Mutation) [][]byte {
	s.seq++
	payload := protocol.EncodeMutations(s.seq, muts)
	if len(payload) <= protocol.MaxPayloadSize || len(muts) == 1 {
		return [][]byte{payload}
	}
	s.seq--
	mid := len(muts) / 2
	return append(s.encodeBatches(muts[:mid]), s.encodeBatches(muts[mid:])...)
}

// Submit runs fn on the session loop. It returns false if the loop's
// queue is full.
func (s *Session) Submit(fn func()) bool {
	return s.loop.Submit(fn)
}

// Call runs fn on the session loop and waits for it.
func (s *Session) Call(ctx context.Context, fn func()) error {
	return s.loop.Call(ctx, fn)
}

// Close closes the connection. Run returns once the session loops stop.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	s.writeMu.Lock()
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()
	_ = s.conn.Close()
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Engine returns the session's engine. It must only be used on the
// session loop, e.g. inside Call.
func (s *Session) Engine() *fiber.Engine {
	return s.engine
}

// Remote returns the session's remote host. Like Engine, it belongs to the
// session loop.
func (s *Session) Remote() *RemoteHost {
	return s.remote
}

// LastActive returns the time the client last sent a message.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// UpdateLastActive records client activity.
func (s *Session) UpdateLastActive() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Stats returns session statistics.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		LastActive:    s.LastActive(),
		EventCount:    s.eventCount.Load(),
		BatchCount:    s.batchCount.Load(),
		MutationCount: s.mutationCount.Load(),
		BytesSent:     s.bytesSent.Load(),
		BytesReceived: s.bytesRecv.Load(),
	}
}

// SessionStats contains session statistics.
type SessionStats struct {
	ID            string
	CreatedAt     time.Time
	LastActive    time.Time
	EventCount    uint64
	BatchCount    uint64
	MutationCount uint64
	BytesSent     uint64
	BytesReceived uint64
}
