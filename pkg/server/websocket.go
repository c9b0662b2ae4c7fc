package server

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/mini/pkg/protocol"
)

// readLoop reads frames until the connection fails or is closed.
func (s *Session) readLoop() {
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		s.UpdateLastActive()
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(protocol.NewError(protocol.ErrInvalidFrame, err.Error()))
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)
		case protocol.FrameControl:
			s.handleControlFrame(frame.Payload)
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// handleEventFrame decodes an event and dispatches it on the loop.
func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.sendError(protocol.NewError(protocol.ErrInvalidFrame, err.Error()))
		return
	}
	s.eventCount.Add(1)
	s.logger.Debug("event", "seq", ev.Seq, "node", ev.Node, "name", ev.Name)

	s.loop.Submit(func() {
		if err := s.remote.Dispatch(ev); err != nil {
			s.logger.Warn("event dropped", "event", ev, "error", err)
			if perr, ok := err.(*protocol.Error); ok {
				s.sendError(perr)
			}
		}
	})
}

// handleControlFrame handles ping, pong and close.
func (s *Session) handleControlFrame(payload []byte) {
	ct, data, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return
	}

	switch ct {
	case protocol.ControlPing:
		if pp, ok := data.(*protocol.PingPong); ok {
			s.sendControl(protocol.NewPong(pp.Timestamp))
		}
	case protocol.ControlPong:
		s.logger.Debug("received pong")
	case protocol.ControlClose:
		if cm, ok := data.(*protocol.CloseMessage); ok {
			s.logger.Info("client closing", "reason", cm.Reason, "message", cm.Message)
		}
		s.Close()
	}
}

// heartbeat pings the client until ctx is done or a write fails.
func (s *Session) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendControl(protocol.NewPing(uint64(time.Now().UnixMilli()))); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) sendControl(payload []byte) error {
	return s.writeFrame(protocol.NewFrame(protocol.FrameControl, payload))
}

func (s *Session) sendError(e *protocol.Error) {
	if err := s.writeFrame(protocol.NewFrame(protocol.FrameError, protocol.EncodeError(e))); err != nil && err != ErrSessionClosed {
		s.logger.Error("error send failed", "error", err)
	}
}

// SendClose tells the client why the session is ending, then closes it.
func (s *Session) SendClose(reason protocol.CloseReason, message string) {
	_ = s.sendControl(protocol.NewClose(reason, message))
	s.Close()
}

func (s *Session) writeFrame(f *protocol.Frame) error {
	if len(f.Payload) > protocol.MaxPayloadSize {
		return protocol.ErrFrameTooLarge
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	data := f.Encode()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return &SessionError{SessionID: s.ID, Op: "write", Err: err}
	}
	s.bytesSent.Add(uint64(len(data)))
	return nil
}
