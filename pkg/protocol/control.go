package protocol

import (
	"errors"
	"io"
)

// ControlType identifies the type of control message.
type ControlType uint8

const (
	ControlPing  ControlType = 0x01
	ControlPong  ControlType = 0x02
	ControlClose ControlType = 0x11
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// CloseReason indicates why a session is being closed.
type CloseReason uint8

const (
	CloseNormal         CloseReason = 0x00
	CloseGoingAway      CloseReason = 0x01
	CloseSessionExpired CloseReason = 0x02
	CloseServerShutdown CloseReason = 0x03
	CloseError          CloseReason = 0x04
)

// String returns the string representation of the close reason.
func (cr CloseReason) String() string {
	switch cr {
	case CloseNormal:
		return "Normal"
	case CloseGoingAway:
		return "GoingAway"
	case CloseSessionExpired:
		return "SessionExpired"
	case CloseServerShutdown:
		return "ServerShutdown"
	case CloseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// PingPong is the payload of ping and pong messages.
type PingPong struct {
	Timestamp uint64 // Unix milliseconds
}

// CloseMessage is the payload of a close message.
type CloseMessage struct {
	Reason  CloseReason
	Message string
}

// ErrUnknownControl is returned for unrecognised control types.
var ErrUnknownControl = errors.New("protocol: unknown control type")

// EncodeControl encodes a control message. payload must be *PingPong for
// ping and pong, *CloseMessage for close.
func EncodeControl(ct ControlType, payload any) []byte {
	e := NewEncoder()
	e.PutByte(byte(ct))
	switch ct {
	case ControlPing, ControlPong:
		if pp, ok := payload.(*PingPong); ok {
			e.WriteUint64(pp.Timestamp)
		} else {
			e.WriteUint64(0)
		}
	case ControlClose:
		if cm, ok := payload.(*CloseMessage); ok {
			e.PutByte(byte(cm.Reason))
			e.WriteString(cm.Message)
		} else {
			e.PutByte(byte(CloseNormal))
			e.WriteString("")
		}
	}
	return e.Bytes()
}

// DecodeControl decodes a control message, returning its type and payload.
func DecodeControl(data []byte) (ControlType, any, error) {
	d := NewDecoder(data)
	b, err := d.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	ct := ControlType(b)

	switch ct {
	case ControlPing, ControlPong:
		ts, err := d.ReadUint64()
		if err != nil {
			return ct, nil, err
		}
		return ct, &PingPong{Timestamp: ts}, nil
	case ControlClose:
		reason, err := d.ReadByte()
		if err != nil {
			return ct, nil, err
		}
		msg, err := d.ReadString()
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return ct, nil, err
		}
		return ct, &CloseMessage{Reason: CloseReason(reason), Message: msg}, nil
	default:
		return ct, nil, ErrUnknownControl
	}
}

// NewPing creates a ping control payload.
func NewPing(timestamp uint64) []byte {
	return EncodeControl(ControlPing, &PingPong{Timestamp: timestamp})
}

// NewPong creates a pong control payload.
func NewPong(timestamp uint64) []byte {
	return EncodeControl(ControlPong, &PingPong{Timestamp: timestamp})
}

// NewClose creates a close control payload.
func NewClose(reason CloseReason, message string) []byte {
	return EncodeControl(ControlClose, &CloseMessage{Reason: reason, Message: message})
}
