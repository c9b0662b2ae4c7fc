package protocol

import "fmt"

// ErrorCode identifies protocol-level failures.
type ErrorCode string

const (
	ErrInvalidFrame ErrorCode = "E060" // payload could not be decoded
	ErrUnknownOp    ErrorCode = "E061" // unknown mutation op on the wire
	ErrUnknownNode  ErrorCode = "E062" // event for a node the server does not know
)

// Error is a protocol error. It is also the payload of FrameError.
type Error struct {
	Code    ErrorCode
	Message string
	Fatal   bool // the session will be closed after the error is sent
}

// NewError creates a non-fatal protocol error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("protocol: %s: %s", e.Code, e.Message)
}

// Is matches errors with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// EncodeError encodes an error payload.
func EncodeError(e *Error) []byte {
	enc := NewEncoder()
	enc.WriteString(string(e.Code))
	enc.WriteString(e.Message)
	if e.Fatal {
		enc.PutByte(1)
	} else {
		enc.PutByte(0)
	}
	return enc.Bytes()
}

// DecodeError decodes an error payload.
func DecodeError(data []byte) (*Error, error) {
	d := NewDecoder(data)
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	return &Error{Code: ErrorCode(code), Message: msg, Fatal: fatal != 0}, nil
}
