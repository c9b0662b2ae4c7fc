package protocol

import "fmt"

// Event is a DOM event sent by the client for a node with a listener.
type Event struct {
	Seq   uint64
	Node  uint32
	Name  string // event type without the "on" prefix, e.g. "click"
	Value any    // input value for input/change events, nil otherwise
}

// String returns a compact description of the event for logs.
func (e *Event) String() string {
	return fmt.Sprintf("Event{seq=%d node=#%d %s}", e.Seq, e.Node, e.Name)
}

// EncodeEvent encodes an event payload.
func EncodeEvent(e *Event) []byte {
	enc := NewEncoder()
	enc.WriteUvarint(e.Seq)
	enc.WriteUvarint(uint64(e.Node))
	enc.WriteString(e.Name)
	enc.WriteValue(e.Value)
	return enc.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	node, err := readNodeID(d)
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, NewError(ErrInvalidFrame, "empty event name")
	}
	value, err := d.ReadValue()
	if err != nil {
		return nil, err
	}
	return &Event{Seq: seq, Node: node, Name: name, Value: value}, nil
}
