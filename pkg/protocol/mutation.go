package protocol

import (
	"fmt"

	"github.com/vango-dev/mini/pkg/host"
)

// ContainerID is the node ID the client mounts into.
const ContainerID uint32 = 1

// Mutation is one host mutation as it travels on the wire. Nodes are
// referenced by server-allocated IDs.
type Mutation struct {
	Op     host.MutationOp
	Node   uint32
	Parent uint32 // OpAppend, OpRemove
	Type   string // OpCreate
	Name   string // OpSetProp, OpRemoveProp, OpListen, OpUnlisten
	Value  any    // OpSetProp
}

// String returns a compact description of the mutation for logs.
func (m Mutation) String() string {
	switch m.Op {
	case host.OpCreate:
		return fmt.Sprintf("Create(#%d %s)", m.Node, m.Type)
	case host.OpSetProp:
		return fmt.Sprintf("SetProp(#%d %s=%v)", m.Node, m.Name, m.Value)
	case host.OpAppend:
		return fmt.Sprintf("Append(#%d -> #%d)", m.Node, m.Parent)
	case host.OpRemove:
		return fmt.Sprintf("Remove(#%d from #%d)", m.Node, m.Parent)
	default:
		return fmt.Sprintf("%s(#%d %s)", m.Op, m.Node, m.Name)
	}
}

// Batch is the set of mutations produced by one commit.
type Batch struct {
	Seq       uint64
	Mutations []Mutation
}

// EncodeMutations encodes a mutation batch payload.
func EncodeMutations(seq uint64, muts []Mutation) []byte {
	e := NewEncoder()
	EncodeMutationsTo(e, seq, muts)
	return e.Bytes()
}

// EncodeMutationsTo encodes a mutation batch using the provided encoder.
func EncodeMutationsTo(e *Encoder, seq uint64, muts []Mutation) {
	e.WriteUvarint(seq)
	e.WriteUvarint(uint64(len(muts)))
	for _, m := range muts {
		e.PutByte(byte(m.Op))
		e.WriteUvarint(uint64(m.Node))
		switch m.Op {
		case host.OpCreate:
			e.WriteString(m.Type)
		case host.OpSetProp:
			e.WriteString(m.Name)
			e.WriteValue(m.Value)
		case host.OpRemoveProp, host.OpListen, host.OpUnlisten:
			e.WriteString(m.Name)
		case host.OpAppend, host.OpRemove:
			e.WriteUvarint(uint64(m.Parent))
		}
	}
}

// DecodeMutations decodes a mutation batch payload.
func DecodeMutations(data []byte) (*Batch, error) {
	return DecodeMutationsFrom(NewDecoder(data))
}

// DecodeMutationsFrom decodes a mutation batch from a decoder.
func DecodeMutationsFrom(d *Decoder) (*Batch, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	b := &Batch{Seq: seq, Mutations: make([]Mutation, 0, count)}
	for i := 0; i < count; i++ {
		m, err := decodeMutation(d)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		b.Mutations = append(b.Mutations, m)
	}
	return b, nil
}

func decodeMutation(d *Decoder) (Mutation, error) {
	var m Mutation
	op, err := d.ReadByte()
	if err != nil {
		return m, err
	}
	m.Op = host.MutationOp(op)

	node, err := readNodeID(d)
	if err != nil {
		return m, err
	}
	m.Node = node

	switch m.Op {
	case host.OpCreate:
		m.Type, err = d.ReadString()
	case host.OpSetProp:
		if m.Name, err = d.ReadString(); err == nil {
			m.Value, err = d.ReadValue()
		}
	case host.OpRemoveProp, host.OpListen, host.OpUnlisten:
		m.Name, err = d.ReadString()
	case host.OpAppend, host.OpRemove:
		m.Parent, err = readNodeID(d)
	default:
		return m, NewError(ErrUnknownOp, fmt.Sprintf("op 0x%02x", op))
	}
	return m, err
}

func readNodeID(d *Decoder) (uint32, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v == 0 || v > 0xFFFFFFFF {
		return 0, NewError(ErrInvalidFrame, fmt.Sprintf("node id %d", v))
	}
	return uint32(v), nil
}
