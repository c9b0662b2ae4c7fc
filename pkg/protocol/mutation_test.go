package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/mini/pkg/host"
)

func TestMutationsRoundTrip(t *testing.T) {
	muts := []Mutation{
		{Op: host.OpCreate, Node: 2, Type: "div"},
		{Op: host.OpSetProp, Node: 2, Name: "class", Value: "box"},
		{Op: host.OpSetProp, Node: 2, Name: "tabIndex", Value: int64(3)},
		{Op: host.OpSetProp, Node: 2, Name: "hidden", Value: false},
		{Op: host.OpRemoveProp, Node: 2, Name: "title"},
		{Op: host.OpListen, Node: 2, Name: "click"},
		{Op: host.OpUnlisten, Node: 2, Name: "input"},
		{Op: host.OpCreate, Node: 3, Type: "#text"},
		{Op: host.OpSetProp, Node: 3, Name: "nodeValue", Value: "hi"},
		{Op: host.OpAppend, Node: 3, Parent: 2},
		{Op: host.OpAppend, Node: 2, Parent: ContainerID},
		{Op: host.OpRemove, Node: 7, Parent: 2},
	}

	b, err := DecodeMutations(EncodeMutations(42, muts))
	if err != nil {
		t.Fatalf("DecodeMutations() error = %v", err)
	}
	want := &Batch{Seq: 42, Mutations: muts}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestMutationsEmptyBatch(t *testing.T) {
	b, err := DecodeMutations(EncodeMutations(1, nil))
	if err != nil {
		t.Fatal(err)
	}
	if b.Seq != 1 || len(b.Mutations) != 0 {
		t.Errorf("batch = %+v", b)
	}
}

func TestDecodeMutationsUnknownOp(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(1)
	e.PutByte(0x66)
	e.WriteUvarint(2)

	_, err := DecodeMutations(e.Bytes())
	if !errors.Is(err, NewError(ErrUnknownOp, "")) {
		t.Errorf("error = %v; want %s", err, ErrUnknownOp)
	}
}

func TestDecodeMutationsZeroNode(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(1)
	e.PutByte(byte(host.OpCreate))
	e.WriteUvarint(0)
	e.WriteString("div")

	_, err := DecodeMutations(e.Bytes())
	var perr *Error
	if !errors.As(err, &perr) || perr.Code != ErrInvalidFrame {
		t.Errorf("error = %v; want %s", err, ErrInvalidFrame)
	}
}

func TestMutationString(t *testing.T) {
	tests := []struct {
		m    Mutation
		want string
	}{
		{Mutation{Op: host.OpCreate, Node: 2, Type: "p"}, "Create(#2 p)"},
		{Mutation{Op: host.OpSetProp, Node: 2, Name: "id", Value: "x"}, "SetProp(#2 id=x)"},
		{Mutation{Op: host.OpAppend, Node: 2, Parent: 1}, "Append(#2 -> #1)"},
		{Mutation{Op: host.OpRemove, Node: 2, Parent: 1}, "Remove(#2 from #1)"},
		{Mutation{Op: host.OpListen, Node: 2, Name: "click"}, "Listen(#2 click)"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}
