package protocol

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestEncoderDecoder(t *testing.T) {
	e := NewEncoder()
	e.PutByte(0x42)
	e.WriteUvarint(12345)
	e.WriteSvarint(-9876)
	e.WriteString("hello world")
	e.WriteUint64(0x123456789ABCDEF0)
	e.WriteFloat64(2.718281828459045)

	d := NewDecoder(e.Bytes())

	if b, err := d.ReadByte(); err != nil || b != 0x42 {
		t.Errorf("ReadByte() = %x, %v; want 0x42, nil", b, err)
	}
	if uv, err := d.ReadUvarint(); err != nil || uv != 12345 {
		t.Errorf("ReadUvarint() = %d, %v; want 12345, nil", uv, err)
	}
	if sv, err := d.ReadSvarint(); err != nil || sv != -9876 {
		t.Errorf("ReadSvarint() = %d, %v; want -9876, nil", sv, err)
	}
	if s, err := d.ReadString(); err != nil || s != "hello world" {
		t.Errorf("ReadString() = %q, %v; want hello world, nil", s, err)
	}
	if u, err := d.ReadUint64(); err != nil || u != 0x123456789ABCDEF0 {
		t.Errorf("ReadUint64() = %x, %v", u, err)
	}
	if f, err := d.ReadFloat64(); err != nil || f != 2.718281828459045 {
		t.Errorf("ReadFloat64() = %v, %v", f, err)
	}
	if !d.EOF() {
		t.Errorf("Remaining() = %d; want 0", d.Remaining())
	}
}

func TestSvarintBoundaries(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, math.MaxInt64, math.MinInt64} {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("svarint(%d) = %d, %v", v, got, err)
		}
	}
}

func TestVarintOverflow(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	if _, err := NewDecoder(buf).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("ReadUvarint() error = %v; want ErrVarintOverflow", err)
	}
}

func TestDecoderTruncated(t *testing.T) {
	e := NewEncoder()
	e.WriteString("truncated")
	buf := e.Bytes()[:4]
	if _, err := NewDecoder(buf).ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadString() error = %v; want ErrUnexpectedEOF", err)
	}
	if _, err := NewDecoder(nil).ReadByte(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadByte() error = %v; want ErrUnexpectedEOF", err)
	}
}

func TestCollectionCountLimits(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxCollectionCount + 1)
	if _, err := NewDecoder(e.Bytes()).ReadCollectionCount(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("error = %v; want ErrCollectionTooLarge", err)
	}

	// A count larger than the remaining bytes cannot be satisfied.
	e.Reset()
	e.WriteUvarint(50)
	e.PutByte(0)
	if _, err := NewDecoder(e.Bytes()).ReadCollectionCount(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v; want ErrUnexpectedEOF", err)
	}
}

type label struct{ s string }

func (l label) String() string { return "label:" + l.s }

func TestValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"true", true, true},
		{"false", false, false},
		{"int", 42, int64(42)},
		{"negative", int8(-3), int64(-3)},
		{"uint", uint16(7), int64(7)},
		{"huge uint", uint64(math.MaxUint64), "18446744073709551615"},
		{"float", 1.5, 1.5},
		{"float32", float32(0.25), 0.25},
		{"string", "hi", "hi"},
		{"stringer", label{"x"}, "label:x"},
		{"slice", []int{1, 2}, "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			e.WriteValue(tt.in)
			d := NewDecoder(e.Bytes())
			got, err := d.ReadValue()
			if err != nil {
				t.Fatalf("ReadValue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadValue() = %#v; want %#v", got, tt.want)
			}
			if !d.EOF() {
				t.Errorf("trailing bytes: %d", d.Remaining())
			}
		})
	}
}

func TestInvalidValueTag(t *testing.T) {
	if _, err := NewDecoder([]byte{0x7F}).ReadValue(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("error = %v; want ErrInvalidValue", err)
	}
}
