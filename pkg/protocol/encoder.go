package protocol

import (
	"fmt"
	"math"
	"reflect"
)

// Value tags.
const (
	valueNull   byte = 0x00
	valueFalse  byte = 0x01
	valueTrue   byte = 0x02
	valueInt    byte = 0x03
	valueFloat  byte = 0x04
	valueString byte = 0x05
)

// Encoder is a binary encoder that appends data to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Reset resets the encoder to empty state, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// PutByte appends a single byte.
func (e *Encoder) PutByte(b byte) {
	e.buf = append(e.buf, b)
}

// WriteUvarint appends an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteSvarint appends a signed varint using ZigZag encoding.
func (e *Encoder) WriteSvarint(v int64) {
	e.WriteUvarint(uint64((v << 1) ^ (v >> 63)))
}

// WriteString appends a length-prefixed UTF-8 string.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteUint64 appends a uint64 in big-endian byte order.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = append(e.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteFloat64 appends a float64 in IEEE 754 format (big-endian).
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteValue appends a tagged property or event value. nil, bools,
// integers, floats and strings keep their type; anything else is sent as
// its fmt.Sprint string.
func (e *Encoder) WriteValue(v any) {
	switch x := v.(type) {
	case nil:
		e.PutByte(valueNull)
	case bool:
		if x {
			e.PutByte(valueTrue)
		} else {
			e.PutByte(valueFalse)
		}
	case string:
		e.PutByte(valueString)
		e.WriteString(x)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			e.PutByte(valueInt)
			e.WriteSvarint(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if u := rv.Uint(); u <= math.MaxInt64 {
				e.PutByte(valueInt)
				e.WriteSvarint(int64(u))
			} else {
				e.PutByte(valueString)
				e.WriteString(fmt.Sprint(u))
			}
		case reflect.Float32, reflect.Float64:
			e.PutByte(valueFloat)
			e.WriteFloat64(rv.Float())
		default:
			e.PutByte(valueString)
			e.WriteString(fmt.Sprint(v))
		}
	}
}
