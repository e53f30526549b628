package encoding

import (
	"encoding/binary"
	"math"
)

// NOTE(damnever): every multi-byte value on the wire is big-endian (network byte order),
// fields are fixed width and there is no padding between them. The cursors below never
// read or write past the end of the underlying slice, callers check Remaining/ok instead.

var order = binary.BigEndian

// Writer writes fixed-width values into a caller owned buffer.
type Writer struct {
	buf []byte
	off int
}

func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int {
	return w.off
}

func (w *Writer) Remaining() int {
	return len(w.buf) - w.off
}

// Written returns the written part of the buffer.
func (w *Writer) Written() []byte {
	return w.buf[:w.off]
}

func (w *Writer) PutBytes(b []byte) bool {
	if w.Remaining() < len(b) {
		return false
	}
	w.off += copy(w.buf[w.off:], b)
	return true
}

func (w *Writer) PutUint64(v uint64) bool {
	if w.Remaining() < 8 {
		return false
	}
	order.PutUint64(w.buf[w.off:], v)
	w.off += 8
	return true
}

func (w *Writer) PutUint32(v uint32) bool {
	if w.Remaining() < 4 {
		return false
	}
	order.PutUint32(w.buf[w.off:], v)
	w.off += 4
	return true
}

// PutFloat32s writes every value as IEEE 754 bits, it writes nothing unless all fit.
func (w *Writer) PutFloat32s(vs []float32) bool {
	if w.Remaining()/4 < len(vs) {
		return false
	}
	for _, v := range vs {
		order.PutUint32(w.buf[w.off:], math.Float32bits(v))
		w.off += 4
	}
	return true
}

// Reader reads fixed-width values from a buffer.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Consumed returns the consumed part of the buffer.
func (r *Reader) Consumed() []byte {
	return r.buf[:r.off]
}

func (r *Reader) Skip(n int) bool {
	if n < 0 || r.Remaining() < n {
		return false
	}
	r.off += n
	return true
}

func (r *Reader) Uint64() (uint64, bool) {
	if r.Remaining() < 8 {
		return 0, false
	}
	v := order.Uint64(r.buf[r.off:])
	r.off += 8
	return v, true
}

func (r *Reader) Uint32() (uint32, bool) {
	if r.Remaining() < 4 {
		return 0, false
	}
	v := order.Uint32(r.buf[r.off:])
	r.off += 4
	return v, true
}

// Float32s reads n values into a newly allocated slice, nil when n is 0.
// It reads nothing if fewer than 4*n bytes remain.
func (r *Reader) Float32s(n int) ([]float32, bool) {
	if n < 0 || r.Remaining()/4 < n {
		return nil, false
	}
	if n == 0 {
		return nil, true
	}
	vs := make([]float32, n)
	for i := range vs {
		vs[i] = math.Float32frombits(order.Uint32(r.buf[r.off:]))
		r.off += 4
	}
	return vs, true
}
