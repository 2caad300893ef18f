// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tdigest

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// writer encodes into a caller-owned, fixed-capacity byte slice. It never
// grows the slice: a write past capacity records a sticky error and all
// subsequent writes are no-ops. Multi-byte fields are big-endian.
type writer struct {
	buf []byte
	off int
	err error
}

func newWriter(buf []byte) *writer { return &writer{buf: buf} }

func (w *writer) ensure(n int) bool {
	if w.err != nil {
		return false
	}
	if w.off+n > len(w.buf) {
		w.err = errors.Newf(
			"tdigest: buffer overflow: need %d bytes at offset %d, have %d remaining",
			n, w.off, len(w.buf)-w.off)
		return false
	}
	return true
}

func (w *writer) putByte(b byte) {
	if !w.ensure(1) {
		return
	}
	w.buf[w.off] = b
	w.off++
}

func (w *writer) putInt32(v int32) {
	if !w.ensure(4) {
		return
	}
	binary.BigEndian.PutUint32(w.buf[w.off:], uint32(v))
	w.off += 4
}

func (w *writer) putInt64(v int64) {
	if !w.ensure(8) {
		return
	}
	binary.BigEndian.PutUint64(w.buf[w.off:], uint64(v))
	w.off += 8
}

func (w *writer) putFloat64(v float64) {
	if !w.ensure(8) {
		return
	}
	binary.BigEndian.PutUint64(w.buf[w.off:], math.Float64bits(v))
	w.off += 8
}

func (w *writer) putFloat32(v float32) {
	if !w.ensure(4) {
		return
	}
	binary.BigEndian.PutUint32(w.buf[w.off:], math.Float32bits(v))
	w.off += 4
}

// putVarint32 encodes v with the digest's variable-length integer codec: the
// value is treated as an unsigned 32-bit pattern emitted 7 bits at a time,
// low bits first, with 0x80 marking continuation. Small non-negative values
// take one byte; negative values take five. The encoding is a bijection over
// the full int32 range.
func (w *writer) putVarint32(v int32) {
	u := uint32(v)
	for u > 0x7f {
		w.putByte(byte(0x80 | u&0x7f))
		u >>= 7
	}
	w.putByte(byte(u))
}

// varint32Len returns the encoded length of v in bytes.
func varint32Len(v int32) int {
	u := uint32(v)
	n := 1
	for u > 0x7f {
		u >>= 7
		n++
	}
	return n
}

func (w *writer) len() int     { return w.off }
func (w *writer) error() error { return w.err }

// reader decodes from a byte slice, tracking the read position. Like writer
// it records a sticky error: once a read runs past the input or hits a
// malformed field, every subsequent read is a no-op returning zero.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.buf) {
		r.err = errors.Newf(
			"tdigest: truncated input: need %d bytes at offset %d, have %d remaining",
			n, r.off, len(r.buf)-r.off)
		return false
	}
	return true
}

func (r *reader) byte() byte {
	if !r.ensure(1) {
		return 0
	}
	b := r.buf[r.off]
	r.off++
	return b
}

func (r *reader) int32() int32 {
	if !r.ensure(4) {
		return 0
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v
}

func (r *reader) int64() int64 {
	if !r.ensure(8) {
		return 0
	}
	v := int64(binary.BigEndian.Uint64(r.buf[r.off:]))
	r.off += 8
	return v
}

func (r *reader) float64() float64 {
	if !r.ensure(8) {
		return 0
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(r.buf[r.off:]))
	r.off += 8
	return v
}

func (r *reader) float32() float32 {
	if !r.ensure(4) {
		return 0
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v
}

// varint32 decodes a value written by putVarint32.
func (r *reader) varint32() int32 {
	var u uint32
	var shift uint
	for {
		b := r.byte()
		if r.err != nil {
			return 0
		}
		u |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int32(u)
		}
		shift += 7
		if shift > 28 {
			r.err = errors.Newf("tdigest: varint overflows 32 bits at offset %d", r.off)
			return 0
		}
	}
}

func (r *reader) offset() int    { return r.off }
func (r *reader) remaining() int { return len(r.buf) - r.off }
func (r *reader) error() error   { return r.err }
