// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tdigest

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Format tags embedded at the start of every snapshot; FromBytes dispatches
// on them.
const (
	verboseEncoding int32 = 1
	smallEncoding   int32 = 2
)

// Snapshot layout, both formats:
//
//	int32   format tag
//	float64 compression
//	int64   total size (sum of all counts)
//	int32   centroid count n
//	means   n * float64 (verbose) or n * float32 deltas from the
//	        previous mean (compact)
//	counts  n * varint32
//
// The compact format trades mean precision (roughly half the bytes) for
// size; counts are never approximated in either format.

// ByteSize returns the exact number of bytes AsBytes will write.
func (d *Digest) ByteSize() int {
	n := 4 + 8 + 8 + 4
	d.store.each(func(_ float64, count int64) bool {
		n += 8 + varint32Len(int32(count))
		return true
	})
	return n
}

// SmallByteSize returns the exact number of bytes AsSmallBytes will write.
func (d *Digest) SmallByteSize() int {
	n := 4 + 8 + 8 + 4
	d.store.each(func(_ float64, count int64) bool {
		n += 4 + varint32Len(int32(count))
		return true
	})
	return n
}

func (d *Digest) checkEncodableCounts() error {
	var bad int64
	d.store.each(func(_ float64, count int64) bool {
		if count > math.MaxInt32 {
			bad = count
			return false
		}
		return true
	})
	if bad != 0 {
		return errors.Newf("tdigest: centroid count %d does not fit in 32 bits", bad)
	}
	return nil
}

// AsBytes writes the verbose snapshot into the caller-owned buffer and
// returns the number of bytes written, equal to ByteSize(). The buffer is
// never grown: if it is too small an error is returned and no partial
// interpretation of the written prefix is supported.
func (d *Digest) AsBytes(buf []byte) (int, error) {
	if err := d.checkEncodableCounts(); err != nil {
		return 0, err
	}
	w := newWriter(buf)
	w.putInt32(verboseEncoding)
	w.putFloat64(d.compression)
	w.putInt64(d.store.total)
	w.putInt32(int32(d.store.count))
	d.store.each(func(mean float64, _ int64) bool {
		w.putFloat64(mean)
		return true
	})
	d.store.each(func(_ float64, count int64) bool {
		w.putVarint32(int32(count))
		return true
	})
	if err := w.error(); err != nil {
		return 0, err
	}
	return w.len(), nil
}

// AsSmallBytes writes the compact snapshot into the caller-owned buffer and
// returns the number of bytes written, equal to SmallByteSize(). Means are
// stored as single-precision deltas from the preceding mean, so a round trip
// reproduces quantiles only to within ~1e-6; counts, size and compression
// round-trip exactly.
func (d *Digest) AsSmallBytes(buf []byte) (int, error) {
	if err := d.checkEncodableCounts(); err != nil {
		return 0, err
	}
	w := newWriter(buf)
	w.putInt32(smallEncoding)
	w.putFloat64(d.compression)
	w.putInt64(d.store.total)
	w.putInt32(int32(d.store.count))
	x := 0.0
	d.store.each(func(mean float64, _ int64) bool {
		w.putFloat32(float32(mean - x))
		x = mean
		return true
	})
	d.store.each(func(_ float64, count int64) bool {
		w.putVarint32(int32(count))
		return true
	})
	if err := w.error(); err != nil {
		return 0, err
	}
	return w.len(), nil
}

// FromBytes reconstructs a digest from a snapshot produced by AsBytes or
// AsSmallBytes, dispatching on the embedded format tag. It returns the
// digest and the number of bytes consumed, which equals the corresponding
// writer's output size. Malformed or truncated input yields an error and no
// digest. Decoded digests use the default page size; the formats carry none.
func FromBytes(buf []byte) (*Digest, int, error) {
	r := newReader(buf)
	tag := r.int32()
	if err := r.error(); err != nil {
		return nil, 0, err
	}
	var small bool
	switch tag {
	case verboseEncoding:
	case smallEncoding:
		small = true
	default:
		return nil, 0, errors.Newf("tdigest: unknown format tag %d", tag)
	}

	compression := r.float64()
	total := r.int64()
	n64 := r.int32()
	if err := r.error(); err != nil {
		return nil, 0, err
	}
	if math.IsNaN(compression) || math.IsInf(compression, 0) || compression <= 0 {
		return nil, 0, errors.Newf(
			"tdigest: snapshot has invalid compression %v", compression)
	}
	if n64 < 0 {
		return nil, 0, errors.Newf("tdigest: snapshot has negative centroid count %d", n64)
	}
	n := int(n64)
	// Every centroid needs a mean plus at least one count byte; reject
	// implausible counts before allocating.
	meanBytes := 8
	if small {
		meanBytes = 4
	}
	if n*(meanBytes+1) > r.remaining() {
		return nil, 0, errors.Newf(
			"tdigest: truncated input: %d centroids need at least %d bytes, have %d",
			n, n*(meanBytes+1), r.remaining())
	}

	means := make([]float64, n)
	if small {
		x := 0.0
		for i := range means {
			x += float64(r.float32())
			means[i] = x
		}
	} else {
		for i := range means {
			means[i] = r.float64()
		}
	}
	counts := make([]int64, n)
	for i := range counts {
		counts[i] = int64(r.varint32())
	}
	if err := r.error(); err != nil {
		return nil, 0, err
	}

	var sum int64
	for i := 0; i < n; i++ {
		if math.IsNaN(means[i]) || math.IsInf(means[i], 0) {
			return nil, 0, errors.Newf(
				"tdigest: snapshot has non-finite mean at centroid %d", i)
		}
		if i > 0 && means[i] < means[i-1] {
			return nil, 0, errors.Newf(
				"tdigest: snapshot means out of order at centroid %d: %v < %v",
				i, means[i], means[i-1])
		}
		if counts[i] < 1 {
			return nil, 0, errors.Newf(
				"tdigest: snapshot has invalid count %d at centroid %d", counts[i], i)
		}
		sum += counts[i]
	}
	if sum != total {
		return nil, 0, errors.Newf(
			"tdigest: snapshot size mismatch: header says %d, centroids sum to %d",
			total, sum)
	}

	d, err := NewWithPageSize(defaultPageSize, compression)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "decoding snapshot")
	}
	for i := 0; i < n; i++ {
		d.store.appendCentroid(means[i], counts[i])
	}
	return d, r.offset(), nil
}
