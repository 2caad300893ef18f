// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tdigest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func collectCentroids(d *Digest) []Centroid {
	var out []Centroid
	for c := range d.Centroids() {
		out = append(out, c)
	}
	return out
}

func TestRoundTripVerbose(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	d, err := NewWithPageSize(4+rng.Intn(50), 100)
	require.NoError(t, err)
	for i := 0; i < 100000; i++ {
		require.NoError(t, d.AddValue(rng.Float64()))
	}
	d.Compress()

	buf := make([]byte, 20000)
	n, err := d.AsBytes(buf)
	require.NoError(t, err)
	require.Equal(t, d.ByteSize(), n)
	require.Less(t, n, 12000)

	d2, consumed, err := FromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, d.Compression(), d2.Compression())
	require.Equal(t, d.Size(), d2.Size())
	require.Equal(t, d.CentroidCount(), d2.CentroidCount())
	// Verbose means are full doubles and survive exactly.
	require.Equal(t, collectCentroids(d), collectCentroids(d2))
	for q := 0.0; q <= 1; q += 0.01 {
		require.InDelta(t, d.Quantile(q), d2.Quantile(q), 1e-8, "q=%v", q)
	}
}

func TestRoundTripCompact(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	d, err := NewWithPageSize(4+rng.Intn(50), 100)
	require.NoError(t, err)
	for i := 0; i < 100000; i++ {
		require.NoError(t, d.AddValue(rng.Float64()))
	}
	d.Compress()

	buf := make([]byte, 20000)
	verboseLen, err := d.AsBytes(buf)
	require.NoError(t, err)

	n, err := d.AsSmallBytes(buf)
	require.NoError(t, err)
	require.Equal(t, d.SmallByteSize(), n)
	require.Less(t, float64(n), 0.65*float64(verboseLen))

	d2, consumed, err := FromBytes(buf[:n])
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, d.Compression(), d2.Compression())
	require.Equal(t, d.Size(), d2.Size())
	require.Equal(t, d.CentroidCount(), d2.CentroidCount())

	// Counts round-trip exactly; means only to single-precision deltas.
	orig, decoded := collectCentroids(d), collectCentroids(d2)
	for i := range orig {
		require.Equal(t, orig[i].Count, decoded[i].Count, "centroid %d", i)
		require.InDelta(t, orig[i].Mean, decoded[i].Mean, 1e-6, "centroid %d", i)
	}
	for q := 0.0; q <= 1; q += 0.01 {
		require.InDelta(t, d.Quantile(q), d2.Quantile(q), 1e-6, "q=%v", q)
	}
}

func TestRoundTripEmpty(t *testing.T) {
	d, err := New(50)
	require.NoError(t, err)
	buf := make([]byte, d.ByteSize())
	n, err := d.AsBytes(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	d2, consumed, err := FromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, 50.0, d2.Compression())
	require.Equal(t, int64(0), d2.Size())
	require.Equal(t, 0, d2.CentroidCount())
}

func TestAsBytesBufferTooSmall(t *testing.T) {
	d := mustDigestFromValues(t, 1, 2, 3)

	_, err := d.AsBytes(make([]byte, 10))
	require.Error(t, err)
	require.Contains(t, err.Error(), "buffer overflow")
	_, err = d.AsSmallBytes(make([]byte, d.SmallByteSize()-1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "buffer overflow")

	// An exactly sized buffer works for both formats.
	buf := make([]byte, d.ByteSize())
	n, err := d.AsBytes(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	buf = make([]byte, d.SmallByteSize())
	n, err = d.AsSmallBytes(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
}

func TestFromBytesTruncated(t *testing.T) {
	d, err := New(100)
	require.NoError(t, err)
	// Multi-byte varint counts exercise truncation inside a count.
	for _, v := range []float64{1, 2, 3} {
		require.NoError(t, d.Add(v, 200))
	}
	buf := make([]byte, d.ByteSize())
	n, err := d.AsBytes(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	for k := 0; k < n; k++ {
		_, _, err := FromBytes(buf[:k])
		require.Error(t, err, "prefix of %d bytes", k)
	}

	// Trailing garbage is ignored; the consumed length marks the snapshot end.
	d2, consumed, err := FromBytes(append(buf, 0xde, 0xad))
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, d.Size(), d2.Size())
}

func TestFromBytesMalformed(t *testing.T) {
	encode := func(tag int32, compression float64, total int64, means []float64, counts []int32) []byte {
		buf := make([]byte, 256)
		w := newWriter(buf)
		w.putInt32(tag)
		w.putFloat64(compression)
		w.putInt64(total)
		w.putInt32(int32(len(means)))
		for _, m := range means {
			w.putFloat64(m)
		}
		for _, c := range counts {
			w.putVarint32(c)
		}
		require.NoError(t, w.error())
		return buf[:w.len()]
	}

	cases := []struct {
		name   string
		buf    []byte
		expect string
	}{
		{
			name:   "unknown tag",
			buf:    encode(9, 100, 3, []float64{1, 2}, []int32{1, 2}),
			expect: "unknown format tag",
		},
		{
			name:   "bad compression",
			buf:    encode(verboseEncoding, -1, 3, []float64{1, 2}, []int32{1, 2}),
			expect: "invalid compression",
		},
		{
			name:   "means out of order",
			buf:    encode(verboseEncoding, 100, 3, []float64{2, 1}, []int32{1, 2}),
			expect: "out of order",
		},
		{
			name:   "non-finite mean",
			buf:    encode(verboseEncoding, 100, 3, []float64{1, inf()}, []int32{1, 2}),
			expect: "non-finite mean",
		},
		{
			name:   "zero count",
			buf:    encode(verboseEncoding, 100, 3, []float64{1, 2}, []int32{0, 3}),
			expect: "invalid count",
		},
		{
			name:   "size mismatch",
			buf:    encode(verboseEncoding, 100, 5, []float64{1, 2}, []int32{1, 2}),
			expect: "size mismatch",
		},
		{
			name:   "negative centroid count",
			buf:    encode(verboseEncoding, 100, 0, nil, nil),
			expect: "",
		},
	}
	// Patch the negative centroid count case directly; encode cannot express it.
	copy(cases[len(cases)-1].buf[20:], []byte{0xff, 0xff, 0xff, 0xff})
	cases[len(cases)-1].expect = "negative centroid count"

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _, err := FromBytes(tc.buf)
			require.Nil(t, d)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expect)
		})
	}

	_, _, err := FromBytes(nil)
	require.Error(t, err)
}
