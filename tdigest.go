// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package tdigest implements a mergeable, bounded-memory summary of a stream
// of real-valued samples supporting approximate quantile and CDF queries.
// Accuracy is deliberately non-uniform: it is tightest near the extremes of
// the distribution and loosest near the median, controlled by the
// compression parameter.
//
// A digest has a single logical owner and provides no internal
// synchronization. Parallel construction is done by building independent
// digests over disjoint partitions of the data and combining them with
// Merge.
package tdigest

import (
	"fmt"
	"iter"
	"math"

	"github.com/cockroachdb/errors"
)

// defaultPageSize is the page capacity used by New and by FromBytes (the
// wire formats do not carry a page size).
const defaultPageSize = 32

// compressThresholdFactor governs lazy compression inside Add: once the
// centroid count exceeds this multiple of the compression parameter, the
// digest is compressed. Large enough to amortize the rebuild, small enough
// that the count stays bounded by a small constant multiple of the
// compression parameter.
const compressThresholdFactor = 20

// Digest summarizes a stream of weighted samples as an ordered sequence of
// centroids. Zero value is not usable; construct with New or
// NewWithPageSize.
type Digest struct {
	compression float64
	store       *pageStore

	// Scratch buffers reused across Compress calls.
	scratchMeans  []float64
	scratchCounts []int64
}

// New returns an empty digest with the given compression parameter and the
// default page size. Larger compression values produce more centroids and
// tighter accuracy.
func New(compression float64) (*Digest, error) {
	return NewWithPageSize(defaultPageSize, compression)
}

// NewWithPageSize returns an empty digest with the given page size and
// compression parameter. The page size must be at least 4 and affects only
// storage chunking, never query results.
func NewWithPageSize(pageSize int, compression float64) (*Digest, error) {
	if math.IsNaN(compression) || math.IsInf(compression, 0) || compression <= 0 {
		return nil, errors.Newf(
			"tdigest: compression must be a positive finite number, got %v", compression)
	}
	store, err := newPageStore(pageSize)
	if err != nil {
		return nil, err
	}
	return &Digest{compression: compression, store: store}, nil
}

// AddRaw inserts a new singleton centroid for the sample without triggering
// compression. The centroid count grows by exactly one.
func (d *Digest) AddRaw(x float64, w int64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return errors.Newf("tdigest: cannot add non-finite value %v", x)
	}
	if w < 1 {
		return errors.Newf("tdigest: weight must be at least 1, got %d", w)
	}
	d.store.insertSorted(x, w)
	return nil
}

// Add inserts the sample and compresses the digest if the uncompressed
// growth since the last compression exceeds the internal threshold.
func (d *Digest) Add(x float64, w int64) error {
	if err := d.AddRaw(x, w); err != nil {
		return err
	}
	if float64(d.store.count) > compressThresholdFactor*d.compression {
		d.Compress()
	}
	return nil
}

// AddValue inserts a single sample with weight 1.
func (d *Digest) AddValue(x float64) error {
	return d.Add(x, 1)
}

// Compress rebuilds the centroid sequence, greedily folding adjacent
// centroids while each running cluster's share of the total weight stays
// within the scale-function bound at its quantile position. Total weight is
// conserved, means remain non-decreasing and the centroid count never
// increases. All outstanding Index handles are invalidated.
func (d *Digest) Compress() {
	n := d.store.count
	if n <= 1 {
		return
	}
	means := d.scratchMeans[:0]
	counts := d.scratchCounts[:0]
	d.store.each(func(mean float64, count int64) bool {
		means = append(means, mean)
		counts = append(counts, count)
		return true
	})
	total := float64(d.store.total)
	d.store.reset()

	curMean := means[0]
	curCount := counts[0]
	var emitted int64
	for i := 1; i < n; i++ {
		projected := curCount + counts[i]
		// Quantile position of the would-be cluster's midpoint.
		q := (float64(emitted) + float64(projected)/2) / total
		if float64(projected) <= total*clusterBound(q, d.compression) {
			cw, nw := float64(curCount), float64(counts[i])
			curMean += nw / (cw + nw) * (means[i] - curMean)
			curCount = projected
		} else {
			d.store.appendCentroid(curMean, curCount)
			emitted += curCount
			curMean = means[i]
			curCount = counts[i]
		}
	}
	d.store.appendCentroid(curMean, curCount)

	d.scratchMeans = means
	d.scratchCounts = counts
}

// Merge folds the centroids of the given digests into d and compresses the
// union. The inputs are treated as read-only snapshots: their centroid data
// is copied in and they are never mutated, so no synchronization with their
// owners is required beyond them being quiescent. The resulting Size is the
// sum of all inputs' sizes.
func (d *Digest) Merge(others ...*Digest) {
	for _, o := range others {
		if o == nil || o.store.count == 0 {
			continue
		}
		means := make([]float64, 0, o.store.count)
		counts := make([]int64, 0, o.store.count)
		o.store.each(func(mean float64, count int64) bool {
			means = append(means, mean)
			counts = append(counts, count)
			return true
		})
		for i := range means {
			d.store.insertSorted(means[i], counts[i])
		}
	}
	d.Compress()
}

// Size returns the total weight ever added. It is conserved exactly across
// Compress and Merge.
func (d *Digest) Size() int64 { return d.store.total }

// CentroidCount returns the number of stored centroids.
func (d *Digest) CentroidCount() int { return d.store.count }

// Compression returns the compression parameter the digest was built with.
func (d *Digest) Compression() float64 { return d.compression }

// Centroids yields the digest's centroids in non-decreasing mean order.
func (d *Digest) Centroids() iter.Seq[Centroid] {
	return func(yield func(Centroid) bool) {
		d.store.each(func(mean float64, count int64) bool {
			return yield(Centroid{Mean: mean, Count: count})
		})
	}
}

// Floor returns the Index of the last centroid with mean <= x, or an invalid
// Index if there is none.
func (d *Digest) Floor(x float64) Index { return d.store.floor(x) }

// HeadSum returns the cumulative weight of all centroids up to and including
// ix; the invalid Index yields 0.
func (d *Digest) HeadSum(ix Index) int64 { return d.store.headSum(ix) }

// Mean returns the mean of the centroid at ix.
func (d *Digest) Mean(ix Index) float64 { return d.store.meanAt(ix) }

// Weight returns the weight of the centroid at ix.
func (d *Digest) Weight(ix Index) int64 { return d.store.weightAt(ix) }

// AllBefore returns a single-pass iterator over the positions of all
// centroids with mean strictly less than x. Together with AllAfter(x) it
// partitions the store: centroids with mean exactly x belong to neither.
func (d *Digest) AllBefore(x float64) *IndexIterator { return d.store.allBefore(x) }

// AllAfter returns a single-pass iterator over the positions of all
// centroids with mean strictly greater than x.
func (d *Digest) AllAfter(x float64) *IndexIterator { return d.store.allAfter(x) }

// Quantile returns an estimate of the q'th quantile of the summarized
// distribution. It returns NaN for an empty digest and panics if q is
// outside [0, 1]. Each centroid's weight is treated as centered on its mean;
// the estimate interpolates linearly between the two adjacent centroid
// centers straddling q*Size().
func (d *Digest) Quantile(q float64) float64 {
	if q < 0 || q > 1 {
		panic(errors.AssertionFailedf("tdigest: quantile should be in [0,1], got %v", q))
	}
	n := d.store.count
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return d.store.meanAt(d.store.first())
	}

	index := q * float64(d.store.total)
	var (
		cum        int64
		seen       int
		prevMean   float64
		prevCenter float64
		result     float64
		done       bool
	)
	d.store.each(func(mean float64, count int64) bool {
		center := float64(cum) + float64(count)/2
		if seen == 0 {
			if index < center {
				result = mean
				done = true
				return false
			}
		} else if index < center {
			t := (index - prevCenter) / (center - prevCenter)
			result = prevMean + t*(mean-prevMean)
			done = true
			return false
		}
		prevMean = mean
		prevCenter = center
		cum += count
		seen++
		return true
	})
	if !done {
		// Beyond the last centroid's center: clamp to the largest mean.
		result = prevMean
	}
	return result
}

// CDF returns an estimate of the fraction of the summarized mass that is
// <= x: 0 below all observed mass, 1 above it, NaN for an empty digest. Each
// centroid's weight is spread uniformly over the interval reaching halfway
// to each neighboring mean (mirrored at the ends), so for a cluster composed
// almost entirely of one repeated value the estimate tracks the true step
// function closely.
func (d *Digest) CDF(x float64) float64 {
	s := d.store
	n := s.count
	if n == 0 {
		return math.NaN()
	}
	firstIx := s.first()
	if n == 1 {
		if x < s.meanAt(firstIx) {
			return 0
		}
		return 1
	}
	lastIx := s.last()
	m0 := s.meanAt(firstIx)
	mN := s.meanAt(lastIx)
	if m0 == mN {
		// All mass at a single point.
		if x < m0 {
			return 0
		}
		return 1
	}

	// Identify the centroid whose half-open interval contains x. floor gives
	// the last centroid with mean <= x; x then lies either in its right half
	// or in the left half of its successor.
	j := s.floor(x)
	var i Index
	switch {
	case !j.Valid():
		i = firstIx
	case j == lastIx:
		i = lastIx
	default:
		nj := s.next(j)
		if x < s.meanAt(j)+(s.meanAt(nj)-s.meanAt(j))/2 {
			i = j
		} else {
			i = nj
		}
	}

	mi := s.meanAt(i)
	var left, right float64
	switch {
	case i == firstIx:
		right = (s.meanAt(s.next(i)) - mi) / 2
		left = right
	case i == lastIx:
		left = (mi - s.meanAt(s.prev(i))) / 2
		right = left
	default:
		left = (mi - s.meanAt(s.prev(i))) / 2
		right = (s.meanAt(s.next(i)) - mi) / 2
	}

	if i == firstIx && x < mi-left {
		return 0
	}
	if i == lastIx && x >= mi+right {
		return 1
	}

	wi := s.weightAt(i)
	head := s.headSum(i)
	width := left + right
	frac := 1.0
	if width > 0 {
		frac = (x - (mi - left)) / width
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
	}
	return (float64(head-wi) + frac*float64(wi)) / float64(s.total)
}

// String returns a compact summary of the digest's shape.
func (d *Digest) String() string {
	return fmt.Sprintf("centroids=%d size=%d compression=%g",
		d.store.count, d.store.total, d.compression)
}
