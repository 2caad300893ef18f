// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tdigest

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// minPageSize is the smallest allowed page capacity. Pages smaller than this
// split too often to amortize the insertion copy.
const minPageSize = 4

// Index is an opaque handle identifying a centroid's position within a
// digest. An Index is valid only until the owning digest's next mutation
// (insert, compress or merge); the store tracks a generation counter and use
// of a stale Index panics with an assertion error.
type Index struct {
	page, slot int
	gen        uint64
}

// Valid reports whether the Index refers to a centroid. Floor returns an
// invalid Index when no centroid qualifies.
func (ix Index) Valid() bool { return ix.page >= 0 }

// storePage holds a fixed-capacity run of centroids in mean order. means,
// counts and ids are parallel slices; total caches the sum of counts.
type storePage struct {
	means  []float64
	counts []int64
	ids    []uint64
	total  int64
}

// pageStore is an ordered container of centroids chunked into fixed-capacity
// pages. The page size affects only allocation granularity; ordering and
// query results are independent of it.
type pageStore struct {
	pageSize int
	pages    []*storePage
	count    int   // number of centroids
	total    int64 // sum of all counts
	nextID   uint64
	gen      uint64
}

func newPageStore(pageSize int) (*pageStore, error) {
	if pageSize < minPageSize {
		return nil, errors.Newf(
			"tdigest: must have page size of at least %d, got %d", minPageSize, pageSize)
	}
	return &pageStore{pageSize: pageSize}, nil
}

func (s *pageStore) newPage() *storePage {
	return &storePage{
		means:  make([]float64, 0, s.pageSize),
		counts: make([]int64, 0, s.pageSize),
		ids:    make([]uint64, 0, s.pageSize),
	}
}

func (s *pageStore) checkGen(gen uint64) {
	if gen != s.gen {
		panic(errors.AssertionFailedf(
			"tdigest: use of Index from generation %d after mutation (current generation %d)",
			gen, s.gen))
	}
}

func (s *pageStore) checkIndex(ix Index) {
	s.checkGen(ix.gen)
	if !ix.Valid() {
		panic(errors.AssertionFailedf("tdigest: use of invalid Index"))
	}
}

// insertSorted adds a brand-new centroid at its position in the total order.
// It never merges with neighbors. Equal means order by arrival: the new
// centroid carries the largest id and lands after every existing centroid
// with the same mean.
func (s *pageStore) insertSorted(mean float64, count int64) {
	s.gen++
	s.count++
	s.total += count
	id := s.nextID
	s.nextID++

	if len(s.pages) == 0 {
		p := s.newPage()
		p.means = append(p.means, mean)
		p.counts = append(p.counts, count)
		p.ids = append(p.ids, id)
		p.total = count
		s.pages = append(s.pages, p)
		return
	}

	// Locate the last page whose first mean is <= mean; a new arrival with an
	// equal mean sorts after existing ones, so the upper bound within that
	// page is the insertion slot.
	pi := sort.Search(len(s.pages), func(i int) bool { return s.pages[i].means[0] > mean }) - 1
	if pi < 0 {
		pi = 0
	}
	p := s.pages[pi]
	if len(p.means) == s.pageSize {
		s.splitPage(pi)
		if next := s.pages[pi+1]; mean >= next.means[0] {
			pi++
			p = next
		}
	}
	slot := sort.Search(len(p.means), func(i int) bool { return p.means[i] > mean })
	p.means = append(p.means, 0)
	copy(p.means[slot+1:], p.means[slot:])
	p.means[slot] = mean
	p.counts = append(p.counts, 0)
	copy(p.counts[slot+1:], p.counts[slot:])
	p.counts[slot] = count
	p.ids = append(p.ids, 0)
	copy(p.ids[slot+1:], p.ids[slot:])
	p.ids[slot] = id
	p.total += count
}

// splitPage splits the full page at pi in half, moving the upper half into a
// new page at pi+1.
func (s *pageStore) splitPage(pi int) {
	p := s.pages[pi]
	half := s.pageSize / 2
	q := s.newPage()
	q.means = append(q.means, p.means[half:]...)
	q.counts = append(q.counts, p.counts[half:]...)
	q.ids = append(q.ids, p.ids[half:]...)
	for _, c := range q.counts {
		q.total += c
	}
	p.means = p.means[:half]
	p.counts = p.counts[:half]
	p.ids = p.ids[:half]
	p.total -= q.total
	s.pages = append(s.pages, nil)
	copy(s.pages[pi+2:], s.pages[pi+1:])
	s.pages[pi+1] = q
}

// floor returns the position of the last centroid with mean <= x, or an
// invalid Index if every mean exceeds x.
func (s *pageStore) floor(x float64) Index {
	pi := sort.Search(len(s.pages), func(i int) bool { return s.pages[i].means[0] > x }) - 1
	if pi < 0 {
		return Index{page: -1, gen: s.gen}
	}
	p := s.pages[pi]
	// The page's first mean is <= x, so the slot is >= 0.
	slot := sort.Search(len(p.means), func(i int) bool { return p.means[i] > x }) - 1
	return Index{page: pi, slot: slot, gen: s.gen}
}

// headSum returns the cumulative weight of every centroid up to and including
// ix. The invalid Index yields 0, so headSum(floor(x)) is the discrete CDF
// numerator even when x is below all means.
func (s *pageStore) headSum(ix Index) int64 {
	s.checkGen(ix.gen)
	if !ix.Valid() {
		return 0
	}
	var sum int64
	for i := 0; i < ix.page; i++ {
		sum += s.pages[i].total
	}
	p := s.pages[ix.page]
	for i := 0; i <= ix.slot; i++ {
		sum += p.counts[i]
	}
	return sum
}

func (s *pageStore) meanAt(ix Index) float64 {
	s.checkIndex(ix)
	return s.pages[ix.page].means[ix.slot]
}

func (s *pageStore) weightAt(ix Index) int64 {
	s.checkIndex(ix)
	return s.pages[ix.page].counts[ix.slot]
}

func (s *pageStore) first() Index {
	if s.count == 0 {
		return Index{page: -1, gen: s.gen}
	}
	return Index{gen: s.gen}
}

func (s *pageStore) last() Index {
	if s.count == 0 {
		return Index{page: -1, gen: s.gen}
	}
	pi := len(s.pages) - 1
	return Index{page: pi, slot: len(s.pages[pi].means) - 1, gen: s.gen}
}

// next returns the position after ix, or an invalid Index at the end.
func (s *pageStore) next(ix Index) Index {
	s.checkIndex(ix)
	if ix.slot+1 < len(s.pages[ix.page].means) {
		return Index{page: ix.page, slot: ix.slot + 1, gen: s.gen}
	}
	if ix.page+1 < len(s.pages) {
		return Index{page: ix.page + 1, gen: s.gen}
	}
	return Index{page: -1, gen: s.gen}
}

// prev returns the position before ix, or an invalid Index at the start.
func (s *pageStore) prev(ix Index) Index {
	s.checkIndex(ix)
	if ix.slot > 0 {
		return Index{page: ix.page, slot: ix.slot - 1, gen: s.gen}
	}
	if ix.page > 0 {
		return Index{page: ix.page - 1, slot: len(s.pages[ix.page-1].means) - 1, gen: s.gen}
	}
	return Index{page: -1, gen: s.gen}
}

// rankLess returns the number of centroids with mean strictly less than x.
func (s *pageStore) rankLess(x float64) int {
	pi := sort.Search(len(s.pages), func(i int) bool { return s.pages[i].means[0] >= x }) - 1
	if pi < 0 {
		return 0
	}
	rank := 0
	for i := 0; i < pi; i++ {
		rank += len(s.pages[i].means)
	}
	p := s.pages[pi]
	return rank + sort.Search(len(p.means), func(i int) bool { return p.means[i] >= x })
}

// rankLessOrEqual returns the number of centroids with mean <= x.
func (s *pageStore) rankLessOrEqual(x float64) int {
	pi := sort.Search(len(s.pages), func(i int) bool { return s.pages[i].means[0] > x }) - 1
	if pi < 0 {
		return 0
	}
	rank := 0
	for i := 0; i < pi; i++ {
		rank += len(s.pages[i].means)
	}
	p := s.pages[pi]
	return rank + sort.Search(len(p.means), func(i int) bool { return p.means[i] > x })
}

// indexAt returns the Index of the centroid at ordinal position pos.
func (s *pageStore) indexAt(pos int) Index {
	if pos < 0 || pos >= s.count {
		return Index{page: -1, gen: s.gen}
	}
	for pi, p := range s.pages {
		if pos < len(p.means) {
			return Index{page: pi, slot: pos, gen: s.gen}
		}
		pos -= len(p.means)
	}
	panic(errors.AssertionFailedf("tdigest: centroid count %d disagrees with pages", s.count))
}

// each invokes fn on every centroid in order, stopping if fn returns false.
func (s *pageStore) each(fn func(mean float64, count int64) bool) {
	for _, p := range s.pages {
		for i := range p.means {
			if !fn(p.means[i], p.counts[i]) {
				return
			}
		}
	}
}

// reset drops all centroids, invalidating outstanding handles. Arrival ids
// keep increasing across resets so rebuilt centroids still order after any
// they replaced.
func (s *pageStore) reset() {
	s.gen++
	s.pages = s.pages[:0]
	s.count = 0
	s.total = 0
}

// appendCentroid appends a centroid after the current last position. The
// caller guarantees mean order; pages are filled to capacity. Unlike
// insertSorted it does not bump the generation, so a rebuild invalidates
// handles exactly once via reset.
func (s *pageStore) appendCentroid(mean float64, count int64) {
	var p *storePage
	if n := len(s.pages); n > 0 && len(s.pages[n-1].means) < s.pageSize {
		p = s.pages[n-1]
	} else {
		p = s.newPage()
		s.pages = append(s.pages, p)
	}
	p.means = append(p.means, mean)
	p.counts = append(p.counts, count)
	p.ids = append(p.ids, s.nextID)
	s.nextID++
	p.total += count
	s.count++
	s.total += count
}

// IndexIterator is a forward-only pass over a contiguous run of store
// positions. It is finite and cannot be restarted; obtain a fresh iterator
// for another pass. Any mutation of the owning digest invalidates it.
type IndexIterator struct {
	s         *pageStore
	gen       uint64
	cur       Index
	remaining int
}

// Next returns the next Index in the run. The second return value is false
// once the run is exhausted.
func (it *IndexIterator) Next() (Index, bool) {
	it.s.checkGen(it.gen)
	if it.remaining <= 0 {
		return Index{page: -1, gen: it.gen}, false
	}
	ix := it.cur
	it.remaining--
	if it.remaining > 0 {
		it.cur = it.s.next(ix)
	}
	return ix, true
}

// allBefore returns an iterator over the positions of all centroids with mean
// strictly less than x.
func (s *pageStore) allBefore(x float64) *IndexIterator {
	n := s.rankLess(x)
	it := &IndexIterator{s: s, gen: s.gen, remaining: n}
	if n > 0 {
		it.cur = s.first()
	}
	return it
}

// allAfter returns an iterator over the positions of all centroids with mean
// strictly greater than x.
func (s *pageStore) allAfter(x float64) *IndexIterator {
	start := s.rankLessOrEqual(x)
	n := s.count - start
	it := &IndexIterator{s: s, gen: s.gen, remaining: n}
	if n > 0 {
		it.cur = s.indexAt(start)
	}
	return it
}
