// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package randvar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededDeterminism(t *testing.T) {
	a := NewUniform(NewRand(1), 0, 1)
	b := NewUniform(NewRand(1), 0, 1)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d", i)
	}
}

func TestUniformRange(t *testing.T) {
	g := NewUniform(NewRand(2), -3, 7)
	var sum float64
	const n = 100000
	for i := 0; i < n; i++ {
		v := g.Float64()
		require.GreaterOrEqual(t, v, -3.0)
		require.Less(t, v, 7.0)
		sum += v
	}
	require.InDelta(t, 2.0, sum/n, 0.1)
}

func TestSequentialIncreasing(t *testing.T) {
	g := NewSequential(0.25)
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := g.Float64()
		require.Greater(t, v, prev)
		require.InDelta(t, 0.25*float64(i), v, 1e-12)
		prev = v
	}
}

func TestRoundedLattice(t *testing.T) {
	g := NewRounded(NewUniform(NewRand(3), 0, 1), 10)
	for i := 0; i < 10000; i++ {
		v := g.Float64()
		scaled := v * 10
		require.InDelta(t, math.Round(scaled), scaled, 1e-9, "draw %d: %v", i, v)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestNormalMoments(t *testing.T) {
	g := NewNormal(NewRand(4), 5, 2)
	const n = 100000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := g.Float64()
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	require.InDelta(t, 5.0, mean, 0.05)
	require.InDelta(t, 4.0, sumSq/n-mean*mean, 0.2)
}

func TestGamma(t *testing.T) {
	// Shape 0.1, rate 0.1: mean 1, severely right-skewed. All draws must be
	// positive and the sample mean should land near 1.
	g := NewGamma(NewRand(5), 0.1, 0.1)
	const n = 200000
	var sum float64
	for i := 0; i < n; i++ {
		v := g.Float64()
		require.Greater(t, v, 0.0)
		sum += v
	}
	require.InDelta(t, 1.0, sum/n, 0.15)

	// Shape >= 1 skips the boosting branch.
	g2 := NewGamma(NewRand(6), 4, 2)
	sum = 0
	for i := 0; i < n; i++ {
		v := g2.Float64()
		require.Greater(t, v, 0.0)
		sum += v
	}
	require.InDelta(t, 2.0, sum/n, 0.05)
}

func TestMix(t *testing.T) {
	g := NewMix(NewRand(7),
		NewUniform(NewRand(8), 0, 1),
		NewUniform(NewRand(9), 10, 11),
	)
	var lo, hi int
	for i := 0; i < 10000; i++ {
		v := g.Float64()
		switch {
		case v >= 0 && v < 1:
			lo++
		case v >= 10 && v < 11:
			hi++
		default:
			t.Fatalf("draw %v outside both components", v)
		}
	}
	require.Greater(t, lo, 4000)
	require.Greater(t, hi, 4000)
}
