// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/tdigest"
	"github.com/cockroachdb/tdigest/internal/randvar"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "report encoded snapshot sizes across compressions and stream lengths",
	RunE:  runSize,
}

var sizeCompressions = []float64{2, 5, 10, 20, 50, 100, 200, 500, 1000}

var sizeStreamLengths = []int{1000, 10000, 100000, 1000000}

func runSize(cmd *cobra.Command, args []string) error {
	type result struct {
		centroids        int
		verbose, compact int
	}
	results := make([]result, len(sizeCompressions)*len(sizeStreamLengths))

	var g errgroup.Group
	for ci, c := range sizeCompressions {
		for ni, n := range sizeStreamLengths {
			ci, ni, c, n := ci, ni, c, n
			g.Go(func() error {
				rng := randvar.NewRand(seed + uint64(ci*len(sizeStreamLengths)+ni))
				dist := randvar.NewUniform(rng, 0, 1)
				d, err := tdigest.New(c)
				if err != nil {
					return err
				}
				for i := 0; i < n; i++ {
					if err := d.AddValue(dist.Float64()); err != nil {
						return err
					}
				}
				d.Compress()
				results[ci*len(sizeStreamLengths)+ni] = result{
					centroids: d.CentroidCount(),
					verbose:   d.ByteSize(),
					compact:   d.SmallByteSize(),
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"compression", "samples", "centroids", "verbose", "compact"})
	for ci, c := range sizeCompressions {
		for ni, n := range sizeStreamLengths {
			r := results[ci*len(sizeStreamLengths)+ni]
			table.Append([]string{
				fmt.Sprintf("%.0f", c),
				fmt.Sprintf("%d", n),
				fmt.Sprintf("%d", r.centroids),
				fmt.Sprintf("%d", r.verbose),
				fmt.Sprintf("%d", r.compact),
			})
		}
	}
	table.Render()
	return nil
}
