// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/tdigest"
	"github.com/cockroachdb/tdigest/internal/randvar"
	"github.com/spf13/cobra"
)

var compareOut string

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "sweep compressions and compare against an HdrHistogram oracle",
	Long: `
For each compression setting and distribution, builds a t-digest and an
HdrHistogram over the same samples and emits a TSV row per probed quantile:
the CDF error of each structure's estimate and the encoded sizes. This is
the offline comparison harness; it is not part of the digest's contract.
`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(
		&compareOut, "out", "o", "", "output file (default stdout)")
}

var compareCompressions = []float64{2, 5, 10, 20, 50, 100, 200, 500, 1000}

var compareQuantiles = []float64{0.001, 0.01, 0.1, 0.2, 0.3, 0.5, 0.7, 0.8, 0.9, 0.99, 0.999}

func runCompare(cmd *cobra.Command, args []string) error {
	var out io.Writer = os.Stdout
	if compareOut != "" {
		f, err := os.Create(compareOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	fmt.Fprintf(out, "tag\tcompression\tq\ttd.err\thdr.err\ttd.bytes\thdr.bytes\n")
	for _, tag := range []string{"uniform", "gamma"} {
		for _, c := range compareCompressions {
			rng := randvar.NewRand(seed)
			dist, err := makeDistribution(tag, rng)
			if err != nil {
				return err
			}
			d, err := tdigest.New(c)
			if err != nil {
				return err
			}
			data := make([]float64, samples)
			for i := range data {
				data[i] = dist.Float64()
				if err := d.AddValue(data[i]); err != nil {
					return err
				}
			}
			d.Compress()
			sort.Float64s(data)

			shift := -data[0] + 1
			hist := hdrhistogram.New(1, int64((data[len(data)-1]+shift)*hdrScale)+1, 3)
			for _, x := range data {
				if err := hist.RecordValue(int64((x + shift) * hdrScale)); err != nil {
					return err
				}
			}

			for _, q := range compareQuantiles {
				x1 := d.Quantile(q)
				x2 := float64(hist.ValueAtQuantile(q*100))/hdrScale - shift
				fmt.Fprintf(out, "%s\t%.0f\t%.5f\t%.10g\t%.10g\t%d\t%d\n",
					tag, c, q,
					exactCDF(data, x1)-q,
					exactCDF(data, x2)-q,
					d.SmallByteSize(), hist.ByteSize())
			}
		}
	}
	return nil
}
