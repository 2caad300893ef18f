// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/tdigest"
	"github.com/cockroachdb/tdigest/internal/randvar"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "report quantile estimation error against exact order statistics",
	Long: `
Draws samples from the chosen distribution, summarizes them with a t-digest
and an HdrHistogram oracle, and reports per-quantile error against the
exactly sorted data. Error should tighten sharply toward the tails.
`,
	RunE: runAccuracy,
}

// hdrScale maps float samples onto the histogram's integer domain.
const hdrScale = 1e6

func runAccuracy(cmd *cobra.Command, args []string) error {
	rng := randvar.NewRand(seed)
	dist, err := makeDistribution(distName, rng)
	if err != nil {
		return err
	}

	d, err := tdigest.New(compression)
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

	// The histogram oracle needs a positive integer domain; shift by the
	// sample minimum.
	shift := -data[0] + 1
	hist := hdrhistogram.New(1, int64((data[len(data)-1]+shift)*hdrScale)+1, 3)
	for _, x := range data {
		if err := hist.RecordValue(int64((x + shift) * hdrScale)); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"q", "exact", "tdigest", "err", "hdr", "hdr err"})
	for _, q := range []float64{0.001, 0.01, 0.1, 0.5, 0.9, 0.99, 0.999} {
		exact := exactQuantile(data, q)
		est := d.Quantile(q)
		hdrEst := float64(hist.ValueAtQuantile(q*100))/hdrScale - shift
		table.Append([]string{
			fmt.Sprintf("%.3f", q),
			fmt.Sprintf("%.6g", exact),
			fmt.Sprintf("%.6g", est),
			fmt.Sprintf("%.3g", est-exact),
			fmt.Sprintf("%.6g", hdrEst),
			fmt.Sprintf("%.3g", hdrEst-exact),
		})
	}
	table.Render()

	fmt.Printf("\n%s  verbose=%dB compact=%dB\n\n", d, d.ByteSize(), d.SmallByteSize())

	errs := make([]float64, 99)
	for p := 1; p <= 99; p++ {
		q := float64(p) / 100
		errs[p-1] = math.Abs(d.Quantile(q) - exactQuantile(data, q))
	}
	fmt.Println(asciigraph.Plot(errs,
		asciigraph.Height(10),
		asciigraph.Caption(fmt.Sprintf("abs quantile error, q=0.01..0.99 (%s, c=%g)", distName, compression)),
	))
	return nil
}
