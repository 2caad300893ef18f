// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	seed        uint64
	samples     int
	compression float64
	distName    string
)

var rootCmd = &cobra.Command{
	Use:   "tdigest [command] (flags)",
	Short: "t-digest accuracy/size benchmarking tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		accuracyCmd,
		compareCmd,
		sizeCmd,
	)

	for _, cmd := range []*cobra.Command{accuracyCmd, compareCmd, sizeCmd} {
		cmd.Flags().Uint64Var(
			&seed, "seed", 1, "seed for the sample generators")
		cmd.Flags().IntVarP(
			&samples, "samples", "n", 100000, "number of samples to draw")
	}

	accuracyCmd.Flags().Float64VarP(
		&compression, "compression", "c", 100, "digest compression parameter")
	accuracyCmd.Flags().StringVar(
		&distName, "dist", "uniform",
		"sample distribution (uniform, gamma, normal, mixture, sequential, repeated)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
