// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tdigest

import "fmt"

// Centroid is a weighted point summarizing a cluster of samples that were
// collapsed to their mean.
type Centroid struct {
	Mean  float64
	Count int64
}

// String implements fmt.Stringer.
func (c Centroid) String() string {
	return fmt.Sprintf("%v:%d", c.Mean, c.Count)
}
