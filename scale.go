// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tdigest

// clusterBound returns the maximum fraction of the total weight that a merged
// cluster positioned at quantile q may carry. The bound vanishes toward q=0
// and q=1 and peaks at q=0.5, which is what concentrates accuracy in the
// tails: extreme clusters stay near-singletons while clusters around the
// median can absorb up to a 1/compression share of the stream.
func clusterBound(q, compression float64) float64 {
	return 4 * q * (1 - q) / compression
}
