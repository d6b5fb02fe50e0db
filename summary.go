// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of one thematic attribute over
// the joined records that carry it.
type Summary struct {
	N      int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
}

// Summarize computes a Summary of the named thematic attribute over
// joined, skipping unmatched records and NaN attribute values. An
// attribute name absent from every matched record is an error.
func Summarize(joined []*Joined, attr string) (Summary, error) {
	var xs []float64
	known := false
	for _, j := range joined {
		if j.Cell == nil {
			continue
		}
		v, ok := j.Cell.Attrs[attr]
		if !ok {
			continue
		}
		known = true
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, v)
	}
	if !known {
		return Summary{}, fmt.Errorf("centrogrid: unknown attribute %q", attr)
	}
	if len(xs) == 0 {
		return Summary{}, fmt.Errorf("centrogrid: attribute %q has no defined values", attr)
	}
	sort.Float64s(xs)
	return Summary{
		N:      len(xs),
		Mean:   stat.Mean(xs, nil),
		Std:    stat.StdDev(xs, nil),
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
	}, nil
}
