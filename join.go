// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Joined is a centroid record matched to the grid cell containing it.
// Cell is nil when no cell contains the point.
type Joined struct {
	*GeomRecord
	Cell *GridCell
}

// JoinStats reports the outcome of a spatial join.
type JoinStats struct {
	// Matched and Unmatched partition the input points.
	Matched   int
	Unmatched int

	// TieBroken counts points that were contained by more than one
	// cell (possible on shared boundaries) and were resolved by the
	// nearest-centroid rule.
	TieBroken int
}

// SpatialJoin matches each point to the grid cell containing it and
// attaches that cell's attributes. Output is unique per input point
// and preserves input order.
//
// Points are transformed to the grid's spatial reference before any
// geometric test; a reference mismatch that cannot be reconciled is an
// error. A point contained by, or on the edge of, more than one cell
// is assigned to the cell whose centroid is nearest the point, with
// ties going to the smallest cell id. The rule depends only on
// geometry and ids, never on input order, so repeated runs resolve
// boundary points identically.
func SpatialJoin(points []*GeomRecord, grid *Grid) ([]*Joined, JoinStats, error) {
	var stats JoinStats
	out := make([]*Joined, 0, len(points))
	for _, p := range points {
		pt, err := gridPoint(p, grid)
		if err != nil {
			return nil, stats, err
		}
		var hits []*GridCell
		for _, cI := range grid.index.SearchIntersect(pt.Bounds()) {
			c := cI.(*GridCell)
			if pt.Within(c.Polygonal) != geom.Outside {
				hits = append(hits, c)
			}
		}
		j := &Joined{GeomRecord: p}
		switch {
		case len(hits) == 0:
			stats.Unmatched++
		case len(hits) == 1:
			j.Cell = hits[0]
			stats.Matched++
		default:
			j.Cell = nearestCell(pt, hits)
			stats.Matched++
			stats.TieBroken++
		}
		out = append(out, j)
	}
	return out, stats, nil
}

// gridPoint returns p's location in the grid's spatial reference.
func gridPoint(p *GeomRecord, grid *Grid) (geom.Point, error) {
	if grid.SR == nil || p.SR == nil || sameSR(p.SR, grid.SR) {
		return p.Point, nil
	}
	t, err := p.SR.NewTransform(grid.SR)
	if err != nil {
		return geom.Point{}, fmt.Errorf("centrogrid: record %q: transforming to grid spatial reference: %w", p.ID, err)
	}
	g, err := p.Point.Transform(t)
	if err != nil {
		return geom.Point{}, fmt.Errorf("centrogrid: record %q: transforming to grid spatial reference: %w", p.ID, err)
	}
	pt, ok := g.(geom.Point)
	if !ok {
		return geom.Point{}, fmt.Errorf("centrogrid: record %q: transform returned %T, want point", p.ID, g)
	}
	return pt, nil
}

// sameSR reports whether two spatial references parsed to the same
// projection name. The proj library parses equivalent definitions to
// equal names, which is as much reference checking as the longlat-only
// inputs here need; anything else goes through a transform.
func sameSR(a, b *proj.SR) bool {
	return a.Name == b.Name
}

// nearestCell picks the containing cell whose centroid is closest to
// pt, breaking exact distance ties by smallest cell id.
func nearestCell(pt geom.Point, cells []*GridCell) *GridCell {
	best := cells[0]
	bestD := centroidDist(pt, best)
	for _, c := range cells[1:] {
		d := centroidDist(pt, c)
		if d < bestD || (d == bestD && c.ID < best.ID) {
			best = c
			bestD = d
		}
	}
	return best
}

func centroidDist(pt geom.Point, c *GridCell) float64 {
	ctr := c.Centroid()
	return math.Hypot(pt.X-ctr.X, pt.Y-ctr.Y)
}
