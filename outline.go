// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// outlineGraph accumulates directed polygon edges keyed by start
// point. Edges shared by two polygons appear once in each direction
// and cancel, so after all polygons are added only the exterior
// boundary remains.
type outlineGraph struct {
	edges map[geom.Point]map[geom.Point]struct{}

	// tolerance is the maximum distance between two points where
	// they are treated as the same point. Tile vertices computed
	// from different centers land within floating-point noise of
	// each other, not exactly on each other.
	tolerance float64
}

// newOutline returns the merged boundary of p as one ring per
// contiguous region. The result is deterministic in the input's
// geometry: ring tracing always begins at the leftmost-lowest
// remaining point, so reordering the input polygons cannot reorder or
// reverse the output. Inputs whose cancelled edge graph does not
// decompose into simple rings, such as regions meeting only at a
// corner, are an error.
func newOutline(tolerance float64, p ...geom.Polygonal) (geom.Polygon, error) {
	g := outlineGraph{
		edges:     make(map[geom.Point]map[geom.Point]struct{}),
		tolerance: tolerance,
	}
	for _, polys := range p {
		for _, poly := range polys.Polygons() {
			for _, r := range poly {
				for i := 0; i < len(r)-1; i++ {
					g.add(r[i], r[i+1])
				}
				if len(r) > 0 && r[0] != r[len(r)-1] {
					// close the ring
					g.add(r[len(r)-1], r[0])
				}
			}
		}
	}
	var out geom.Polygon
	for len(g.edges) > 0 {
		r, err := g.ring()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// add inserts the edge from start to end, snapping both to existing
// graph points within tolerance. An edge whose reverse is already
// present is interior to the merged shape; both copies are removed.
func (g *outlineGraph) add(start, end geom.Point) {
	if start == end {
		return
	}
	start = g.snap(start)
	end = g.snap(end)
	if start == end {
		// Collapsed under snapping.
		return
	}

	if _, ok := g.edges[end][start]; ok {
		g.drop(end, start)
		return
	}
	if _, ok := g.edges[start]; !ok {
		g.edges[start] = make(map[geom.Point]struct{})
	}
	g.edges[start][end] = struct{}{}
}

// snap returns the existing graph point within tolerance of p, or p
// itself if there is none.
func (g *outlineGraph) snap(p geom.Point) geom.Point {
	for p1, ends := range g.edges {
		if p != p1 && math.Hypot(p1.X-p.X, p1.Y-p.Y) < g.tolerance {
			return p1
		}
		for p2 := range ends {
			if p != p2 && math.Hypot(p2.X-p.X, p2.Y-p.Y) < g.tolerance {
				return p2
			}
		}
	}
	return p
}

// drop removes the edge from start to end, pruning the start point
// when its last edge goes.
func (g *outlineGraph) drop(start, end geom.Point) {
	delete(g.edges[start], end)
	if len(g.edges[start]) == 0 {
		delete(g.edges, start)
	}
}

// ring traces one closed ring, starting from the leftmost-lowest
// remaining point, and removes its edges from the graph.
func (g *outlineGraph) ring() (geom.Path, error) {
	p := g.start()
	r := geom.Path{p}
	for {
		next := g.edges[p]
		if len(next) != 1 {
			return nil, fmt.Errorf("outline is ambiguous at %v: %d edges leave it, want 1", p, len(next))
		}
		for pp := range next {
			g.drop(p, pp)
			r = append(r, pp)
			p = pp
		}
		if r[0] == r[len(r)-1] {
			// Rings are implicitly closed.
			return r[:len(r)-1], nil
		}
	}
}

// start returns the leftmost remaining point, lowest on ties.
func (g *outlineGraph) start() geom.Point {
	var s geom.Point
	first := true
	for p := range g.edges {
		if first || p.X < s.X || (p.X == s.X && p.Y < s.Y) {
			s = p
			first = false
		}
	}
	return s
}
