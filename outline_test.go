// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/google/go-cmp/cmp"
)

func TestOutline(t *testing.T) {
	// Four unit squares forming a 2×2 block. One corner is off by
	// 0.01, within tolerance, and must snap to its neighbors.
	d := []geom.Polygonal{
		geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}},
		geom.Polygon{{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1.01}}},
		geom.Polygon{{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}},
		geom.Polygon{{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}},
	}
	have, err := newOutline(0.1, d...)
	if err != nil {
		t.Fatal(err)
	}
	want := geom.Polygon{{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 1},
	}}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("outline mismatch (-want +have):\n%s", diff)
	}
}

func TestOutlineDeterministic(t *testing.T) {
	// Two disjoint squares. The outline must not depend on input
	// order: each ring starts at its leftmost-lowest point and the
	// leftmost region's ring comes first.
	a := geom.Polygon{{{X: 3, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 3, Y: 1}}}
	b := geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	have1, err := newOutline(0.1, a, b)
	if err != nil {
		t.Fatal(err)
	}
	have2, err := newOutline(0.1, b, a)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(have1, have2); diff != "" {
		t.Errorf("outline depends on input order (-ab +ba):\n%s", diff)
	}
	if len(have1) != 2 {
		t.Fatalf("want 2 rings, have %d", len(have1))
	}
	if p := have1[0][0]; p != (geom.Point{X: 0, Y: 0}) {
		t.Errorf("want first ring to start at (0,0), have %v", p)
	}
}

func TestOutlineCornerTouch(t *testing.T) {
	// Two squares sharing only the corner (1,1). Two boundary edges
	// leave that point, so there is no simple ring through it.
	d := []geom.Polygonal{
		geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}},
		geom.Polygon{{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}},
	}
	if _, err := newOutline(0.1, d...); err == nil {
		t.Fatal("want error for corner-touching regions, have nil")
	}
}
