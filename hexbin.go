// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Hexbin bins joined centroid records into hexagonal tiles for density
// display. Unlike a cartogram, a density map never moves observations
// between tiles: each record stays in the tile nearest its location.
type Hexbin struct {
	hexes []*Hex
	index *rtree.Rtree

	// r is the radius of each hexagon, in map units.
	r float64

	b *geom.Bounds
}

// Hex is one hexagonal tile.
type Hex struct {
	// Point is the geometric center of the hexagon.
	geom.Point

	// Records holds the observations allocated to this tile.
	Records []*Joined

	i int
	r float64
}

// Weight is the number of observations in the tile.
func (h *Hex) Weight() float64 {
	return float64(len(h.Records))
}

// Group returns the country code appearing most often among the
// tile's observations, or "" for a tile whose observations fell
// outside every grid cell.
func (h *Hex) Group() string {
	n := make(map[string]int)
	for _, j := range h.Records {
		if j.Cell != nil {
			n[j.Cell.Country]++
		}
	}
	var group string
	var max int
	for g, c := range n {
		if c > max || (c == max && g < group) {
			group = g
			max = c
		}
	}
	return group
}

// Bounds returns the bounds of the hexagon.
func (h *Hex) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Max: geom.Point{
			X: h.Point.X + 3*h.r/2,
			Y: h.Point.Y + h.r/2*math.Sqrt(3),
		},
		Min: geom.Point{
			X: h.Point.X - 3*h.r/2,
			Y: h.Point.Y - h.r/2*math.Sqrt(3),
		},
	}
}

// Geom returns the hexagon's polygon.
func (h *Hex) Geom() geom.Polygon {
	p := make(geom.Polygon, 1)
	p[0] = make(geom.Path, 6)
	for i := 0; i < 6; i++ {
		p[0][i] = geom.Point{
			X: h.Point.X + h.r*math.Cos(math.Pi*2/6*float64(i)),
			Y: h.Point.Y + h.r*math.Sin(math.Pi*2/6*float64(i)),
		}
	}
	return p
}

// NewHexbin tiles the bounding box of data with hexagons of radius r
// and allocates each record to the tile nearest its location. Tiles
// with no records nearby are not created.
func NewHexbin(data []*Joined, r float64) (*Hexbin, error) {
	o := Hexbin{
		index: rtree.NewTree(25, 50),
		r:     r,
		b:     geom.NewBounds(),
	}

	dataIndex := rtree.NewTree(25, 50)
	bbox := geom.NewBounds()
	for _, d := range data {
		bbox.Extend(d.Point.Bounds())
		dataIndex.Insert(d)
	}

	dx := 3 * r
	dy := r * math.Sqrt(3)
	var i int
	var haveHexagons bool
	xstart := []float64{bbox.Min.X, bbox.Min.X - 1.5*r}
	ystart := []float64{bbox.Min.Y, bbox.Min.Y - r}
	for j, xmin := range xstart {
		ymin := ystart[j]
		for x := xmin; x <= bbox.Max.X; x += dx {
			for y := ymin; y <= bbox.Max.Y; y += dy {
				h := &Hex{
					Point: geom.Point{X: x, Y: y},
					r:     r,
				}
				// Point records have degenerate bounds, so the
				// candidate test must use the tile's extent, not
				// the record's.
				if len(dataIndex.SearchIntersect(h.Bounds())) == 0 {
					continue
				}
				h.i = i
				i++
				o.hexes = append(o.hexes, h)
				o.index.Insert(h)
				o.b.Extend(h.Bounds())
				haveHexagons = true
			}
		}
	}
	if !haveHexagons {
		return nil, errors.New("centrogrid: no hexagons of given radius fit within given bounds")
	}
	for _, d := range data {
		tile := o.index.NearestNeighbor(d.Point).(*Hex)
		tile.Records = append(tile.Records, d)
	}
	return &o, nil
}

// Len returns the number of tiles in the receiver.
func (h *Hexbin) Len() int { return len(h.hexes) }

// Weight returns the number of observations in tile i.
func (h *Hexbin) Weight(i int) float64 {
	return h.hexes[i].Weight()
}

// Hexes returns the tiles that comprise the receiver.
func (h *Hexbin) Hexes() []*Hex {
	return h.hexes
}

// Bounds returns the bounding box of the receiver.
func (h *Hexbin) Bounds() *geom.Bounds {
	return h.b
}

// GroupOutlines returns the merged outline of each country group's
// tiles, for drawing group boundaries over the density map. tolerance
// is the distance two points can be apart while still being considered
// the same location; it avoids polygon slivers in the result.
func (h *Hexbin) GroupOutlines(tolerance float64) (map[string]geom.Polygon, error) {
	polys := make(map[string][]geom.Polygonal)
	for _, hh := range h.hexes {
		g := hh.Group()
		polys[g] = append(polys[g], hh.Geom())
	}
	o := make(map[string]geom.Polygon)
	for g, p := range polys {
		outline, err := newOutline(tolerance, p...)
		if err != nil {
			return nil, fmt.Errorf("centrogrid: outlining group %q: %w", g, err)
		}
		o[g] = outline
	}
	return o, nil
}
