// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// MapOptions control how the point map is rendered.
type MapOptions struct {
	Width  vg.Length
	Height vg.Length
	DPI    int

	// Fill and Border style the background polygons.
	Fill   color.NRGBA
	Border draw.LineStyle

	// Marker is the point color, normally translucent so overlapping
	// observations darken.
	Marker color.NRGBA

	// MinRadius and MaxRadius bound the linear count-to-size mapping.
	MinRadius vg.Length
	MaxRadius vg.Length
}

// DefaultMapOptions returns a neutral grey world map with small
// translucent markers.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Width:  20 * vg.Centimeter,
		Height: 10 * vg.Centimeter,
		DPI:    150,
		Fill:   color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff},
		Border: draw.LineStyle{
			Width: 0.1 * vg.Millimeter,
			Color: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		},
		Marker:    color.NRGBA{R: 0xc0, G: 0x30, B: 0x20, A: 0x90},
		MinRadius: 0.4 * vg.Millimeter,
		MaxRadius: 1.8 * vg.Millimeter,
	}
}

// LoadBackground reads a shapefile of polygons to draw behind the
// points, such as world country outlines.
func LoadBackground(path string) ([]geom.Polygonal, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("centrogrid: opening background shapefile %s: %w", path, err)
	}
	defer d.Close()
	var polys []geom.Polygonal
	for {
		var rec struct{ geom.Polygonal }
		if more := d.DecodeRow(&rec); !more {
			break
		}
		polys = append(polys, rec.Polygonal)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("centrogrid: decoding %s: %w", path, err)
	}
	return polys, nil
}

// PointMap renders background polygons with one marker per record,
// marker radius mapped linearly from the record's observation count.
// Records with undefined coordinates are skipped; a missing background
// is an error rather than an empty canvas.
func PointMap(background []geom.Polygonal, recs []*Record, opts MapOptions) (*vgimg.Canvas, error) {
	img, _, err := renderFrame(background, recs, newCountScale(recs), mapBounds(background, recs), opts)
	return img, err
}

// WritePNG rasterizes the canvas to path.
func WritePNG(img *vgimg.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("centrogrid: creating %s: %w", path, err)
	}
	pngc := vgimg.PngCanvas{Canvas: img}
	if _, err := pngc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("centrogrid: writing %s: %w", path, err)
	}
	return f.Close()
}

// renderFrame draws one map frame and reports how many markers it
// drew. The count scale and bounds are passed in rather than derived
// so the animator can hold them fixed across frames.
func renderFrame(background []geom.Polygonal, recs []*Record, scale countScale, b *geom.Bounds, opts MapOptions) (*vgimg.Canvas, int, error) {
	if len(background) == 0 {
		return nil, 0, fmt.Errorf("centrogrid: no background polygons to draw")
	}
	img := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	m := newMapCanvas(draw.New(img), b)
	for _, p := range background {
		m.drawPolygon(p, opts.Fill, opts.Border)
	}
	var markers int
	for _, r := range recs {
		if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
			continue
		}
		gs := draw.GlyphStyle{
			Color:  opts.Marker,
			Radius: scale.radius(r.Count, opts.MinRadius, opts.MaxRadius),
			Shape:  draw.CircleGlyph{},
		}
		m.drawMarker(geom.Point{X: r.Lon, Y: r.Lat}, gs)
		markers++
	}
	return img, markers, nil
}

// mapCanvas projects map coordinates onto a drawing canvas with a
// single linear scale, preserving the aspect ratio of the map bounds
// and centering them on the canvas.
type mapCanvas struct {
	dc    draw.Canvas
	b     *geom.Bounds
	scale float64 // canvas units per map unit
	x0    vg.Length
	y0    vg.Length
}

func newMapCanvas(dc draw.Canvas, b *geom.Bounds) mapCanvas {
	w := float64(dc.Max.X - dc.Min.X)
	h := float64(dc.Max.Y - dc.Min.Y)
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	scale := 1.0
	if dx > 0 && dy > 0 {
		scale = math.Min(w/dx, h/dy)
	}
	return mapCanvas{
		dc:    dc,
		b:     b,
		scale: scale,
		x0:    dc.Min.X + vg.Length(w-dx*scale)/2,
		y0:    dc.Min.Y + vg.Length(h-dy*scale)/2,
	}
}

func (m mapCanvas) point(p geom.Point) vg.Point {
	return vg.Point{
		X: m.x0 + vg.Length((p.X-m.b.Min.X)*m.scale),
		Y: m.y0 + vg.Length((p.Y-m.b.Min.Y)*m.scale),
	}
}

// drawPolygon fills and strokes each ring of p.
func (m mapCanvas) drawPolygon(p geom.Polygonal, fill color.NRGBA, border draw.LineStyle) {
	for _, poly := range p.Polygons() {
		for _, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			pts := make([]vg.Point, 0, len(ring)+1)
			for _, q := range ring {
				pts = append(pts, m.point(q))
			}
			if pts[0] != pts[len(pts)-1] {
				pts = append(pts, pts[0])
			}
			m.dc.FillPolygon(fill, pts)
			m.dc.StrokeLines(border, pts)
		}
	}
}

func (m mapCanvas) drawMarker(p geom.Point, gs draw.GlyphStyle) {
	m.dc.DrawGlyph(gs, m.point(p))
}

// mapBounds is the union of the background and record extents.
func mapBounds(background []geom.Polygonal, recs []*Record) *geom.Bounds {
	b := geom.NewBounds()
	for _, p := range background {
		b.Extend(p.Bounds())
	}
	for _, r := range recs {
		if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
			continue
		}
		b.Extend(geom.Point{X: r.Lon, Y: r.Lat}.Bounds())
	}
	return b
}

// countScale maps observation counts linearly into a radius range. The
// range is computed once over a full record set so that subsets, such
// as animation frames, share one size encoding.
type countScale struct {
	min, max float64
}

func newCountScale(recs []*Record) countScale {
	if len(recs) == 0 {
		return countScale{}
	}
	counts := make([]float64, len(recs))
	for i, r := range recs {
		counts[i] = float64(r.Count)
	}
	return countScale{min: floats.Min(counts), max: floats.Max(counts)}
}

func (s countScale) radius(count int, minR, maxR vg.Length) vg.Length {
	if s.max <= s.min {
		return (minR + maxR) / 2
	}
	t := (float64(count) - s.min) / (s.max - s.min)
	return minR + vg.Length(t)*(maxR-minR)
}
