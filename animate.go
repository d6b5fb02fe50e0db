// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"fmt"
	"image"
	"image/color/palette"
	stddraw "image/draw"
	"image/gif"
	"math"
	"os"
	"sort"

	"github.com/ctessum/geom"
)

// AnimateOptions extend MapOptions with the GIF frame delay in
// hundredths of a second.
type AnimateOptions struct {
	MapOptions
	Delay int
}

// DefaultAnimateOptions returns DefaultMapOptions with a half-second
// frame delay.
func DefaultAnimateOptions() AnimateOptions {
	return AnimateOptions{MapOptions: DefaultMapOptions(), Delay: 50}
}

// Frame describes one rendered animation frame.
type Frame struct {
	Year    int
	Markers int
}

// AnimateYears renders one frame per distinct record year, in
// ascending year order, and writes the looping animation to path. The
// background, map bounds, and marker-size scale are computed once over
// all records and held fixed across frames so sizes stay comparable.
// Records with an undefined year (zero from a failed coercion) or
// undefined coordinates are left out of every frame. Zero distinct
// years is an error.
func AnimateYears(background []geom.Polygonal, recs []*Record, path string, opts AnimateOptions) ([]Frame, error) {
	byYear := make(map[int][]*Record)
	for _, r := range recs {
		if r.Year == 0 || math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
			continue
		}
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	if len(byYear) == 0 {
		return nil, fmt.Errorf("centrogrid: no years to animate")
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	scale := newCountScale(recs)
	bounds := mapBounds(background, recs)
	anim := &gif.GIF{LoopCount: 0}
	frames := make([]Frame, 0, len(years))
	for _, y := range years {
		img, markers, err := renderFrame(background, byYear[y], scale, bounds, opts.MapOptions)
		if err != nil {
			return nil, err
		}
		anim.Image = append(anim.Image, quantize(img.Image()))
		anim.Delay = append(anim.Delay, opts.Delay)
		frames = append(frames, Frame{Year: y, Markers: markers})
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("centrogrid: creating %s: %w", path, err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return nil, fmt.Errorf("centrogrid: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return frames, nil
}

// quantize dithers a rendered frame onto the GIF palette.
func quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	stddraw.FloydSteinberg.Draw(p, b, src, b.Min)
	return p
}
