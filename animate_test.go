// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnimateYears(t *testing.T) {
	recs := []*Record{
		{Year: 1962, Lat: 0.5, Lon: 0.5},
		{Year: 1961, Lat: 0.5, Lon: 1.5},
		{Year: 1963, Lat: 1.5, Lon: 2.5},
		{Year: 1962, Lat: 1.0, Lon: 3.0},
		{Year: 1961, Lat: 0.5, Lon: 1.5},
		{Year: 1962, Lat: 0.5, Lon: 0.5},
	}
	Enrich(recs)
	path := filepath.Join(t.TempDir(), "anim.gif")

	frames, err := AnimateYears(testBackground(), recs, path, DefaultAnimateOptions())
	if err != nil {
		t.Fatal(err)
	}
	// One frame per distinct year, ascending, with each year's
	// marker count.
	want := []Frame{{1961, 2}, {1962, 3}, {1963, 1}}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("frames mismatch (-want +have):\n%s", diff)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 {
		t.Fatalf("want 3 GIF frames, have %d", len(g.Image))
	}
	if g.LoopCount != 0 {
		t.Errorf("want looping animation, have LoopCount %d", g.LoopCount)
	}
	for i, d := range g.Delay {
		if d != DefaultAnimateOptions().Delay {
			t.Errorf("frame %d: want delay %d, have %d", i, DefaultAnimateOptions().Delay, d)
		}
	}
}

func TestAnimateYearsNoYears(t *testing.T) {
	recs := []*Record{{Year: 0, Lat: 0.5, Lon: 0.5}}
	Enrich(recs)
	_, err := AnimateYears(testBackground(), recs, filepath.Join(t.TempDir(), "anim.gif"), DefaultAnimateOptions())
	if err == nil {
		t.Fatal("want error for zero distinct years, have nil")
	}
}
