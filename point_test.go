// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"math"
	"strings"
	"testing"

	"github.com/ctessum/geom"
)

func TestToPoints(t *testing.T) {
	recs := []*Record{
		{ID: "m1", Lat: 48.8566, Lon: 2.3522},
		{ID: "m2", Lat: -33.8688, Lon: 151.2093},
	}
	pts, err := ToPoints(recs)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 2 {
		t.Fatalf("want 2 points, have %d", len(pts))
	}
	want := geom.Point{X: 2.3522, Y: 48.8566}
	if pts[0].Point != want {
		t.Errorf("want %v, have %v", want, pts[0].Point)
	}
	if pts[0].SR == nil {
		t.Error("point has no spatial reference")
	}
}

func TestToPointsInvalid(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
	}{
		{"nan latitude", &Record{ID: "bad", Lat: math.NaN(), Lon: 0}},
		{"latitude out of range", &Record{ID: "bad", Lat: 91, Lon: 0}},
		{"longitude out of range", &Record{ID: "bad", Lat: 0, Lon: -180.5}},
	}
	for _, test := range tests {
		_, err := ToPoints([]*Record{test.rec})
		if err == nil {
			t.Errorf("%s: want error, have nil", test.name)
			continue
		}
		if !strings.Contains(err.Error(), `"bad"`) {
			t.Errorf("%s: error does not name the record: %v", test.name, err)
		}
	}
}
