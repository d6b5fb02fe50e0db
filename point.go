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

// LonLat is the spatial reference of the centroid records: geodetic
// longitude/latitude on WGS84, i.e. EPSG:4326.
const LonLat = "+proj=longlat +datum=WGS84 +no_defs"

// GeomRecord is a centroid record carrying its location as a geometry
// point tagged with a spatial reference.
type GeomRecord struct {
	*Record
	geom.Point
	SR *proj.SR
}

// ToPoints converts records to geometry points in the LonLat reference.
// Unlike the tabular stages, which tolerate undefined coordinates per
// row, geometric comparison requires every coordinate to be numeric and
// in range, so a NaN or out-of-range latitude or longitude is an error
// naming the offending record.
func ToPoints(recs []*Record) ([]*GeomRecord, error) {
	sr, err := proj.Parse(LonLat)
	if err != nil {
		return nil, fmt.Errorf("centrogrid: parsing point spatial reference: %w", err)
	}
	out := make([]*GeomRecord, 0, len(recs))
	for _, r := range recs {
		if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
			return nil, fmt.Errorf("centrogrid: record %q: latitude or longitude is not numeric", r.ID)
		}
		if r.Lat < -90 || r.Lat > 90 {
			return nil, fmt.Errorf("centrogrid: record %q: latitude %g outside [-90, 90]", r.ID, r.Lat)
		}
		if r.Lon < -180 || r.Lon > 180 {
			return nil, fmt.Errorf("centrogrid: record %q: longitude %g outside [-180, 180]", r.ID, r.Lon)
		}
		out = append(out, &GeomRecord{
			Record: r,
			Point:  geom.Point{X: r.Lon, Y: r.Lat},
			SR:     sr,
		})
	}
	return out, nil
}
