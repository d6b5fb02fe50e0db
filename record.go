// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// KeyPrecision is the number of decimal places used when deriving the
// coordinate key. Six decimals is roughly 0.1 m at the equator, so
// floating-point noise below that cannot split one location into two
// keys.
const KeyPrecision = 6

// Record is one map centroid observation.
type Record struct {
	ID    string
	Year  int
	Month int
	Day   int

	// Lat and Lon are in degrees. Either is NaN when the source
	// value failed numeric coercion.
	Lat float64
	Lon float64

	// Date is derived from Year, Month, and Day. It is the zero time
	// when the three do not form a valid calendar date.
	Date time.Time

	// Key is the fixed-precision "lat, lon" coordinate key.
	Key string

	// Count is the number of records sharing Key.
	Count int
}

// LoadRecords reads the delimited centroid file at path into memory,
// one Record per data row. The latitude and longitude columns are
// coerced to float64; values that fail coercion become NaN and the row
// survives. A mapped column missing from the header is an error.
func LoadRecords(path string, cols RecordColumns) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("centrogrid: opening centroid file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("centrogrid: reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("centrogrid: %s has no header row", path)
	}

	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	col := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, fmt.Errorf("centrogrid: %s: missing column %q (header: %v)", path, name, header)
		}
		return i, nil
	}
	var c struct{ id, year, month, day, lat, lon int }
	for _, m := range []struct {
		name string
		dst  *int
	}{
		{cols.ID, &c.id},
		{cols.Year, &c.year},
		{cols.Month, &c.month},
		{cols.Day, &c.day},
		{cols.Lat, &c.lat},
		{cols.Lon, &c.lon},
	} {
		if *m.dst, err = col(m.name); err != nil {
			return nil, err
		}
	}

	recs := make([]*Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		recs = append(recs, &Record{
			ID:    strings.TrimSpace(row[c.id]),
			Year:  coerceInt(row[c.year]),
			Month: coerceInt(row[c.month]),
			Day:   coerceInt(row[c.day]),
			Lat:   coerceFloat(row[c.lat]),
			Lon:   coerceFloat(row[c.lon]),
		})
	}
	return recs, nil
}

// coerceFloat converts s to a float64, degrading to NaN on failure.
func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// coerceInt converts s to an int, degrading to zero on failure. Zero is
// never part of a valid calendar date, so a failed month or day shows up
// downstream as an undefined Date.
func coerceInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// Enrich derives the date, coordinate key, and per-key observation
// count for every record, in place.
func Enrich(recs []*Record) {
	for _, r := range recs {
		r.Date = DeriveDate(r.Year, r.Month, r.Day)
		r.Key = CoordKey(r.Lat, r.Lon)
	}
	AnnotateCounts(recs)
}

// Located splits recs into the records whose coordinates are both
// defined and the count of those that are not. Rows whose latitude or
// longitude failed coercion survive loading and enrichment, but they
// cannot be placed on a map, so callers drop them here before any
// geometric step.
func Located(recs []*Record) ([]*Record, int) {
	out := make([]*Record, 0, len(recs))
	dropped := 0
	for _, r := range recs {
		if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}

// DeriveDate combines year, month, and day into a calendar date in UTC.
// Combinations that do not name a real date, such as February 30,
// yield the zero time.
func DeriveDate(year, month, day int) time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range days into the next month;
	// a changed component means the combination was not a real date.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}
	}
	return d
}

// CoordKey returns the "lat, lon" key for a coordinate pair, with both
// values formatted to KeyPrecision decimal places. Pairs equal up to
// that precision always share a key.
func CoordKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', KeyPrecision, 64) +
		", " + strconv.FormatFloat(lon, 'f', KeyPrecision, 64)
}

// AnnotateCounts groups records by coordinate key and broadcasts each
// group's size to every record in the group. Repeated observations at
// one location are deliberately not deduplicated, so marker sizes
// later scale with observation frequency.
func AnnotateCounts(recs []*Record) {
	counts := make(map[string]int)
	for _, r := range recs {
		if r.Key == "" {
			r.Key = CoordKey(r.Lat, r.Lon)
		}
		counts[r.Key]++
	}
	for _, r := range recs {
		r.Count = counts[r.Key]
	}
}
