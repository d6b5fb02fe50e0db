// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// GridCell is one grid cell polygon with its joined thematic
// attributes. Attrs values are NaN for cells without a matching row in
// the attribute table.
type GridCell struct {
	geom.Polygonal
	ID      string
	Country string
	Attrs   map[string]float64
}

// Grid is an indexed set of grid cells sharing a spatial reference.
type Grid struct {
	Cells []*GridCell

	// AttrNames are the thematic attribute columns joined onto the
	// cells, in attribute-file order.
	AttrNames []string

	// SR is the spatial reference read from the shapefile, or nil if
	// the shapefile carried none.
	SR *proj.SR

	index *rtree.Rtree
}

// NewGrid builds a Grid over cells, indexing them for spatial search.
func NewGrid(cells []*GridCell, sr *proj.SR) *Grid {
	g := &Grid{
		Cells: cells,
		SR:    sr,
		index: rtree.NewTree(25, 50),
	}
	for _, c := range cells {
		g.index.Insert(c)
	}
	return g
}

// DownloadArchive fetches url to dest, creating dest's directory if
// needed. Download failures are fatal for the run and are reported with
// the URL and destination path so the operator can retry manually;
// there are no automatic retries.
func DownloadArchive(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("centrogrid: building request for %s: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("centrogrid: downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("centrogrid: downloading %s: unexpected status %s", url, resp.Status)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("centrogrid: creating directory for %s: %w", dest, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("centrogrid: creating %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("centrogrid: writing %s from %s: %w", dest, url, err)
	}
	return f.Close()
}

// ExtractArchive unzips src into dir, overwriting prior contents.
// Entries that would escape dir are rejected.
func ExtractArchive(src, dir string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("centrogrid: opening archive %s: %w", src, err)
	}
	defer zr.Close()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("centrogrid: creating %s: %w", dir, err)
	}
	for _, zf := range zr.File {
		name := filepath.Join(dir, filepath.Clean(zf.Name))
		if !strings.HasPrefix(name, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("centrogrid: archive %s: entry %q escapes %s", src, zf.Name, dir)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(name, 0755); err != nil {
				return fmt.Errorf("centrogrid: creating %s: %w", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
			return fmt.Errorf("centrogrid: creating directory for %s: %w", name, err)
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("centrogrid: reading %s from %s: %w", zf.Name, src, err)
		}
		w, err := os.Create(name)
		if err != nil {
			rc.Close()
			return fmt.Errorf("centrogrid: creating %s: %w", name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("centrogrid: extracting %s: %w", name, err)
		}
	}
	return nil
}

// LoadCells decodes the grid cell shapefile <layer>.shp under dir. The
// decoder reconstructs geometry, the attribute table, and the spatial
// reference from the sibling files sharing the layer's base name.
func LoadCells(dir, layer string, cols CellColumns) (*Grid, error) {
	path := filepath.Join(dir, layer+".shp")
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("centrogrid: opening shapefile %s: %w", path, err)
	}
	defer d.Close()
	sr, err := d.SR()
	if err != nil {
		return nil, fmt.Errorf("centrogrid: reading spatial reference for %s: %w", path, err)
	}

	fields := []string{cols.ID}
	if cols.Country != "" {
		fields = append(fields, cols.Country)
	}
	var cells []*GridCell
	for {
		g, attrs, more := d.DecodeRowFields(fields...)
		if !more {
			break
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("centrogrid: %s: grid cells must be polygons, got %T", path, g)
		}
		id, ok := attrs[cols.ID]
		if !ok {
			return nil, fmt.Errorf("centrogrid: %s: missing cell id column %q", path, cols.ID)
		}
		cell := &GridCell{
			Polygonal: p,
			ID:        canonicalID(id),
		}
		if cols.Country != "" {
			cell.Country = strings.TrimSpace(attrs[cols.Country])
		}
		cells = append(cells, cell)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("centrogrid: decoding %s: %w", path, err)
	}
	return NewGrid(cells, sr), nil
}

// AttributeTable holds thematic attribute rows keyed by canonical cell
// id.
type AttributeTable struct {
	// Names are the thematic columns, in file order.
	Names []string

	// Rows maps cell id to attribute values, parallel to Names.
	Rows map[string][]float64
}

// LoadAttributes reads the delimited thematic attribute file at path.
// The cell id column is located by its declared name after stripping a
// UTF-8 byte-order mark from the header; relying on the declared name
// keeps the load robust to encoding artifacts in the source file.
// Duplicate cell ids are an error: a left join against a table with
// duplicate keys would silently change the row count downstream.
func LoadAttributes(path, idCol string) (*AttributeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("centrogrid: opening attribute file: %w", err)
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

	id := -1
	var names []string
	for i, name := range header {
		if name == idCol {
			id = i
			continue
		}
		names = append(names, name)
	}
	if id < 0 {
		return nil, fmt.Errorf("centrogrid: %s: missing cell id column %q (header: %v)", path, idCol, header)
	}

	t := &AttributeTable{
		Names: names,
		Rows:  make(map[string][]float64, len(rows)-1),
	}
	var dups []string
	for _, row := range rows[1:] {
		key := canonicalID(row[id])
		if _, ok := t.Rows[key]; ok {
			dups = append(dups, key)
			continue
		}
		vals := make([]float64, 0, len(names))
		for i, v := range row {
			if i == id {
				continue
			}
			vals = append(vals, coerceFloat(v))
		}
		t.Rows[key] = vals
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, fmt.Errorf("centrogrid: %s: duplicate cell ids %v", path, dups)
	}
	return t, nil
}

// canonicalID normalizes a cell identifier to a consistent string
// form. Identifiers exported as floats ("138503.0") collapse to their
// integer spelling so the shapefile and attribute tables key alike.
func canonicalID(s string) string {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return s
}

// JoinAttributes left-joins attrs onto the grid's cells by cell id.
// Every cell is retained; cells without a matching attribute row get
// NaN values; attribute rows without a matching cell are dropped.
func (g *Grid) JoinAttributes(attrs *AttributeTable) {
	g.AttrNames = attrs.Names
	for _, c := range g.Cells {
		c.Attrs = make(map[string]float64, len(attrs.Names))
		vals, ok := attrs.Rows[c.ID]
		for i, name := range attrs.Names {
			if ok {
				c.Attrs[name] = vals[i]
			} else {
				c.Attrs[name] = math.NaN()
			}
		}
	}
}
