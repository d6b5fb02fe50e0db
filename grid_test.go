// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

import (
	"archive/zip"
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDownloadArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "grid", "cells.zip")
	if err := DownloadArchive(context.Background(), srv.URL, dest); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "archive bytes" {
		t.Errorf("want %q, have %q", "archive bytes", b)
	}
}

func TestDownloadArchiveBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := DownloadArchive(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.zip"))
	if err == nil {
		t.Fatal("want error for 404, have nil")
	}
	// The operator retries manually, so the error must carry the URL.
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("error does not carry the URL: %v", err)
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "archive.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractArchive(t *testing.T) {
	src := writeZip(t, map[string]string{
		"cells.shp":        "geometry",
		"nested/cells.dbf": "attributes",
	})
	dir := filepath.Join(t.TempDir(), "out")
	if err := ExtractArchive(src, dir); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]string{
		"cells.shp":        "geometry",
		"nested/cells.dbf": "attributes",
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != want {
			t.Errorf("%s: want %q, have %q", name, want, b)
		}
	}
}

func TestExtractArchiveEscape(t *testing.T) {
	src := writeZip(t, map[string]string{"../escape.txt": "bad"})
	err := ExtractArchive(src, filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatal("want error for escaping entry, have nil")
	}
}

func TestLoadAttributes(t *testing.T) {
	path := writeFile(t, "attrs.csv",
		"\ufeffgid,forest_gc,mountains_mean\n"+
			"138503.0,0.25,0.1\n"+
			"138504,0.75,n/a\n")
	attrs, err := LoadAttributes(path, "gid")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"forest_gc", "mountains_mean"}, attrs.Names); diff != "" {
		t.Errorf("attribute names mismatch (-want +have):\n%s", diff)
	}
	// "138503.0" normalizes to "138503" so both tables key alike.
	vals, ok := attrs.Rows["138503"]
	if !ok {
		t.Fatalf("missing normalized id 138503; have %v", attrs.Rows)
	}
	if vals[0] != 0.25 {
		t.Errorf("want forest_gc 0.25, have %v", vals[0])
	}
	// Non-numeric attribute values degrade to NaN.
	if !math.IsNaN(attrs.Rows["138504"][1]) {
		t.Errorf("want NaN for non-numeric value, have %v", attrs.Rows["138504"][1])
	}
}

func TestLoadAttributesDuplicateIDs(t *testing.T) {
	path := writeFile(t, "attrs.csv", "gid,forest_gc\n1,0.5\n1,0.6\n2,0.7\n2.0,0.8\n")
	_, err := LoadAttributes(path, "gid")
	if err == nil {
		t.Fatal("want error for duplicate ids, have nil")
	}
	for _, id := range []string{"1", "2"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error does not name duplicate id %s: %v", id, err)
		}
	}
}

func TestJoinAttributes(t *testing.T) {
	cells := []*GridCell{
		{Polygonal: square(0, 0, 1), ID: "1"},
		{Polygonal: square(1, 0, 1), ID: "2"},
		{Polygonal: square(2, 0, 1), ID: "3"},
	}
	g := NewGrid(cells, nil)
	g.JoinAttributes(&AttributeTable{
		Names: []string{"forest_gc"},
		Rows: map[string][]float64{
			"1": {0.25},
			"3": {0.75},
			"9": {0.99}, // no matching cell; dropped
		},
	})
	// A left join retains every cell.
	if len(g.Cells) != 3 {
		t.Fatalf("want 3 cells after join, have %d", len(g.Cells))
	}
	if v := g.Cells[0].Attrs["forest_gc"]; v != 0.25 {
		t.Errorf("cell 1: want 0.25, have %v", v)
	}
	// Cells without an attribute row get NaN, not a dropped row.
	if v := g.Cells[1].Attrs["forest_gc"]; !math.IsNaN(v) {
		t.Errorf("cell 2: want NaN, have %v", v)
	}
	if v := g.Cells[2].Attrs["forest_gc"]; v != 0.75 {
		t.Errorf("cell 3: want 0.75, have %v", v)
	}
}
