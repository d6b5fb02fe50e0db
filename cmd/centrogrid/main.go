// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command centrogrid runs the centroid pipeline: load and enrich the
// centroid records, render the point map, download and load the grid
// cell shapefile with its thematic attributes, spatially join the
// points to cells, and animate the observations by year.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mayamarie4897/centrogrid"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("centrogrid: ")

	cfg := centrogrid.DefaultConfig()
	flag.StringVar(&cfg.CentroidFile, "centroids", cfg.CentroidFile, "delimited file of map centroid records")
	flag.StringVar(&cfg.AttributeFile, "attributes", cfg.AttributeFile, "delimited file of thematic grid cell attributes")
	flag.StringVar(&cfg.GridURL, "grid-url", cfg.GridURL, "URL of the grid cell shapefile archive")
	flag.StringVar(&cfg.ArchivePath, "archive", cfg.ArchivePath, "where to store the downloaded archive")
	flag.StringVar(&cfg.GridDir, "grid-dir", cfg.GridDir, "directory to extract the archive into")
	flag.StringVar(&cfg.GridLayer, "layer", cfg.GridLayer, "base name of the grid cell shapefile")
	flag.StringVar(&cfg.BackgroundFile, "background", cfg.BackgroundFile, "shapefile of background polygons")
	flag.StringVar(&cfg.PointMapFile, "map", cfg.PointMapFile, "output point map PNG")
	flag.StringVar(&cfg.AnimationFile, "gif", cfg.AnimationFile, "output animation GIF")
	skipDownload := flag.Bool("skip-download", false, "reuse a previously downloaded archive")
	summaryAttr := flag.String("summary", "", "thematic attribute to summarize after the join")
	flag.Parse()

	recs, err := centrogrid.LoadRecords(cfg.CentroidFile, cfg.Records)
	if err != nil {
		log.Fatal(err)
	}
	centrogrid.Enrich(recs)
	log.Printf("loaded %d centroid records from %s", len(recs), cfg.CentroidFile)
	recs, dropped := centrogrid.Located(recs)
	if dropped > 0 {
		log.Printf("skipped %d records without usable coordinates", dropped)
	}

	background, err := centrogrid.LoadBackground(cfg.BackgroundFile)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.PointMapFile), 0755); err != nil {
		log.Fatal(err)
	}
	img, err := centrogrid.PointMap(background, recs, centrogrid.DefaultMapOptions())
	if err != nil {
		log.Fatal(err)
	}
	if err := centrogrid.WritePNG(img, cfg.PointMapFile); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote point map to %s", cfg.PointMapFile)

	points, err := centrogrid.ToPoints(recs)
	if err != nil {
		log.Fatal(err)
	}

	if !*skipDownload {
		if err := centrogrid.DownloadArchive(context.Background(), cfg.GridURL, cfg.ArchivePath); err != nil {
			log.Fatal(err)
		}
		log.Printf("downloaded %s to %s", cfg.GridURL, cfg.ArchivePath)
	}
	if err := centrogrid.ExtractArchive(cfg.ArchivePath, cfg.GridDir); err != nil {
		log.Fatal(err)
	}
	grid, err := centrogrid.LoadCells(cfg.GridDir, cfg.GridLayer, cfg.Cells)
	if err != nil {
		log.Fatal(err)
	}
	attrs, err := centrogrid.LoadAttributes(cfg.AttributeFile, cfg.AttrID)
	if err != nil {
		log.Fatal(err)
	}
	grid.JoinAttributes(attrs)
	log.Printf("loaded %d grid cells with %d thematic attributes", len(grid.Cells), len(grid.AttrNames))

	joined, stats, err := centrogrid.SpatialJoin(points, grid)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("spatial join: %d matched, %d unmatched, %d boundary points tie-broken",
		stats.Matched, stats.Unmatched, stats.TieBroken)

	if *summaryAttr != "" {
		s, err := centrogrid.Summarize(joined, *summaryAttr)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("%s: n=%d mean=%.4g std=%.4g min=%.4g median=%.4g max=%.4g",
			*summaryAttr, s.N, s.Mean, s.Std, s.Min, s.Median, s.Max)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.AnimationFile), 0755); err != nil {
		log.Fatal(err)
	}
	frames, err := centrogrid.AnimateYears(background, recs, cfg.AnimationFile, centrogrid.DefaultAnimateOptions())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d animation frames to %s", len(frames), cfg.AnimationFile)
}
