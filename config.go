// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package centrogrid

// RecordColumns declares the column names that hold the canonical
// centroid fields in the input file. Declaring the mapping up front
// avoids guessing at header spellings or encoding artifacts.
type RecordColumns struct {
	ID    string // opaque record identifier
	Year  string
	Month string
	Day   string
	Lat   string // latitude in degrees
	Lon   string // longitude in degrees
}

// CellColumns declares the attribute columns read from the grid cell
// shapefile. Country may be empty if the shapefile carries no
// country-code attribute.
type CellColumns struct {
	ID      string
	Country string
}

// Config holds the input, output, and network locations for a pipeline
// run, along with the column mappings for both tabular inputs. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// CentroidFile is the delimited file of map centroid records.
	CentroidFile string

	// AttributeFile is the delimited file of thematic grid cell
	// attributes keyed by cell id.
	AttributeFile string

	// GridURL is the archive containing the grid cell shapefile.
	GridURL string

	// ArchivePath is where the downloaded archive is stored.
	ArchivePath string

	// GridDir is the directory the archive is extracted into.
	GridDir string

	// GridLayer is the base name of the shapefile within GridDir.
	GridLayer string

	// BackgroundFile is a shapefile of world country polygons drawn
	// behind the points.
	BackgroundFile string

	// PointMapFile and AnimationFile are the rendered outputs.
	PointMapFile  string
	AnimationFile string

	Records RecordColumns
	Cells   CellColumns

	// AttrID is the cell id column in AttributeFile.
	AttrID string
}

// DefaultConfig returns the documented default locations: inputs under
// data/, outputs under out/, and the PRIO-GRID v2 cell shapefile from
// its canonical distribution URL.
func DefaultConfig() Config {
	return Config{
		CentroidFile:   "data/centroids.csv",
		AttributeFile:  "data/priogrid_attributes.csv",
		GridURL:        "https://file.prio.no/ReplicationData/PRIO-GRID/priogrid_cellshp.zip",
		ArchivePath:    "data/priogrid_cellshp.zip",
		GridDir:        "data/priogrid",
		GridLayer:      "priogrid_cell",
		BackgroundFile: "data/world/countries.shp",
		PointMapFile:   "out/centroids.png",
		AnimationFile:  "out/centroids.gif",
		Records: RecordColumns{
			ID:    "map_id",
			Year:  "year",
			Month: "month",
			Day:   "day",
			Lat:   "latitude",
			Lon:   "longitude",
		},
		Cells: CellColumns{
			ID:      "gid",
			Country: "gwno",
		},
		AttrID: "gid",
	}
}
