// Copyright ©2026 The centrogrid Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package centrogrid loads map centroids digitized from historical
// documents, renders them over a world polygon background, and joins
// them point-in-polygon against the PRIO-GRID cell dataset of
// socio-economic and physical attributes. It also bins centroids into
// hexagonal tiles for density maps and animates observations by year.
package centrogrid
