//go:build !cgo_sqlite

package catalog

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver used for the catalog.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
