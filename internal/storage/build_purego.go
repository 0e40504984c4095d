//go:build !sqlite_cgo || !cgo
// +build !sqlite_cgo !cgo

package storage

// This file is compiled by default and whenever CGO is unavailable.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go implementation provides:
//   - No C compiler required
//   - Cross-platform compilation
//   - Identical query semantics for the browser schemas we read
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
