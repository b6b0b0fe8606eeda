// Package version exposes build metadata of the scx-installer binary.
//
// Version, Commit and BuildTime are set through ldflags. Short is the value
// written to build receipts.
package version
