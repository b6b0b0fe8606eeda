// Package fsutil is the filesystem utility surface of a packaging run.
//
// Plain file operations go through afero so tests can use an in-memory filesystem.
// Ownership changes, which need user and group names and usually root, are delegated
// to chown/chmod through a process.Runner, optionally prefixed with sudo.
package fsutil
