// Package script composes package lifecycle scripts from named shell fragments.
//
// A Script accumulates raw lines and fragment calls in order. Each fragment is
// emitted once as a shell function ahead of the body, so a fragment called from
// several places is defined a single time.
package script
