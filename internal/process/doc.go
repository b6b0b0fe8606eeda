// Package process runs the external packaging tools (dpkg, rpmbuild, rpm,
// chown) behind a Runner seam and detects concurrently running tools that
// share per-user state.
package process
