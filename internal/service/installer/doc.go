// Package installer orchestrates one linear packaging run of the scx agent.
//
// A run loads the configuration, resolves the platform profile, builds the
// staging manifest, materializes it, renders a DEB or RPM and records a build
// receipt next to the produced package. Manifest lists the staging objects
// without touching the staging directory.
package installer
