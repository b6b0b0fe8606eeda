// Package deb renders a staged tree into a Debian package.
//
// The control directory DEBIAN is written inside the staging root with the control
// file, the conffiles list and the four maintainer scripts; dpkg-deb then packs the
// whole root.
package deb
