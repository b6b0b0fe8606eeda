// Package platform maps (platform, distro, major version) to a Profile:
// path roots, privileged group, service-startup artifacts, shared-library
// suffix rules and the package format with its pinned dependencies.
package platform
