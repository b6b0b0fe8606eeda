// Package config defines the packaging configuration and helpers to load and
// validate it from YAML or TOML.
//
// Keys mirror the platform and product map consumed by the installer builder:
// platform family, distro, version, architecture, build type and product
// metadata, plus the absolute directories of a run.
package config
