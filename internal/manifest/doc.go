// Package manifest assembles the ordered staging object list of a packaging run.
//
// The list is a pure function of the configuration, the platform profile and the
// contents of the repository source tree. It is also a valid creation order:
// every directory precedes the objects placed inside it.
package manifest
