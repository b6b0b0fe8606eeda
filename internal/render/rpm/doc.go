// Package rpm renders a staged tree into an RPM package.
//
// Lifecycle scripts are generated as standalone files and spliced verbatim into a
// single spec file. rpmbuild is pointed at a private working tree through a
// temporary ~/.rpmmacros that is always restored after the build.
package rpm
