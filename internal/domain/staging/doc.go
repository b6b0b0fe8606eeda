// Package staging contains the declarative model of an installation tree.
//
// An Object is one entry of the manifest (directory, file, symlink, ...).
// Objects are built root-agnostic: file-like objects name a logical source
// Root instead of an absolute directory. A single Bind pass resolves every
// object against concrete Roots and the staging directory, producing a Tree
// that renderers and the materializer read without mutating.
package staging
