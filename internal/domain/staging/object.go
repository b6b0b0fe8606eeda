package staging

import (
	"fmt"
	"os"
	"strings"
)

// Kind is the closed set of staging object variants.
type Kind int

const (
	// KindUnknown is the zero value and never produced by the manifest builder.
	KindUnknown Kind = iota
	// KindDir is a directory owned by the package.
	KindDir
	// KindSysDir is a directory assumed to pre-exist on the target system.
	// It is created in the staging tree but never listed in a package manifest.
	KindSysDir
	// KindFile is a regular file copied from a source root.
	KindFile
	// KindConffile is a user-editable configuration file.
	KindConffile
	// KindTemplatedFile is a file copied from a source root with token substitution.
	KindTemplatedFile
	// KindEmptyFile is an empty placeholder created at staging time.
	KindEmptyFile
	// KindLink is a relative symbolic link.
	KindLink
)

var kindNames = map[Kind]string{
	KindDir:           "dir",
	KindSysDir:        "sysdir",
	KindFile:          "file",
	KindConffile:      "conffile",
	KindTemplatedFile: "templated-file",
	KindEmptyFile:     "empty-file",
	KindLink:          "link",
}

// String returns the manifest name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Known reports whether k is one of the recognized kinds.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// IsDir reports whether the kind creates a directory.
func (k Kind) IsDir() bool {
	return k == KindDir || k == KindSysDir
}

// InManifest reports whether objects of this kind belong in a package file list.
func (k Kind) InManifest() bool {
	return k != KindSysDir
}

// HasSource reports whether the kind requires a source to copy content from.
// Conffiles and empty files may carry one but are created empty otherwise.
func (k Kind) HasSource() bool {
	return k == KindFile || k == KindTemplatedFile
}

// Root names a source directory whose absolute location is only known at bind time.
type Root int

const (
	// RootNone marks objects without a source (directories, links, empty files).
	RootNone Root = iota
	// RootSource is the source tree root.
	RootSource
	// RootTarget is the final build output directory.
	RootTarget
	// RootInstaller holds installer templates (init scripts, service manifests).
	RootInstaller
	// RootIntermediate is the intermediate build tree.
	RootIntermediate
	// RootPegasus is the CIM server build output inside the intermediate tree.
	RootPegasus
)

// Rule replaces a literal token in a templated file with the given lines.
type Rule struct {
	// Token is the literal placeholder, e.g. "#TEMPLATE_CODEVOV_ENV#".
	Token string
	// Lines replace the token, joined with newlines. Nil removes the token.
	Lines []string
}

// Object is one declarative entry of the installation manifest.
type Object struct {
	// Path is relative to the staging root; "" denotes the root itself.
	Path  string
	Kind  Kind
	Mode  os.FileMode
	Owner string
	Group string
	// Source is relative to SourceRoot. Set for file-like kinds that copy content.
	Source     string
	SourceRoot Root
	// Target is the relative symlink target. Set for KindLink only.
	Target string
	// Rules apply to KindTemplatedFile only.
	Rules []Rule
}

// NewDir declares a package-owned directory.
func NewDir(path string, mode os.FileMode, owner, group string) Object {
	return Object{Path: cleanPath(path), Kind: KindDir, Mode: mode, Owner: owner, Group: group}
}

// NewSysDir declares a directory excluded from package manifests.
func NewSysDir(path string, mode os.FileMode, owner, group string) Object {
	return Object{Path: cleanPath(path), Kind: KindSysDir, Mode: mode, Owner: owner, Group: group}
}

// NewFile declares a file copied from root/source.
func NewFile(path, source string, root Root, mode os.FileMode, owner, group string) Object {
	return Object{
		Path:       cleanPath(path),
		Kind:       KindFile,
		Mode:       mode,
		Owner:      owner,
		Group:      group,
		Source:     source,
		SourceRoot: root,
	}
}

// NewTemplate declares a file copied from root/source with token rules applied.
func NewTemplate(path, source string, root Root, mode os.FileMode, owner, group string, rules ...Rule) Object {
	obj := NewFile(path, source, root, mode, owner, group)
	obj.Kind = KindTemplatedFile
	obj.Rules = rules

	return obj
}

// NewEmptyFile declares an empty placeholder file.
func NewEmptyFile(path string, mode os.FileMode, owner, group string) Object {
	return Object{Path: cleanPath(path), Kind: KindEmptyFile, Mode: mode, Owner: owner, Group: group}
}

// NewConffile declares an empty user-editable configuration file.
func NewConffile(path string, mode os.FileMode, owner, group string) Object {
	return Object{Path: cleanPath(path), Kind: KindConffile, Mode: mode, Owner: owner, Group: group}
}

// NewLink declares a symbolic link at path pointing to target.
func NewLink(path, target string, mode os.FileMode, owner, group string) Object {
	return Object{Path: cleanPath(path), Kind: KindLink, Mode: mode, Owner: owner, Group: group, Target: target}
}

// ManifestPath returns the absolute path of the object on the installed system.
func (o Object) ManifestPath() string {
	return "/" + o.Path
}

// WithSuffix returns a copy of o with suffixes appended to its path, source and target.
// Empty suffixes leave the corresponding field untouched.
func (o Object) WithSuffix(pathSuffix, sourceSuffix, targetSuffix string) Object {
	o.Path += pathSuffix

	if o.Source != "" {
		o.Source += sourceSuffix
	}

	if o.Kind == KindLink {
		o.Target += targetSuffix
	}

	return o
}

// cleanPath strips leading and trailing separators so "var/svc/" and "var/svc" compare equal.
func cleanPath(path string) string {
	return strings.Trim(path, "/")
}
