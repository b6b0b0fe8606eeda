package staging

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
)

var (
	// ErrUnboundRoot is returned when an object references a root with no directory.
	ErrUnboundRoot = errors.New("source root is not bound")
	// ErrParentMissing is returned when an object precedes its parent directory.
	ErrParentMissing = errors.New("parent directory is not declared before child")
	// ErrDuplicatePath is returned when two objects share a destination path.
	ErrDuplicatePath = errors.New("duplicate staging path")
	// ErrUnknownKind is returned when an object kind is outside the recognized set.
	ErrUnknownKind = errors.New("unknown staging object kind")
	// ErrMissingSource is returned when a copied file declares no source.
	ErrMissingSource = errors.New("file has no source")
)

// Roots maps logical source roots to absolute directories.
type Roots map[Root]string

// Entry is an Object bound to concrete locations.
type Entry struct {
	Object

	// Dest is the absolute location inside the staging directory.
	Dest string
	// SourcePath is the absolute source location, empty when the object has no source.
	SourcePath string
}

// Tree is the bound, read-only manifest of one packaging run.
type Tree struct {
	// Root is the absolute staging directory.
	Root    string
	Entries []Entry
}

// Bind resolves every object against roots and the staging directory in one pass.
func Bind(objects []Object, roots Roots, stagingDir string) (*Tree, error) {
	tree := &Tree{
		Root:    filepath.Clean(stagingDir),
		Entries: make([]Entry, 0, len(objects)),
	}

	for _, obj := range objects {
		entry := Entry{
			Object: obj,
			Dest:   filepath.Join(tree.Root, filepath.FromSlash(obj.Path)),
		}

		if obj.Kind.HasSource() && obj.Source == "" {
			return nil, fmt.Errorf("bind %q: %w", obj.Path, ErrMissingSource)
		}

		if obj.Source != "" {
			dir, ok := roots[obj.SourceRoot]
			if !ok || dir == "" {
				return nil, fmt.Errorf("bind %q: %w", obj.Path, ErrUnboundRoot)
			}

			entry.SourcePath = filepath.Join(dir, filepath.FromSlash(obj.Source))
		}

		tree.Entries = append(tree.Entries, entry)
	}

	return tree, nil
}

// Verify checks that objects form a valid creation order: kinds are recognized,
// paths are unique and every non-root object's parent is declared earlier as a directory.
func Verify(objects []Object) error {
	dirs := make(map[string]struct{}, len(objects))
	seen := make(map[string]struct{}, len(objects))

	for _, obj := range objects {
		if !obj.Kind.Known() {
			return fmt.Errorf("%q is %s: %w", obj.Path, obj.Kind, ErrUnknownKind)
		}

		if _, ok := seen[obj.Path]; ok {
			return fmt.Errorf("%q: %w", obj.Path, ErrDuplicatePath)
		}

		seen[obj.Path] = struct{}{}

		if obj.Path != "" {
			parent := path.Dir(obj.Path)
			if parent == "." {
				parent = ""
			}

			if _, ok := dirs[parent]; !ok {
				return fmt.Errorf("%q (parent %q): %w", obj.Path, parent, ErrParentMissing)
			}
		}

		if obj.Kind.IsDir() {
			dirs[obj.Path] = struct{}{}
		}
	}

	return nil
}

// Manifest returns the entries that belong in a package file list.
func (t *Tree) Manifest() []Entry {
	out := make([]Entry, 0, len(t.Entries))

	for _, entry := range t.Entries {
		if entry.Kind.InManifest() {
			out = append(out, entry)
		}
	}

	return out
}

// Conffiles returns the entries marked as user-editable configuration.
func (t *Tree) Conffiles() []Entry {
	var out []Entry

	for _, entry := range t.Entries {
		if entry.Kind == KindConffile {
			out = append(out, entry)
		}
	}

	return out
}
