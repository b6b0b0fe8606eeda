package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/oshokin/scx-installer/internal/domain/staging"
)

var errNotDirectory = errors.New("not a directory")

// ExpandRequest describes a recursive directory copy.
type ExpandRequest struct {
	// SourceDir is the absolute directory read from the filesystem.
	SourceDir string
	// Dest is the staging path the tree is copied to.
	Dest string
	// Source is SourceDir relative to SourceRoot.
	Source     string
	SourceRoot staging.Root
	Mode       os.FileMode
	Owner      string
	Group      string
}

// ExpandDirectory turns a recursive directory copy into plain directory and file objects
// mirroring the tree below req.SourceDir. The top directory itself is not included.
// Directories are returned in parent-before-child order.
func ExpandDirectory(fs afero.Fs, req ExpandRequest) (dirs, files []staging.Object, err error) {
	err = afero.Walk(fs, req.SourceDir, func(name string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(req.SourceDir, name)
		if err != nil {
			return err
		}

		if rel == "." {
			if !info.IsDir() {
				return fmt.Errorf("%s: %w", req.SourceDir, errNotDirectory)
			}

			return nil
		}

		rel = filepath.ToSlash(rel)
		dest := path.Join(req.Dest, rel)

		switch {
		case info.IsDir():
			dirs = append(dirs, staging.NewDir(dest, req.Mode, req.Owner, req.Group))
		case info.Mode().IsRegular():
			files = append(files, staging.NewFile(dest, path.Join(req.Source, rel), req.SourceRoot,
				req.Mode, req.Owner, req.Group))
		default:
		}

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", req.SourceDir, err)
	}

	return dirs, files, nil
}
