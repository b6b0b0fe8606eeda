package rpm

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/scx-installer/internal/fsutil"
)

const (
	directiveName   = ".rpmmacros"
	savedSuffix     = ".save"
	directiveMode   = 0o644
	privateTreeName = "RPM-packages"
)

// privateTreeDirs is the rpmbuild working tree created below the target directory.
//
//nolint:gochecknoglobals // Static directory list.
var privateTreeDirs = []string{
	"BUILD",
	"RPMS/athlon",
	"RPMS/i386",
	"RPMS/i486",
	"RPMS/i586",
	"RPMS/i686",
	"RPMS/noarch",
	"SOURCES",
	"SPECS",
	"SRPMS",
}

// Release undoes an acquired directive file.
type Release func() error

// AcquireDirective installs a directive file in home that points rpmbuild at topDir.
// An existing directive file is set aside and put back by the returned Release;
// otherwise Release deletes the private one. Callers must invoke Release on every path.
func AcquireDirective(fs *fsutil.FS, home, topDir string) (Release, error) {
	path := filepath.Join(home, directiveName)
	saved := path + savedSuffix

	existed, err := fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", path, err)
	}

	if existed {
		if err = fs.Move(path, saved); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
	}

	release := func() error {
		if existed {
			return fs.Move(saved, path)
		}

		return fs.RemoveAll(path)
	}

	if err = fs.WriteFile(path, []byte("%_topdir\t"+topDir+"\n"), directiveMode); err != nil {
		return nil, errors.Join(fmt.Errorf("write %s: %w", path, err), release())
	}

	return release, nil
}

// createPrivateTree creates the rpmbuild working tree and returns its root.
func createPrivateTree(fs *fsutil.FS, targetDir string) (string, error) {
	top := filepath.Join(targetDir, privateTreeName)

	for _, dir := range privateTreeDirs {
		if err := fs.MkDir(filepath.Join(top, dir), 0o755); err != nil {
			return "", err
		}
	}

	return top, nil
}
