package fsutil

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const (
	blockSize = 512
	kilobyte  = 1024
)

type inode struct {
	dev uint64
	ino uint64
}

// DiskUsageKB returns the space used by the tree rooted at root in kilobytes,
// matching "du -s": allocated blocks are counted, symlinks are not followed and
// hard links are counted once. In-memory filesystems count apparent file sizes.
func (f *FS) DiskUsageKB(root string) (int64, error) {
	_, onDisk := f.fs.(*afero.OsFs)
	seen := make(map[inode]struct{})

	var total int64

	err := afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !onDisk {
			if !info.IsDir() {
				total += info.Size()
			}

			return nil
		}

		var st unix.Stat_t
		if err = unix.Lstat(path, &st); err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		//nolint:unconvert // Field widths differ between platforms.
		key := inode{dev: uint64(st.Dev), ino: uint64(st.Ino)}
		if _, ok := seen[key]; ok {
			return nil
		}

		seen[key] = struct{}{}
		total += int64(st.Blocks) * blockSize

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("measure %s: %w", root, err)
	}

	return (total + kilobyte - 1) / kilobyte, nil
}
