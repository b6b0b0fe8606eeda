package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/afero"

	"github.com/oshokin/scx-installer/internal/process"
)

// errSymlinkUnsupported is returned when the backing filesystem cannot create symlinks.
var errSymlinkUnsupported = errors.New("filesystem does not support symlinks")

// FS is the filesystem utility surface used by staging and rendering:
// directory creation, recursive removal, copies, atomic moves and ownership changes.
// Ownership and (with sudo) permission changes run through external tools so they
// work for non-root builders.
type FS struct {
	fs     afero.Fs
	runner process.Runner
	sudo   bool
}

// New wraps fs. Privileged operations are executed with runner, prefixed by sudo when set.
func New(fs afero.Fs, runner process.Runner, sudo bool) *FS {
	return &FS{
		fs:     fs,
		runner: runner,
		sudo:   sudo,
	}
}

// NewOS returns an FS over the real filesystem using os/exec for privileged operations.
func NewOS(sudo bool) *FS {
	return New(afero.NewOsFs(), process.ExecRunner{}, sudo)
}

// Afero exposes the backing filesystem.
func (f *FS) Afero() afero.Fs {
	return f.fs
}

// RemoveAll removes path and any children it contains. A missing path is not an error.
func (f *FS) RemoveAll(path string) error {
	if err := f.fs.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}

// MkDir creates a directory and any missing parents.
func (f *FS) MkDir(path string, mode os.FileMode) error {
	if err := f.fs.MkdirAll(path, mode); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}

	return nil
}

// WriteFile writes data to path, creating or truncating it.
func (f *FS) WriteFile(path string, data []byte, mode os.FileMode) error {
	if err := afero.WriteFile(f.fs, path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// ReadFile returns the contents of path.
func (f *FS) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}

// Exists reports whether path exists.
func (f *FS) Exists(path string) (bool, error) {
	return afero.Exists(f.fs, path)
}

// Copy copies the regular file src to dst with the given mode.
func (f *FS) Copy(src, dst string, mode os.FileMode) error {
	in, err := f.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := f.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	return nil
}

// Symlink creates link pointing at target.
func (f *FS) Symlink(target, link string) error {
	linker, ok := f.fs.(afero.Linker)
	if !ok {
		return fmt.Errorf("symlink %s: %w", link, errSymlinkUnsupported)
	}

	if err := linker.SymlinkIfPossible(target, link); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", link, target, err)
	}

	return nil
}

// Move renames src to dst, falling back to copy and remove across devices.
func (f *FS) Move(src, dst string) error {
	if err := f.fs.Rename(src, dst); err == nil {
		return nil
	}

	info, err := f.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}

	if err = f.Copy(src, dst, info.Mode().Perm()); err != nil {
		return err
	}

	if err = f.fs.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}

	return nil
}

// ChMod sets permission bits. With sudo enabled the change runs as root,
// since the object may already belong to another user.
func (f *FS) ChMod(ctx context.Context, path string, mode os.FileMode) error {
	if !f.sudo {
		if err := f.fs.Chmod(path, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}

		return nil
	}

	return f.privileged(ctx, "chmod", strconv.FormatUint(uint64(mode.Perm()), 8), path)
}

// ChOwn sets owner and group of path by name.
func (f *FS) ChOwn(ctx context.Context, path, owner, group string) error {
	return f.privileged(ctx, "chown", owner+":"+group, path)
}

// LChOwn sets owner and group of a symlink itself, without dereferencing it.
func (f *FS) LChOwn(ctx context.Context, path, owner, group string) error {
	return f.privileged(ctx, "chown", "-h", owner+":"+group, path)
}

// ChOwnTree recursively sets owner and group below path.
func (f *FS) ChOwnTree(ctx context.Context, path, owner, group string) error {
	return f.privileged(ctx, "chown", "-R", owner+":"+group, path)
}

func (f *FS) privileged(ctx context.Context, name string, args ...string) error {
	cmd := process.Command{Name: name, Args: args}
	if f.sudo {
		cmd = process.Command{Name: "sudo", Args: append([]string{name}, args...)}
	}

	if _, err := f.runner.Run(ctx, cmd); err != nil {
		return err
	}

	return nil
}
