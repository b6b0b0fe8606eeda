package deb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/platform"
	"github.com/oshokin/scx-installer/internal/process"
)

const (
	controlDirName = "DEBIAN"
	metadataMode   = 0o644

	maintainer = "Microsoft Corporation"
	depends    = "libc6 (>= 2.3.6), libssl0.9.8 (>= 0.9.8a-7), libpam-runtime (>= 0.79-3)"
)

// Options are the inputs of a DEB rendering.
type Options struct {
	Config  *config.Config
	Profile *platform.Profile
	Tree    *staging.Tree
	FS      *fsutil.FS
	Runner  process.Runner
	// Owner and Group receive the staging tree back after the build so it can be removed.
	Owner string
	Group string
}

// Renderer produces a .deb from a staged tree.
type Renderer struct {
	opts       Options
	controlDir string
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	return &Renderer{
		opts:       opts,
		controlDir: filepath.Join(opts.Tree.Root, controlDirName),
	}
}

// Render runs every step in order and returns the path of the produced package.
// Once ownership changes start, the staging tree is handed back to the invoking
// user on every exit path so the next run can wipe it.
func (r *Renderer) Render(ctx context.Context) (artifact string, err error) {
	ctx = logger.WithKV(ctx, "format", platform.FormatDEB)

	if err = r.GenerateScripts(ctx); err != nil {
		return "", fmt.Errorf("generate scripts: %w", err)
	}

	defer func() {
		if restoreErr := r.restoreOwnership(ctx); restoreErr != nil {
			artifact = ""
			err = errors.Join(err, restoreErr)
		}
	}()

	if err = r.FixOwnership(ctx); err != nil {
		return "", fmt.Errorf("fix ownership: %w", err)
	}

	if err = r.GenerateControlMetadata(ctx); err != nil {
		return "", fmt.Errorf("generate control metadata: %w", err)
	}

	return r.pack(ctx)
}

// FixOwnership applies owner, group and mode of every packaged object to the staged files.
// The staging root and system directories are left alone. Links only get ownership,
// changed without dereferencing.
func (r *Renderer) FixOwnership(ctx context.Context) error {
	for _, entry := range r.opts.Tree.Entries {
		if entry.Path == "" || entry.Kind == staging.KindSysDir {
			continue
		}

		switch entry.Kind {
		case staging.KindLink:
			if err := r.opts.FS.LChOwn(ctx, entry.Dest, entry.Owner, entry.Group); err != nil {
				return err
			}
		case staging.KindDir, staging.KindFile, staging.KindConffile,
			staging.KindTemplatedFile, staging.KindEmptyFile:
			if err := r.opts.FS.ChOwn(ctx, entry.Dest, entry.Owner, entry.Group); err != nil {
				return err
			}

			if err := r.opts.FS.ChMod(ctx, entry.Dest, entry.Mode); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%q is %s: %w", entry.Path, entry.Kind, staging.ErrUnknownKind)
		}
	}

	logger.DebugKV(ctx, "Ownership fixed", "root", r.opts.Tree.Root)

	return nil
}

// GetSizeInformation returns the staged tree size in kilobytes.
func (r *Renderer) GetSizeInformation() (int64, error) {
	return r.opts.FS.DiskUsageKB(r.opts.Tree.Root)
}

// Architecture maps an internal architecture code to its Debian name.
func Architecture(arch string) string {
	switch arch {
	case "x86":
		return "i386"
	case "x64":
		return "amd64"
	default:
		return arch
	}
}

// GenerateControlMetadata writes DEBIAN/control and DEBIAN/conffiles.
func (r *Renderer) GenerateControlMetadata(ctx context.Context) error {
	size, err := r.GetSizeInformation()
	if err != nil {
		return err
	}

	cfg := r.opts.Config
	control := ControlFile(cfg, size)

	if err = r.opts.FS.WriteFile(filepath.Join(r.controlDir, "control"), control, metadataMode); err != nil {
		return err
	}

	var conffiles strings.Builder

	for _, entry := range r.opts.Tree.Conffiles() {
		conffiles.WriteString(entry.ManifestPath() + "\n")
	}

	if err = r.opts.FS.WriteFile(filepath.Join(r.controlDir, "conffiles"),
		[]byte(conffiles.String()), metadataMode); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Control metadata written", "installed_size_kb", size)

	return nil
}

// ControlFile renders the control file of cfg for a tree of installedSize kilobytes.
func ControlFile(cfg *config.Config, installedSize int64) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "Package:      %s\n", cfg.ShortName)
	fmt.Fprintf(&b, "Source:       %s\n", cfg.ShortName)
	fmt.Fprintf(&b, "Version:      %s_%s\n", cfg.Version, cfg.Release)
	fmt.Fprintf(&b, "Architecture: %s\n", Architecture(cfg.Arch))
	fmt.Fprintf(&b, "Maintainer:   %s\n", maintainer)
	fmt.Fprintf(&b, "Installed-Size: %d\n", installedSize)
	fmt.Fprintf(&b, "Depends:      %s\n", depends)
	fmt.Fprintf(&b, "Provides:     %s\n", cfg.ShortName)
	b.WriteString("Section:      utils\n")
	b.WriteString("Priority:     optional\n")
	fmt.Fprintf(&b, "Description:  %s\n", cfg.LongName)
	fmt.Fprintf(&b, " %s\n", cfg.Description)
	b.WriteString("\n")

	return []byte(b.String())
}

// PackageName returns the file name of the produced package.
func PackageName(cfg *config.Config, profile *platform.Profile) string {
	return fmt.Sprintf("scx-%s-%s.%s.%d.%s.deb", cfg.Version, cfg.Release, profile.Tag, cfg.Major, cfg.Arch)
}

// BuildPackage packs the staging root into the target directory and hands the
// staging tree back to the invoking user, even when packing fails.
func (r *Renderer) BuildPackage(ctx context.Context) (string, error) {
	artifact, buildErr := r.pack(ctx)
	restoreErr := r.restoreOwnership(ctx)

	if err := errors.Join(buildErr, restoreErr); err != nil {
		return "", err
	}

	return artifact, nil
}

// pack runs dpkg against the staging root.
func (r *Renderer) pack(ctx context.Context) (string, error) {
	cfg := r.opts.Config
	name := PackageName(cfg, r.opts.Profile)

	_, err := r.opts.Runner.Run(ctx, process.Command{
		Dir:  cfg.Paths.TargetDir,
		Name: "dpkg",
		Args: []string{"-b", r.opts.Tree.Root, name},
	})
	if err != nil {
		return "", fmt.Errorf("build package: %w", err)
	}

	artifact := filepath.Join(cfg.Paths.TargetDir, name)
	logger.InfoKV(ctx, "Package built", "artifact", artifact)

	return artifact, nil
}

func (r *Renderer) restoreOwnership(ctx context.Context) error {
	if err := r.opts.FS.ChOwnTree(ctx, r.opts.Tree.Root, r.opts.Owner, r.opts.Group); err != nil {
		return fmt.Errorf("restore staging ownership: %w", err)
	}

	return nil
}
