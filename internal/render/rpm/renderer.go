package rpm

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/platform"
	"github.com/oshokin/scx-installer/internal/process"
)

const (
	specMode    = 0o644
	builderName = "rpmbuild"
)

var (
	// ErrBuilderBusy is returned when another rpmbuild runs on this host and may read ~/.rpmmacros.
	ErrBuilderBusy = errors.New("another rpmbuild is running")

	errEmptyArch = errors.New("rpm reported no build architecture")
)

// Options are the inputs of an RPM rendering.
type Options struct {
	Config  *config.Config
	Profile *platform.Profile
	Tree    *staging.Tree
	FS      *fsutil.FS
	Runner  process.Runner
	// Home returns the invoking user's home directory. Defaults to homedir.Dir.
	Home func() (string, error)
	// Processes lists running processes for the busy check. Defaults to the live table.
	Processes process.Lister
}

// Renderer produces an .rpm from a staged tree.
type Renderer struct {
	opts             Options
	specPath         string
	preInstallPath   string
	postInstallPath  string
	preUninstallPath string
}

// New creates a Renderer. Generated files go to the configured temporary directory.
func New(opts Options) *Renderer {
	if opts.Home == nil {
		opts.Home = homedir.Dir
	}

	tmp := opts.Config.Paths.TempDir

	return &Renderer{
		opts:             opts,
		specPath:         filepath.Join(tmp, "scx.spec"),
		preInstallPath:   filepath.Join(tmp, "preinstall.sh"),
		postInstallPath:  filepath.Join(tmp, "postinstall.sh"),
		preUninstallPath: filepath.Join(tmp, "preuninstall.sh"),
	}
}

// Render runs every step in order and returns the path of the produced package.
func (r *Renderer) Render(ctx context.Context) (string, error) {
	ctx = logger.WithKV(ctx, "format", platform.FormatRPM)

	if err := r.GenerateScripts(ctx); err != nil {
		return "", fmt.Errorf("generate scripts: %w", err)
	}

	if err := r.GenerateSpecFile(ctx); err != nil {
		return "", fmt.Errorf("generate spec file: %w", err)
	}

	return r.BuildPackage(ctx)
}

// GenerateSpecFile writes the spec file with the package header, the file list and
// the lifecycle scripts read back from disk.
func (r *Renderer) GenerateSpecFile(ctx context.Context) error {
	cfg := r.opts.Config

	if r.opts.Profile.Requires == "" {
		return fmt.Errorf("%s %d: %w", cfg.Distro, cfg.Major, platform.ErrUnsupportedPlatform)
	}

	var b strings.Builder

	b.WriteString(Header(cfg, r.opts.Profile.Requires))
	b.WriteString(Files(r.opts.Tree))

	for _, section := range []struct {
		name string
		path string
	}{
		{"%pre", r.preInstallPath},
		{"%post", r.postInstallPath},
		{"%preun", r.preUninstallPath},
	} {
		text, err := r.opts.FS.ReadFile(section.path)
		if err != nil {
			return err
		}

		b.WriteString(section.name + "\n")
		b.Write(text)
	}

	if err := r.opts.FS.WriteFile(r.specPath, []byte(b.String()), specMode); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Spec file written", "path", r.specPath)

	return nil
}

// Header renders the spec preamble and description.
func Header(cfg *config.Config, requires string) string {
	var b strings.Builder

	b.WriteString("%define __find_requires %{nil}\n")
	b.WriteString("%define _use_internal_dependency_generator 0\n\n")
	fmt.Fprintf(&b, "Name: %s\n", cfg.ShortName)
	fmt.Fprintf(&b, "Version: %s\n", cfg.Version)
	fmt.Fprintf(&b, "Release: %s\n", cfg.Release)
	fmt.Fprintf(&b, "Summary: %s\n", cfg.LongName)
	b.WriteString("Group: Applications/System\n")
	fmt.Fprintf(&b, "License: %s\n", cfg.License)
	fmt.Fprintf(&b, "Vendor: %s\n", cfg.Vendor)
	fmt.Fprintf(&b, "Requires: %s\n", requires)
	b.WriteString("Provides: cim-server\n")
	b.WriteString("Conflicts: %{name} < %{version}-%{release}\n")
	b.WriteString("Obsoletes: %{name} < %{version}-%{release}\n")
	b.WriteString("%description\n")
	b.WriteString(cfg.Description + "\n")

	return b.String()
}

// Files renders the %files section. System directories are left out.
func Files(tree *staging.Tree) string {
	var b strings.Builder

	b.WriteString("%files\n")

	for _, entry := range tree.Manifest() {
		fmt.Fprintf(&b, "%%defattr(%o,%s,%s)\n", uint32(entry.Mode.Perm()), entry.Owner, entry.Group)

		switch entry.Kind {
		case staging.KindDir:
			b.WriteString("%dir " + entry.ManifestPath() + "\n")
		case staging.KindConffile:
			b.WriteString("%config " + entry.ManifestPath() + "\n")
		default:
			b.WriteString(entry.ManifestPath() + "\n")
		}
	}

	return b.String()
}

// PackageName returns the file name the produced package is moved to.
func PackageName(cfg *config.Config, profile *platform.Profile) string {
	return fmt.Sprintf("scx-%s-%s.%s.%d.%s.rpm", cfg.Version, cfg.Release, profile.Tag, cfg.Major, cfg.Arch)
}

// BuildPackage runs rpmbuild against the staging root, asks rpm for the resolved
// architecture and moves the result into the target directory.
func (r *Renderer) BuildPackage(ctx context.Context) (string, error) {
	cfg := r.opts.Config

	busy, err := process.IsRunning(r.opts.Processes, builderName)
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	if busy {
		return "", ErrBuilderBusy
	}

	top, err := createPrivateTree(r.opts.FS, cfg.Paths.TargetDir)
	if err != nil {
		return "", fmt.Errorf("create rpm tree: %w", err)
	}

	if err = r.runBuilder(ctx, top); err != nil {
		return "", err
	}

	arch, err := r.queryArch(ctx)
	if err != nil {
		return "", err
	}

	built := filepath.Join(top, "RPMS", arch,
		fmt.Sprintf("%s-%s-%s.%s.rpm", cfg.ShortName, cfg.Version, cfg.Release, arch))
	artifact := filepath.Join(cfg.Paths.TargetDir, PackageName(cfg, r.opts.Profile))

	if err = r.opts.FS.Move(built, artifact); err != nil {
		return "", fmt.Errorf("move package: %w", err)
	}

	logger.InfoKV(ctx, "Package built", "artifact", artifact, "arch", arch)

	return artifact, nil
}

// runBuilder holds the directive file only for the duration of rpmbuild.
func (r *Renderer) runBuilder(ctx context.Context, top string) (err error) {
	home, err := r.opts.Home()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	release, err := AcquireDirective(r.opts.FS, home, top)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := release(); releaseErr != nil {
			err = errors.Join(err, fmt.Errorf("restore directive file: %w", releaseErr))
		}
	}()

	_, err = r.opts.Runner.Run(ctx, process.Command{
		Name: builderName,
		Args: []string{"--buildroot", r.opts.Tree.Root, "-bb", r.specPath},
	})
	if err != nil {
		return fmt.Errorf("build package: %w", err)
	}

	return nil
}

func (r *Renderer) queryArch(ctx context.Context) (string, error) {
	out, err := r.opts.Runner.Run(ctx, process.Command{
		Name: "rpm",
		Args: []string{"-q", "--specfile", "--qf", "%{arch}\n", r.specPath},
	})
	if err != nil {
		return "", fmt.Errorf("query architecture: %w", err)
	}

	arch, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if arch == "" {
		return "", errEmptyArch
	}

	return strings.TrimSpace(arch), nil
}
