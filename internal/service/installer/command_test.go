package installer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/domain/build"
	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/manifest"
	"github.com/oshokin/scx-installer/internal/platform"
	"github.com/oshokin/scx-installer/internal/process"
	"github.com/oshokin/scx-installer/internal/process/processtest"
	"github.com/oshokin/scx-installer/internal/repository/receipt"
	"github.com/oshokin/scx-installer/internal/version"
)

// newWorkspace lays out the build directories of one run below a temporary root.
func newWorkspace(t *testing.T, pf, distro string, major, minor int) *config.Config {
	t.Helper()

	root := t.TempDir()
	sudo := false
	cfg := &config.Config{
		Platform:    pf,
		Distro:      distro,
		Major:       major,
		Minor:       minor,
		Arch:        "x64",
		BuildType:   "Release",
		ShortName:   "scx",
		LongName:    "Microsoft System Center Cross Platform",
		Version:     "1.2.3",
		Release:     "4",
		Vendor:      "Microsoft",
		License:     "none",
		Description: "Provides server for Microsoft System Center.",
		Paths: config.Paths{
			SourceDir:       filepath.Join(root, "source"),
			TargetDir:       filepath.Join(root, "target"),
			InstallerDir:    filepath.Join(root, "installer"),
			IntermediateDir: filepath.Join(root, "intermediate"),
			StagingDir:      filepath.Join(root, "staging"),
			TempDir:         filepath.Join(root, "tmp"),
		},
		UseSudo: &sudo,
	}

	for _, dir := range []string{
		cfg.Paths.SourceDir,
		cfg.Paths.TargetDir,
		cfg.Paths.InstallerDir,
		cfg.Paths.TempDir,
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	classes := filepath.Join(cfg.Paths.IntermediateDir, "pegasus", "repository", "root#scx", "classes")
	require.NoError(t, os.MkdirAll(classes, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(classes, "SCX_Agent"), []byte("x"), 0o644))

	return cfg
}

// writeConfig stores cfg as YAML and returns its path.
func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

// seedSources creates every source file the manifest of cfg copies.
func seedSources(t *testing.T, cfg *config.Config, profile *platform.Profile) {
	t.Helper()

	objects, err := manifest.Build(cfg, profile, afero.NewOsFs())
	require.NoError(t, err)

	tree, err := staging.Bind(objects, manifest.Roots(cfg), cfg.Paths.StagingDir)
	require.NoError(t, err)

	for _, entry := range tree.Entries {
		if entry.SourcePath == "" {
			continue
		}

		if _, err = os.Stat(entry.SourcePath); err == nil {
			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(entry.SourcePath), 0o755))
		require.NoError(t, os.WriteFile(entry.SourcePath, []byte(entry.Path+"\n"), 0o644))
	}
}

func newInstaller(t *testing.T, cfg *config.Config, runner *processtest.Recorder) *installer {
	t.Helper()

	profile, err := platform.Lookup(cfg.Platform, cfg.Distro, cfg.Major, cfg.Minor)
	require.NoError(t, err)

	seedSources(t, cfg, profile)

	fs := fsutil.New(afero.NewOsFs(), runner, false)
	home := t.TempDir()

	return &installer{
		cfg:      cfg,
		profile:  profile,
		fs:       fs,
		runner:   runner,
		receipts: receipt.NewFileRepository(fs, cfg.Paths.TargetDir),
		actor:    &build.Actor{Hostname: "buildhost", Username: "builder", Group: "builders"},
		home: func() (string, error) {
			return home, nil
		},
		processes: func() ([]ps.Process, error) {
			return nil, nil
		},
		now: func() time.Time {
			return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

// TestRunUnsupportedPlatform fails on an unknown distro version before the staging directory exists.
func TestRunUnsupportedPlatform(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.Linux, platform.RedHat, 99, 0)

	err := Run(context.Background(), &Options{ConfigPath: writeConfig(t, cfg)})
	require.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
	require.NoDirExists(t, cfg.Paths.StagingDir)
}

// TestRunWithoutRenderer rejects platforms with no package format before staging.
func TestRunWithoutRenderer(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.SunOS, "", 5, 10)

	err := Run(context.Background(), &Options{ConfigPath: writeConfig(t, cfg)})
	require.ErrorIs(t, err, ErrNoRenderer)
	require.NoDirExists(t, cfg.Paths.StagingDir)
}

// TestRunMissingKey reports the missing configuration key.
func TestRunMissingKey(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.Linux, platform.Ubuntu, 8, 0)
	cfg.Version = ""

	err := Run(context.Background(), &Options{ConfigPath: writeConfig(t, cfg)})
	require.ErrorIs(t, err, config.ErrMissingKey)
	require.ErrorContains(t, err, "version")
}

// TestManifestListing prints one plain line per staging object.
func TestManifestListing(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.Linux, platform.Ubuntu, 8, 0)

	var out bytes.Buffer

	err := Manifest(context.Background(), &Options{ConfigPath: writeConfig(t, cfg), NoColor: true}, &out)
	require.NoError(t, err)

	profile, err := platform.Lookup(cfg.Platform, cfg.Distro, cfg.Major, cfg.Minor)
	require.NoError(t, err)

	objects, err := manifest.Build(cfg, profile, afero.NewOsFs())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, len(objects))
	require.Contains(t, lines, fmt.Sprintf("%-14s %04o %-11s %s",
		"dir", 0o755, "root:root", "/var/opt/microsoft/scx/lib/repository/root#scx/classes"))
	require.Contains(t, out.String(), "/usr/sbin/scxadmin -> ../../opt/microsoft/scx/bin/tools/scxadmin\n")
	require.NotContains(t, out.String(), "\x1b[")
	require.NoDirExists(t, cfg.Paths.StagingDir)
}

// TestInstallerRunDEB stages, renders and records a Debian package.
func TestInstallerRunDEB(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.Linux, platform.Ubuntu, 8, 0)
	runner := &processtest.Recorder{}
	inst := newInstaller(t, cfg, runner)

	artifact, err := inst.run(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.Paths.TargetDir, "scx-1.2.3-4.ubuntu.8.x64.deb"), artifact)

	require.FileExists(t, filepath.Join(cfg.Paths.StagingDir, "DEBIAN", "control"))
	require.FileExists(t, filepath.Join(cfg.Paths.StagingDir, "DEBIAN", "postinst"))

	info, err := os.Lstat(filepath.Join(cfg.Paths.StagingDir, "usr", "sbin", "scxadmin"))
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&os.ModeSymlink)

	commands := runner.Commands()
	require.GreaterOrEqual(t, len(commands), 2)

	pack := commands[len(commands)-2]
	require.Equal(t, process.Command{
		Dir:  cfg.Paths.TargetDir,
		Name: "dpkg",
		Args: []string{"-b", cfg.Paths.StagingDir, "scx-1.2.3-4.ubuntu.8.x64.deb"},
	}, pack)
	require.Equal(t, "chown -R builder:builders "+cfg.Paths.StagingDir, commands[len(commands)-1].String())

	saved, err := inst.receipts.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, platform.FormatDEB, saved.Format)
	require.Equal(t, artifact, saved.Artifact)
	require.Equal(t, "Linux UBUNTU 8.0 x64", saved.Platform)
	require.Equal(t, version.Short(), saved.ToolVersion)
	require.Positive(t, saved.Objects)
	require.Equal(t, "builders", saved.Actor.Group)
}

// TestInstallerRunRPM stages and renders an RPM, moving the built file to the target directory.
func TestInstallerRunRPM(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.Linux, platform.RedHat, 6, 0)
	runner := &processtest.Recorder{Outputs: map[string]string{"rpm": "x86_64\n"}}
	runner.Hook = func(cmd process.Command) error {
		if cmd.Name != "rpmbuild" {
			return nil
		}

		dir := filepath.Join(cfg.Paths.TargetDir, "RPM-packages", "RPMS", "x86_64")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		return os.WriteFile(filepath.Join(dir, "scx-1.2.3-4.x86_64.rpm"), []byte("rpm"), 0o644)
	}

	inst := newInstaller(t, cfg, runner)

	artifact, err := inst.run(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.Paths.TargetDir, "scx-1.2.3-4.rhel.6.x64.rpm"), artifact)
	require.FileExists(t, artifact)
	require.FileExists(t, filepath.Join(cfg.Paths.TempDir, "scx.spec"))

	home, err := inst.home()
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(home, ".rpmmacros"))

	saved, err := inst.receipts.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, platform.FormatRPM, saved.Format)
	require.Equal(t, artifact, saved.Artifact)
}

// TestLastReceipt prints the receipt stored in the target directory.
func TestLastReceipt(t *testing.T) {
	t.Parallel()

	cfg := newWorkspace(t, platform.Linux, platform.Ubuntu, 8, 0)
	path := writeConfig(t, cfg)

	var out bytes.Buffer

	err := LastReceipt(context.Background(), &Options{ConfigPath: path, NoColor: true}, &out)
	require.ErrorIs(t, err, receipt.ErrNotFound)
	require.ErrorContains(t, err, filepath.Join(cfg.Paths.TargetDir, receipt.Filename))

	fs := fsutil.New(afero.NewOsFs(), &processtest.Recorder{}, false)
	require.NoError(t, receipt.NewFileRepository(fs, cfg.Paths.TargetDir).Save(context.Background(), &build.Receipt{
		Format:      platform.FormatDEB,
		Artifact:    "/target/scx-1.2.3-4.ubuntu.8.x64.deb",
		Version:     "1.2.3",
		Release:     "4",
		Platform:    "Linux UBUNTU 8.0 x64",
		Objects:     120,
		ToolVersion: "0.1.0",
		Timestamp:   time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Actor:       &build.Actor{Hostname: "buildhost", Username: "builder", Group: "builders"},
	}))

	require.NoError(t, LastReceipt(context.Background(), &Options{ConfigPath: path, NoColor: true}, &out))
	require.Contains(t, out.String(), "artifact: /target/scx-1.2.3-4.ubuntu.8.x64.deb\n")
	require.Contains(t, out.String(), "version:  1.2.3-4\n")
	require.Contains(t, out.String(), "built at: 2024-03-01T12:00:00Z\n")
	require.Contains(t, out.String(), "built by: builder@buildhost (builders)\n")
}
