package deb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/platform"
	"github.com/oshokin/scx-installer/internal/process"
	"github.com/oshokin/scx-installer/internal/process/processtest"
	"github.com/oshokin/scx-installer/internal/script"
)

func ubuntuConfig() *config.Config {
	return &config.Config{
		Platform:    platform.Linux,
		Distro:      platform.Ubuntu,
		Major:       8,
		Arch:        "x64",
		ShortName:   "scx",
		LongName:    "Microsoft System Center Cross Platform",
		Version:     "1.2.3",
		Release:     "4",
		Vendor:      "Microsoft",
		License:     "none",
		Description: "Provides server for Microsoft System Center.",
		Paths: config.Paths{
			TargetDir:  "/target",
			StagingDir: "/stage",
		},
	}
}

// newRenderer stages a small tree in memory and returns a renderer over it.
func newRenderer(t *testing.T, objects []staging.Object) (*Renderer, *fsutil.FS, *processtest.Recorder) {
	t.Helper()

	cfg := ubuntuConfig()

	profile, err := platform.Lookup(cfg.Platform, cfg.Distro, cfg.Major, cfg.Minor)
	require.NoError(t, err)

	tree, err := staging.Bind(objects, staging.Roots{}, cfg.Paths.StagingDir)
	require.NoError(t, err)

	runner := &processtest.Recorder{}
	fs := fsutil.New(afero.NewMemMapFs(), runner, true)

	for _, entry := range tree.Entries {
		switch {
		case entry.Kind.IsDir():
			require.NoError(t, fs.MkDir(entry.Dest, 0o755))
		case entry.Kind != staging.KindLink:
			require.NoError(t, fs.WriteFile(entry.Dest, make([]byte, 2048), 0o644))
		}
	}

	r := New(Options{
		Config:  cfg,
		Profile: profile,
		Tree:    tree,
		FS:      fs,
		Runner:  runner,
		Owner:   "builder",
		Group:   "admin",
	})

	return r, fs, runner
}

func sampleObjects() []staging.Object {
	return []staging.Object{
		staging.NewSysDir("", 0o700, "root", "root"),
		staging.NewSysDir("etc", 0o755, "root", "root"),
		staging.NewDir("etc/scx", 0o755, "root", "root"),
		staging.NewConffile("etc/scx/scxlog.conf", 0o644, "root", "root"),
		staging.NewEmptyFile("etc/scx/installinfo.txt", 0o644, "root", "root"),
		staging.NewLink("etc/scx/current", "scxlog.conf", 0o755, "root", "root"),
	}
}

// TestControlFile maps the architecture and joins version and release.
func TestControlFile(t *testing.T) {
	t.Parallel()

	require.Equal(t, strings.Join([]string{
		"Package:      scx",
		"Source:       scx",
		"Version:      1.2.3_4",
		"Architecture: amd64",
		"Maintainer:   Microsoft Corporation",
		"Installed-Size: 42",
		"Depends:      libc6 (>= 2.3.6), libssl0.9.8 (>= 0.9.8a-7), libpam-runtime (>= 0.79-3)",
		"Provides:     scx",
		"Section:      utils",
		"Priority:     optional",
		"Description:  Microsoft System Center Cross Platform",
		" Provides server for Microsoft System Center.",
		"",
		"",
	}, "\n"), string(ControlFile(ubuntuConfig(), 42)))

	require.Equal(t, "i386", Architecture("x86"))
	require.Equal(t, "ia64", Architecture("ia64"))
}

// TestRender writes metadata, fixes ownership of packaged objects only and names the package.
func TestRender(t *testing.T) {
	t.Parallel()

	r, fs, runner := newRenderer(t, sampleObjects())

	artifact, err := r.Render(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/target/scx-1.2.3-4.ubuntu.8.x64.deb", artifact)

	require.Equal(t, []string{
		"sudo chown root:root /stage/etc/scx",
		"sudo chmod 755 /stage/etc/scx",
		"sudo chown root:root /stage/etc/scx/scxlog.conf",
		"sudo chmod 644 /stage/etc/scx/scxlog.conf",
		"sudo chown root:root /stage/etc/scx/installinfo.txt",
		"sudo chmod 644 /stage/etc/scx/installinfo.txt",
		"sudo chown -h root:root /stage/etc/scx/current",
		"dpkg -b /stage scx-1.2.3-4.ubuntu.8.x64.deb",
		"sudo chown -R builder:admin /stage",
	}, runner.Lines())
	require.Equal(t, "/target", runner.Commands()[7].Dir)

	conffiles, err := fs.ReadFile("/stage/DEBIAN/conffiles")
	require.NoError(t, err)
	require.Equal(t, "/etc/scx/scxlog.conf\n", string(conffiles))

	control, err := fs.ReadFile("/stage/DEBIAN/control")
	require.NoError(t, err)
	require.Contains(t, string(control), "Architecture: amd64\n")

	for _, name := range []string{"preinst", "postinst", "prerm", "postrm"} {
		exists, err := fs.Exists("/stage/DEBIAN/" + name)
		require.NoError(t, err)
		require.True(t, exists, name)
	}
}

// TestInstalledSizeMatchesDiskUsage reports the tree size measured at render time.
func TestInstalledSizeMatchesDiskUsage(t *testing.T) {
	t.Parallel()

	r, fs, _ := newRenderer(t, sampleObjects())
	ctx := context.Background()

	require.NoError(t, r.GenerateScripts(ctx))

	size, err := fs.DiskUsageKB("/stage")
	require.NoError(t, err)
	require.Positive(t, size)

	require.NoError(t, r.GenerateControlMetadata(ctx))

	control, err := fs.ReadFile("/stage/DEBIAN/control")
	require.NoError(t, err)
	require.Contains(t, string(control), fmt.Sprintf("\nInstalled-Size: %d\n", size))
}

// TestFixOwnershipUnknownKind stops on kinds outside the recognized set.
func TestFixOwnershipUnknownKind(t *testing.T) {
	t.Parallel()

	objects := sampleObjects()
	objects = append(objects, staging.Object{Path: "etc/scx/odd", Kind: staging.Kind(99), Owner: "root", Group: "root"})

	r, _, _ := newRenderer(t, objects)
	require.ErrorIs(t, r.FixOwnership(context.Background()), staging.ErrUnknownKind)
}

// TestBuildPackageFailure still restores staging ownership when dpkg fails.
func TestBuildPackageFailure(t *testing.T) {
	t.Parallel()

	r, _, runner := newRenderer(t, sampleObjects())
	runner.Fail = map[string]error{"dpkg": errors.New("exit status 2")}

	_, err := r.BuildPackage(context.Background())
	require.ErrorIs(t, err, process.ErrCommandFailed)

	lines := runner.Lines()
	require.Equal(t, "sudo chown -R builder:admin /stage", lines[len(lines)-1])
}

// TestRenderRestoresOwnershipOnFailure hands the tree back when ownership fix-up fails midway.
func TestRenderRestoresOwnershipOnFailure(t *testing.T) {
	t.Parallel()

	errDenied := errors.New("operation not permitted")

	r, _, runner := newRenderer(t, sampleObjects())

	chmods := 0
	runner.Hook = func(cmd process.Command) error {
		if cmd.Name == "sudo" && len(cmd.Args) > 0 && cmd.Args[0] == "chmod" {
			chmods++
			if chmods == 2 {
				return errDenied
			}
		}

		return nil
	}

	artifact, err := r.Render(context.Background())
	require.ErrorIs(t, err, errDenied)
	require.Empty(t, artifact)

	lines := runner.Lines()
	require.Equal(t, "sudo chown -R builder:admin /stage", lines[len(lines)-1])

	for _, line := range lines {
		require.NotContains(t, line, "dpkg")
	}
}

// TestScripts keeps preinst and postrm as placeholders and ends every script with exit 0.
func TestScripts(t *testing.T) {
	t.Parallel()

	cfg := ubuntuConfig()

	profile, err := platform.Lookup(cfg.Platform, cfg.Distro, cfg.Major, cfg.Minor)
	require.NoError(t, err)

	scripts := Scripts(script.NewFragments(cfg, profile))
	require.Equal(t, "#!/bin/sh\n\nexit 0\n", string(scripts["preinst"].Bytes()))
	require.Equal(t, "#!/bin/sh\n\nexit 0\n", string(scripts["postrm"].Bytes()))

	postinst := string(scripts["postinst"].Bytes())
	require.True(t, strings.HasSuffix(postinst, "register_ext_providers\nexit 0\n"))
	require.Contains(t, postinst, "update-rc.d scx-cimd defaults")
	require.Less(t, strings.Index(postinst, "\nconfigure_pam\n"), strings.Index(postinst, "\nstart_pegasus_service\n"))

	prerm := string(scripts["prerm"].Bytes())
	require.True(t, strings.HasSuffix(prerm, "delete_sudo_link\nexit 0\n"))
	require.Contains(t, prerm, "update-rc.d -f scx-cimd remove")
}
