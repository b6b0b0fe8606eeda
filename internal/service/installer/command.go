package installer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/domain/build"
	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/manifest"
	"github.com/oshokin/scx-installer/internal/materializer"
	"github.com/oshokin/scx-installer/internal/platform"
	"github.com/oshokin/scx-installer/internal/process"
	"github.com/oshokin/scx-installer/internal/render/deb"
	"github.com/oshokin/scx-installer/internal/render/rpm"
	"github.com/oshokin/scx-installer/internal/repository/receipt"
	"github.com/oshokin/scx-installer/internal/service/common"
	"github.com/oshokin/scx-installer/internal/version"
)

// Options contains inputs for the installer entry points.
type Options struct {
	// ConfigPath is the YAML or TOML configuration file (defaults to scx-installer.yaml).
	ConfigPath string
	// NoColor disables colored output of the manifest listing.
	NoColor bool
}

// ErrNoRenderer is returned for platforms whose profile names no package format.
var ErrNoRenderer = errors.New("no package renderer for platform")

// installer runs one packaging pass. It is unexported: callers use Run,
// which loads the configuration and wires the real filesystem and tools.
type installer struct {
	cfg      *config.Config
	profile  *platform.Profile
	fs       *fsutil.FS
	runner   process.Runner
	receipts receipt.Repository
	actor    *build.Actor
	// home and processes override the RPM renderer's home lookup and process table.
	home      func() (string, error)
	processes process.Lister
	now       func() time.Time
}

// Run executes the packaging workflow: manifest, staging, rendering and receipt.
// Configuration and platform errors are reported before anything is written.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "scx-installer")

	cfg, profile, err := load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if profile.Format == platform.FormatNone {
		return fmt.Errorf("%s: %w", describe(cfg), ErrNoRenderer)
	}

	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	fs := fsutil.NewOS(cfg.SudoEnabled())
	inst := &installer{
		cfg:      cfg,
		profile:  profile,
		fs:       fs,
		runner:   process.ExecRunner{},
		receipts: receipt.NewFileRepository(fs, cfg.Paths.TargetDir),
		actor:    actor,
		now:      time.Now,
	}

	artifact, err := inst.run(ctx)
	if err != nil {
		return fmt.Errorf("installer failed: %w", err)
	}

	logger.InfoKV(ctx, "Installer completed successfully", "artifact", artifact)

	return nil
}

// load reads the configuration and resolves the platform profile.
func load(path string) (*config.Config, *platform.Profile, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	profile, err := platform.Lookup(cfg.Platform, cfg.Distro, cfg.Major, cfg.Minor)
	if err != nil {
		return nil, nil, err
	}

	return cfg, profile, nil
}

// describe renders the target platform for logs and receipts.
func describe(cfg *config.Config) string {
	if cfg.Distro == "" {
		return fmt.Sprintf("%s %d.%d %s", cfg.Platform, cfg.Major, cfg.Minor, cfg.Arch)
	}

	return fmt.Sprintf("%s %s %d.%d %s", cfg.Platform, cfg.Distro, cfg.Major, cfg.Minor, cfg.Arch)
}

// run stages the tree, renders the package and records the receipt.
func (i *installer) run(ctx context.Context) (string, error) {
	logger.InfoKV(ctx, "Building staging manifest", "platform", describe(i.cfg))

	objects, err := manifest.Build(i.cfg, i.profile, i.fs.Afero())
	if err != nil {
		return "", err
	}

	tree, err := staging.Bind(objects, manifest.Roots(i.cfg), i.cfg.Paths.StagingDir)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Materializing staging tree", "root", tree.Root, "objects", len(tree.Entries))

	if err = materializer.New(i.fs).Materialize(ctx, tree); err != nil {
		return "", fmt.Errorf("materialize: %w", err)
	}

	artifact, err := i.render(ctx, tree)
	if err != nil {
		return "", err
	}

	err = i.receipts.Save(ctx, &build.Receipt{
		Format:      i.profile.Format,
		Artifact:    artifact,
		Version:     i.cfg.Version,
		Release:     i.cfg.Release,
		Platform:    describe(i.cfg),
		Objects:     len(tree.Entries),
		ToolVersion: version.Short(),
		Timestamp:   i.now().UTC(),
		Actor:       i.actor.Clone(),
	})
	if err != nil {
		return "", fmt.Errorf("save receipt: %w", err)
	}

	return artifact, nil
}

// render dispatches to the renderer of the profile's package format.
func (i *installer) render(ctx context.Context, tree *staging.Tree) (string, error) {
	switch i.profile.Format {
	case platform.FormatDEB:
		return deb.New(deb.Options{
			Config:  i.cfg,
			Profile: i.profile,
			Tree:    tree,
			FS:      i.fs,
			Runner:  i.runner,
			Owner:   i.actor.Username,
			Group:   i.actor.Group,
		}).Render(ctx)
	case platform.FormatRPM:
		return rpm.New(rpm.Options{
			Config:    i.cfg,
			Profile:   i.profile,
			Tree:      tree,
			FS:        i.fs,
			Runner:    i.runner,
			Home:      i.home,
			Processes: i.processes,
		}).Render(ctx)
	default:
		return "", fmt.Errorf("%s: %w", describe(i.cfg), ErrNoRenderer)
	}
}
