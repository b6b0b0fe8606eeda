package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/platform"
)

// repositorySource is the repository tree relative to the CIM server build output.
const repositorySource = "repository"

// Roots returns the source root bindings of cfg.
func Roots(cfg *config.Config) staging.Roots {
	return staging.Roots{
		staging.RootSource:       cfg.Paths.SourceDir,
		staging.RootTarget:       cfg.Paths.TargetDir,
		staging.RootInstaller:    cfg.Paths.InstallerDir,
		staging.RootIntermediate: cfg.Paths.IntermediateDir,
		staging.RootPegasus:      filepath.Join(cfg.Paths.IntermediateDir, "pegasus"),
	}
}

// builder holds the per-run inputs while the object list is assembled.
type builder struct {
	cfg     *config.Config
	profile *platform.Profile
	group   string
}

// Build returns the ordered staging object list for cfg on the platform described by profile.
// The repository directory is read from fs to expand its copy.
func Build(cfg *config.Config, profile *platform.Profile, fs afero.Fs) ([]staging.Object, error) {
	b := &builder{
		cfg:     cfg,
		profile: profile,
		group:   profile.RootGroup,
	}

	repoDirs, repoFiles, err := ExpandDirectory(fs, ExpandRequest{
		SourceDir:  filepath.Join(Roots(cfg)[staging.RootPegasus], repositorySource),
		Dest:       b.repositoryDir(),
		Source:     repositorySource,
		SourceRoot: staging.RootPegasus,
		Mode:       0o755,
		Owner:      owner,
		Group:      b.group,
	})
	if err != nil {
		return nil, fmt.Errorf("expand repository: %w", err)
	}

	objects := b.directories()
	objects = append(objects, staging.NewDir(b.repositoryDir(), 0o755, owner, b.group))
	objects = append(objects, repoDirs...)
	objects = append(objects, b.placeholderDirs(repoDirs)...)
	objects = append(objects, b.startupFiles()...)
	objects = append(objects, b.configFiles()...)
	objects = append(objects, b.generatedFiles()...)
	objects = append(objects, b.serverBinaries()...)
	objects = append(objects, b.serverLibraries()...)
	objects = append(objects, repoFiles...)
	objects = append(objects, b.repositoryPlaceholders()...)
	objects = append(objects, b.coreFiles()...)

	if err = staging.Verify(objects); err != nil {
		return nil, fmt.Errorf("verify manifest: %w", err)
	}

	return objects, nil
}

func (b *builder) opt(rel string) string {
	return path.Join(b.profile.OptRoot, rel)
}

func (b *builder) etc(rel string) string {
	return path.Join(b.profile.EtcRoot, rel)
}

func (b *builder) varDir(rel string) string {
	return path.Join(b.profile.VarRoot, rel)
}

func (b *builder) repositoryDir() string {
	return b.varDir("opt/microsoft/scx/lib/repository")
}

func (b *builder) groupOr(group string) string {
	if group == "" {
		return b.group
	}

	return group
}

// directories returns the base directory set followed by the platform directories.
func (b *builder) directories() []staging.Object {
	p := b.profile
	dirs := []staging.Object{staging.NewSysDir("", 0o700, owner, b.group)}

	if p.PrivateRoot {
		dirs = append(dirs, staging.NewSysDir("private", 0o755, owner, b.group))
	}

	for _, sys := range []string{"usr", "usr/sbin", p.OptRoot, p.EtcRoot, b.etc("opt"), p.VarRoot, b.varDir("opt")} {
		dirs = append(dirs, staging.NewSysDir(sys, 0o755, owner, b.group))
	}

	for _, rel := range []string{"microsoft", "microsoft/scx", "microsoft/scx/bin"} {
		dirs = append(dirs, staging.NewDir(b.opt(rel), 0o755, owner, b.group))
	}

	// Filled in after staging, so it is declared early and removed late.
	if p.UninstallScript {
		dirs = append(dirs, staging.NewEmptyFile(b.opt("microsoft/scx/bin/scxUninstall.sh"), 0o744, owner, b.group))
	}

	for _, rel := range optDirs {
		dirs = append(dirs, staging.NewDir(b.opt(rel), 0o755, owner, b.group))
	}

	for _, rel := range etcDirs {
		dirs = append(dirs, staging.NewDir(b.etc(rel), 0o755, owner, b.group))
	}

	for _, rel := range varDirs {
		dirs = append(dirs, staging.NewDir(b.varDir(rel), 0o755, owner, b.group))
	}

	if p.InitDir {
		dirs = append(dirs, staging.NewSysDir(b.etc("init.d"), 0o755, owner, "sys"))
	}

	for _, d := range p.Dirs {
		if d.System {
			dirs = append(dirs, staging.NewSysDir(d.Path, d.Mode, owner, b.groupOr(d.Group)))
		} else {
			dirs = append(dirs, staging.NewDir(d.Path, d.Mode, owner, b.groupOr(d.Group)))
		}
	}

	return dirs
}

// coverageRule fills the coverage placeholder of templated scripts.
func (b *builder) coverageRule() staging.Rule {
	if !b.cfg.Coverage() {
		return staging.Rule{Token: coverageToken}
	}

	return staging.Rule{
		Token: coverageToken,
		Lines: []string{"COVFILE=" + coverageFile, "export COVFILE"},
	}
}

// startupFiles returns the single service-startup artifact set of the platform.
func (b *builder) startupFiles() []staging.Object {
	startup := b.profile.Startup
	if startup == nil {
		return nil
	}

	var (
		script  = startup.Script
		group   = b.groupOr(script.Group)
		objects []staging.Object
	)

	if startup.Templated {
		objects = append(objects, staging.NewTemplate(script.Path, script.Source, staging.RootInstaller,
			script.Mode, owner, group, b.coverageRule()))
	} else {
		objects = append(objects, staging.NewFile(script.Path, script.Source, staging.RootInstaller,
			script.Mode, owner, group))
	}

	for _, link := range startup.Links {
		objects = append(objects, staging.NewLink(link.Path, link.Target, 0o744, owner, b.group))
	}

	if m := startup.Manifest; m != nil {
		objects = append(objects, staging.NewFile(m.Path, m.Source, staging.RootInstaller,
			m.Mode, owner, b.groupOr(m.Group)))
	}

	return objects
}

// configFiles returns the empty configuration placeholders.
func (b *builder) configFiles() []staging.Object {
	conf := b.etc("opt/microsoft/scx/conf")
	objects := []staging.Object{staging.NewEmptyFile(path.Join(conf, "installinfo.txt"), 0o644, owner, b.group)}

	for _, name := range conffiles {
		objects = append(objects, staging.NewConffile(path.Join(conf, name), 0o644, owner, b.group))
	}

	return objects
}

// generatedFiles returns setup and wrapper scripts plus the admin link and coverage data.
func (b *builder) generatedFiles() []staging.Object {
	objects := make([]staging.Object, 0, len(generatedFiles)+2)

	for _, f := range generatedFiles {
		objects = append(objects, staging.NewFile(b.opt(f.path), f.source, staging.RootIntermediate,
			f.mode, owner, b.group))
	}

	if b.profile.AdminLink {
		target := "../../" + b.opt("microsoft/scx/bin/tools/scxadmin")
		objects = append(objects, staging.NewLink("usr/sbin/scxadmin", target, 0o755, owner, b.group))
	}

	if b.cfg.Coverage() {
		objects = append(objects, staging.NewFile(b.varDir("opt/microsoft/scx/log/OpsMgr.cov"), "OpsMgr.cov",
			staging.RootIntermediate, 0o777, owner, b.group))
	}

	return objects
}

func (b *builder) serverBinaries() []staging.Object {
	objects := make([]staging.Object, 0, len(serverBinaries))

	for _, f := range serverBinaries {
		objects = append(objects, staging.NewFile(b.opt(f.path), f.source, staging.RootPegasus,
			f.mode, owner, b.group))
	}

	return objects
}

// serverLibraries returns each library as a versioned file and an unversioned link,
// with the platform shared-library suffix applied.
func (b *builder) serverLibraries() []staging.Object {
	objects := make([]staging.Object, 0, 2*len(serverLibraries))

	for _, lib := range serverLibraries {
		dir := "microsoft/scx/lib"
		if lib.provider {
			dir += "/providers"
		}

		base := "lib" + lib.name + "."
		dest := b.opt(path.Join(dir, base))

		objects = append(objects,
			staging.NewFile(dest, "lib/"+base, staging.RootPegasus, 0o755, owner, b.group),
			staging.NewLink(dest, base, 0o755, owner, b.group),
		)
	}

	return ApplyLibrarySuffix(objects, b.profile, b.cfg.Arch)
}

// ApplyLibrarySuffix completes file and link names with the shared-library suffix of
// the platform. Files receive the versioned name, links the unversioned one pointing
// at the versioned file.
func ApplyLibrarySuffix(objects []staging.Object, profile *platform.Profile, arch string) []staging.Object {
	suffix := profile.SharedLibrarySuffix(arch)
	versioned := suffix + ".1"

	if profile.NumericLibVersion {
		versioned = "1"
	}

	out := make([]staging.Object, 0, len(objects))

	for _, obj := range objects {
		switch obj.Kind {
		case staging.KindFile:
			source := suffix
			if profile.NumericLibVersion {
				source = versioned
			}

			obj = obj.WithSuffix(versioned, source, "")
		case staging.KindLink:
			obj = obj.WithSuffix(suffix, "", versioned)
		default:
		}

		out = append(out, obj)
	}

	return out
}

// placeholderDirs declares the parents of the repository placeholders that
// the copied repository tree does not already provide.
func (b *builder) placeholderDirs(copied []staging.Object) []staging.Object {
	declared := make(map[string]bool, len(copied))
	for _, obj := range copied {
		declared[obj.Path] = true
	}

	var objects []staging.Object

	for _, rel := range repositoryPlaceholders {
		dir := b.repositoryDir()

		for _, part := range strings.Split(path.Dir(rel), "/") {
			dir = path.Join(dir, part)
			if declared[dir] {
				continue
			}

			declared[dir] = true
			objects = append(objects, staging.NewDir(dir, 0o755, owner, b.group))
		}
	}

	return objects
}

func (b *builder) repositoryPlaceholders() []staging.Object {
	objects := make([]staging.Object, 0, len(repositoryPlaceholders))

	for _, rel := range repositoryPlaceholders {
		objects = append(objects, staging.NewEmptyFile(path.Join(b.repositoryDir(), rel), 0o644, owner, b.group))
	}

	return objects
}

// coreFiles returns the product binaries taken from the final build output.
func (b *builder) coreFiles() []staging.Object {
	module := "libSCXCoreProviderModule." + b.profile.SharedLibrarySuffix(b.cfg.Arch)

	return []staging.Object{
		staging.NewFile(b.opt("microsoft/scx/lib/providers/"+module), module, staging.RootTarget, 0o755, owner, b.group),
		staging.NewFile(b.opt("microsoft/scx/bin/scxlogfilereader"), "scxlogfilereader",
			staging.RootTarget, 0o755, owner, b.group),
		staging.NewFile(b.opt("microsoft/scx/bin/tools/.scxsslconfig"), "scxsslconfig",
			staging.RootTarget, 0o755, owner, b.group),
		staging.NewFile(b.opt("microsoft/scx/bin/tools/.scxadmin"), "scxadmin",
			staging.RootTarget, 0o755, owner, b.group),
	}
}
