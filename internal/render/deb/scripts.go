package deb

import (
	"context"
	"path/filepath"

	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/script"
)

// GenerateScripts writes the maintainer scripts into the control directory.
// dpkg passes "configure" to postinst and "remove" or "upgrade" to prerm, so only those
// two carry logic; preinst and postrm only exit successfully.
func (r *Renderer) GenerateScripts(ctx context.Context) error {
	if err := r.opts.FS.MkDir(r.controlDir, script.Mode); err != nil {
		return err
	}

	scripts := Scripts(script.NewFragments(r.opts.Config, r.opts.Profile))

	for _, name := range []string{"preinst", "postinst", "prerm", "postrm"} {
		if err := scripts[name].Generate(r.opts.FS, filepath.Join(r.controlDir, name)); err != nil {
			return err
		}
	}

	logger.DebugKV(ctx, "Maintainer scripts written", "dir", r.controlDir)

	return nil
}

// Scripts returns the maintainer scripts keyed by their control file name.
func Scripts(f *script.Fragments) map[string]*script.Script {
	postInstall := script.New().
		Call(f.CreateSoftLinkToSudo()).
		Call(f.WriteInstallInfo()).
		Call(f.GenerateCertificate()).
		Call(f.ConfigurePAM()).
		Call(f.ConfigureRunas()).
		Call(f.ConfigurePegasusService()).
		Call(f.StartPegasusService()).
		Call(f.RegisterExtProviders()).
		WriteLn("exit 0")

	preUninstall := script.New().
		Call(f.StopPegasusService()).
		Call(f.RemovePegasusService()).
		Call(f.UnconfigurePAM()).
		Call(f.RemoveAdditionalFiles()).
		Call(f.DeleteSoftLinkToSudo()).
		WriteLn("exit 0")

	return map[string]*script.Script{
		"preinst":  script.New().WriteLn("exit 0"),
		"postinst": postInstall,
		"prerm":    preUninstall,
		"postrm":   script.New().WriteLn("exit 0"),
	}
}
