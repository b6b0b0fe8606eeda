package rpm

import (
	"context"

	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/script"
)

// GenerateScripts writes the install and uninstall scripts into the temporary directory.
//
// rpm passes the number of installed instances after the operation as $1: pre-install
// sees 2 on upgrade, post-install 1 on a fresh install, pre-uninstall 0 on a clean removal.
func (r *Renderer) GenerateScripts(ctx context.Context) error {
	scripts := Scripts(script.NewFragments(r.opts.Config, r.opts.Profile))

	for _, s := range []struct {
		path   string
		script *script.Script
	}{
		{r.preInstallPath, scripts.PreInstall},
		{r.postInstallPath, scripts.PostInstall},
		{r.preUninstallPath, scripts.PreUninstall},
	} {
		if err := s.script.Generate(r.opts.FS, s.path); err != nil {
			return err
		}
	}

	logger.DebugKV(ctx, "Install scripts written", "dir", r.opts.Config.Paths.TempDir)

	return nil
}

// LifecycleScripts are the scripts embedded in the spec file.
type LifecycleScripts struct {
	PreInstall   *script.Script
	PostInstall  *script.Script
	PreUninstall *script.Script
}

// Scripts composes the lifecycle scripts from f.
func Scripts(f *script.Fragments) LifecycleScripts {
	preInstall := script.New().
		WriteLn("if [ $1 -eq 2 ]; then").
		Call(f.StopWSManService()).
		Call(f.StopPegasusService()).
		Call(f.RemoveWSManService()).
		Call(f.RemovePegasusService()).
		WriteLn("fi").
		WriteLn("exit 0")

	postInstall := script.New().
		WriteLn("set -e").
		Call(f.CreateSoftLinkToSudo()).
		Call(f.WriteInstallInfo()).
		Call(f.GenerateCertificate()).
		WriteLn("set +e").
		WriteLn("if [ $1 -eq 1 ]; then").
		Call(f.ConfigurePAM()).
		Call(f.ConfigureRunas()).
		WriteLn("fi").
		WriteLn("set -e").
		Call(f.ConfigurePegasusService()).
		Call(f.StartPegasusService()).
		WriteLn("set +e").
		Call(f.RegisterExtProviders()).
		WriteLn("exit 0")

	preUninstall := script.New().
		WriteLn("if [ $1 -eq 0 ]; then").
		Call(f.StopPegasusService()).
		Call(f.RemovePegasusService()).
		Call(f.UnconfigurePAM()).
		Call(f.RemoveAdditionalFiles()).
		Call(f.DeleteSoftLinkToSudo()).
		WriteLn("fi").
		WriteLn("exit 0")

	return LifecycleScripts{
		PreInstall:   preInstall,
		PostInstall:  postInstall,
		PreUninstall: preUninstall,
	}
}
