package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/scx-installer/internal/repository/receipt"
)

const manifestConfig = `pf = "Linux"
pfdistro = "REDHAT"
pfmajor = 6
pfminor = 0
pfarch = "x64"
bt = "Release"
short_name = "scx"
long_name = "Microsoft System Center Cross Platform"
version = "1.2.3"
release = "4"
vendor = "Microsoft"
license = "none"
description = "Provides server for Microsoft System Center."
use_sudo = false

[paths]
src_dir = "%[1]s/source"
target_dir = "%[1]s/target"
installer_dir = "%[1]s/installer"
intermediate_dir = "%[1]s/intermediate"
staging_dir = "%[1]s/staging"
`

// execute runs the root command with args and returns its output.
// The commands are package globals, so tests using it do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	return out.String(), err
}

// TestManifestCommand lists the staging manifest of a TOML configuration.
func TestManifestCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "intermediate", "pegasus", "repository", "root#scx"), 0o755))

	path := filepath.Join(dir, "scx-installer.toml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(manifestConfig, dir)), 0o600))

	out, err := execute(t, "manifest", "--config", path, "--no-color", "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, out, "/var/opt/microsoft/scx/lib/repository/root#scx\n")
	require.Contains(t, out, "/etc/opt/microsoft/scx/conf/installinfo.txt\n")
	require.NoDirExists(t, filepath.Join(dir, "staging"))
}

// TestUnknownLogLevel rejects a log level the logger does not know.
func TestUnknownLogLevel(t *testing.T) {
	_, err := execute(t, "manifest", "--log-level", "loud")
	require.ErrorIs(t, err, errUnknownLogLevel)
}

// TestReceiptCommand prints the receipt stored in the target directory.
func TestReceiptCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))

	path := filepath.Join(dir, "scx-installer.toml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(manifestConfig, dir)), 0o600))

	_, err := execute(t, "receipt", "--config", path, "--log-level", "error")
	require.ErrorIs(t, err, receipt.ErrNotFound)

	doc := `{"format": "rpm", "artifact": "/target/scx-1.2.3-4.rhel.6.x64.rpm", "version": "1.2.3", "release": "4", "objects": 3}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target", receipt.Filename), []byte(doc), 0o600))

	out, err := execute(t, "receipt", "--config", path, "--no-color", "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, out, "format:   rpm\n")
	require.Contains(t, out, "artifact: /target/scx-1.2.3-4.rhel.6.x64.rpm\n")
	require.Contains(t, out, "objects:  3\n")
}
