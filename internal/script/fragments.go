package script

import (
	"path"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/platform"
)

// Service names managed by the lifecycle scripts.
const (
	CIMService   = "scx-cimd"
	WSManService = "scx-wsmand"
)

// Fragments builds the lifecycle fragments for one configuration and platform.
type Fragments struct {
	optDir  string
	etcDir  string
	varDir  string
	initDir string
	release string
	profile *platform.Profile
}

// NewFragments resolves the installed product locations of cfg on profile.
func NewFragments(cfg *config.Config, profile *platform.Profile) *Fragments {
	return &Fragments{
		optDir:  "/" + path.Join(profile.OptRoot, "microsoft/scx"),
		etcDir:  "/" + path.Join(profile.EtcRoot, "opt/microsoft/scx"),
		varDir:  "/" + path.Join(profile.VarRoot, "opt/microsoft/scx"),
		initDir: "/" + path.Join(profile.EtcRoot, "init.d"),
		release: cfg.Version + "-" + cfg.Release,
		profile: profile,
	}
}

func (f *Fragments) tool(name string) string {
	return f.optDir + "/bin/tools/" + name
}

func (f *Fragments) initScript(service string) string {
	return f.initDir + "/" + service
}

// CreateSoftLinkToSudo links the sudo directory into the configuration tree.
func (f *Fragments) CreateSoftLinkToSudo() Fragment {
	return Fragment{Name: "create_sudo_link", Body: []string{
		"SUDO_PATH=`which sudo 2>/dev/null`",
		`if [ -z "$SUDO_PATH" ]; then`,
		"    SUDO_PATH=/usr/bin/sudo",
		"fi",
		"rm -f " + f.etcDir + "/conf/sudodir",
		"ln -s `dirname $SUDO_PATH` " + f.etcDir + "/conf/sudodir",
	}}
}

// DeleteSoftLinkToSudo removes the sudo link.
func (f *Fragments) DeleteSoftLinkToSudo() Fragment {
	return Fragment{Name: "delete_sudo_link", Body: []string{
		"rm -f " + f.etcDir + "/conf/sudodir",
	}}
}

// WriteInstallInfo records install time and version.
func (f *Fragments) WriteInstallInfo() Fragment {
	info := f.etcDir + "/conf/installinfo.txt"

	return Fragment{Name: "write_install_info", Body: []string{
		"date +%Y-%m-%dT%T.0Z > " + info,
		"echo " + f.release + " >> " + info,
	}}
}

// GenerateCertificate creates the host certificate unless one exists.
func (f *Fragments) GenerateCertificate() Fragment {
	ssl := f.etcDir + "/ssl"

	return Fragment{Name: "generate_certificate", Body: []string{
		"if [ ! -f " + ssl + "/scx-host-`hostname`.pem ]; then",
		"    " + f.tool("scxsslconfig"),
		"fi",
		"rm -f " + ssl + "/scx.pem",
		"ln -s " + ssl + "/scx-host-`hostname`.pem " + ssl + "/scx.pem",
	}}
}

// ConfigurePAM adds the PAM service used for client authentication.
func (f *Fragments) ConfigurePAM() Fragment {
	return Fragment{Name: "configure_pam", Body: []string{
		"if [ -d /etc/pam.d ] && [ ! -f /etc/pam.d/scx ]; then",
		`    echo "auth       include      sshd" > /etc/pam.d/scx`,
		`    echo "account    include      sshd" >> /etc/pam.d/scx`,
		"fi",
	}}
}

// UnconfigurePAM removes the PAM service.
func (f *Fragments) UnconfigurePAM() Fragment {
	return Fragment{Name: "unconfigure_pam", Body: []string{
		"rm -f /etc/pam.d/scx",
	}}
}

// ConfigureRunas writes the default run-as configuration when it is still empty.
func (f *Fragments) ConfigureRunas() Fragment {
	conf := f.etcDir + "/conf/scxrunas.conf"

	return Fragment{Name: "configure_runas", Body: []string{
		"if [ ! -s " + conf + " ]; then",
		"    echo AllowRoot=true > " + conf,
		"    echo ChRootPath=/ >> " + conf,
		"fi",
	}}
}

// ConfigurePegasusService registers the CIM server init script.
func (f *Fragments) ConfigurePegasusService() Fragment {
	return Fragment{Name: "configure_pegasus_service", Body: []string{
		f.tool("scxcimconfig") + " -s enableHttpsConnection=true -p",
		f.tool("scxcimconfig") + " -s enableHttpConnection=false -p",
		orTrue(platform.ServiceCommand(f.profile.ServiceAdd, CIMService)),
	}}
}

// StartPegasusService starts the CIM server.
func (f *Fragments) StartPegasusService() Fragment {
	return Fragment{Name: "start_pegasus_service", Body: []string{
		f.initScript(CIMService) + " start",
	}}
}

// StopPegasusService stops the CIM server if it is installed.
func (f *Fragments) StopPegasusService() Fragment {
	return f.stopService("stop_pegasus_service", CIMService)
}

// RemovePegasusService unregisters the CIM server init script.
func (f *Fragments) RemovePegasusService() Fragment {
	return Fragment{Name: "remove_pegasus_service", Body: []string{
		orTrue(platform.ServiceCommand(f.profile.ServiceRemove, CIMService)),
	}}
}

// StopWSManService stops the WS-Management server left by earlier versions.
func (f *Fragments) StopWSManService() Fragment {
	return f.stopService("stop_wsman_service", WSManService)
}

// RemoveWSManService unregisters and deletes the WS-Management init script.
func (f *Fragments) RemoveWSManService() Fragment {
	script := f.initScript(WSManService)

	return Fragment{Name: "remove_wsman_service", Body: []string{
		"if [ -f " + script + " ]; then",
		"    " + orTrue(platform.ServiceCommand(f.profile.ServiceRemove, WSManService)),
		"    rm -f " + script,
		"fi",
	}}
}

// RegisterExtProviders compiles the MOF files of extension providers.
func (f *Fragments) RegisterExtProviders() Fragment {
	return Fragment{Name: "register_ext_providers", Body: []string{
		"for mof in " + f.optDir + "/lib/providers/ext/*.mof; do",
		`    [ -f "$mof" ] || continue`,
		"    " + f.tool("scxcimmofl") + ` -n root/scx "$mof"`,
		"done",
	}}
}

// RemoveAdditionalFiles deletes files the agent created at runtime.
func (f *Fragments) RemoveAdditionalFiles() Fragment {
	return Fragment{Name: "remove_additional_files", Body: []string{
		"rm -f " + f.etcDir + "/ssl/scx.pem " + f.etcDir + "/ssl/scx-host-*.pem " + f.etcDir + "/ssl/scx-key.pem",
		"rm -rf " + f.varDir + "/lib/state/*",
		"rm -rf " + f.varDir + "/tmp/*",
		"rm -f " + f.varDir + "/log/*.log",
	}}
}

func (f *Fragments) stopService(name, service string) Fragment {
	script := f.initScript(service)

	return Fragment{Name: name, Body: []string{
		"if [ -f " + script + " ]; then",
		"    " + script + " stop",
		"fi",
	}}
}

// orTrue keeps function bodies non-empty on platforms without the command.
func orTrue(command string) string {
	if command == "" {
		return ":"
	}

	return command
}
