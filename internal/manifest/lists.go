package manifest

import "os"

const (
	owner = "root"

	// coverageToken is the placeholder replaced in templated startup scripts.
	coverageToken = "#TEMPLATE_CODEVOV_ENV#"
	// coverageFile is the installed location of the coverage data file.
	coverageFile = "/var/opt/microsoft/scx/log/OpsMgr.cov"
)

// toolFile is a file whose destination is relative to the product tree under the opt root.
type toolFile struct {
	path   string
	source string
	mode   os.FileMode
}

// library is a versioned shared library staged as a file plus an unversioned link.
type library struct {
	name     string
	provider bool
}

//nolint:gochecknoglobals // Static package contents.
var (
	// optDirs, etcDirs and varDirs are created below their roots after the bin directory.
	optDirs = []string{
		"microsoft/scx/bin/tools",
		"microsoft/scx/lib",
		"microsoft/scx/lib/providers",
		"microsoft/scx/lib/providers/ext",
	}
	etcDirs = []string{
		"opt/microsoft",
		"opt/microsoft/scx",
		"opt/microsoft/scx/conf",
		"opt/microsoft/scx/ssl",
	}
	varDirs = []string{
		"opt/microsoft",
		"opt/microsoft/scx",
		"opt/microsoft/scx/log",
		"opt/microsoft/scx/lib",
		"opt/microsoft/scx/lib/state",
		"opt/microsoft/scx/tmp",
		"opt/microsoft/scx/tmp/localauth",
	}

	// generatedFiles come from the intermediate tree.
	generatedFiles = []toolFile{
		{path: "microsoft/scx/bin/setup.sh", source: "scx_setup.sh", mode: 0o644},
		{path: "microsoft/scx/bin/tools/setup.sh", source: "scx_setup_tools.sh", mode: 0o644},
		{path: "microsoft/scx/bin/tools/scxadmin", source: "scxadmin.sh", mode: 0o755},
		{path: "microsoft/scx/bin/tools/scxsslconfig", source: "scxsslconfig.sh", mode: 0o755},
	}

	// serverBinaries come from the CIM server build output.
	serverBinaries = []toolFile{
		{path: "microsoft/scx/bin/scxcimprovider", source: "bin/cimprovider", mode: 0o755},
		{path: "microsoft/scx/bin/scxcimprovagt", source: "bin/cimprovagt", mode: 0o755},
		{path: "microsoft/scx/bin/scxcimservera", source: "bin/cimservera", mode: 0o755},
		{path: "microsoft/scx/bin/scxcimserver", source: "bin/cimserver", mode: 0o755},
		{path: "microsoft/scx/bin/tools/scxcimmof", source: "bin/cimmof", mode: 0o744},
		{path: "microsoft/scx/bin/tools/scxcimmofl", source: "bin/cimmofl", mode: 0o744},
		{path: "microsoft/scx/bin/tools/scxcimconfig", source: "bin/cimconfig", mode: 0o744},
		{path: "microsoft/scx/bin/tools/scxwbemexec", source: "bin/wbemexec", mode: 0o744},
		{path: "microsoft/scx/bin/tools/scxcimcli", source: "bin/cimcli", mode: 0o744},
	}

	// serverLibraries are listed without suffix; the suffix pass completes them.
	serverLibraries = []library{
		{name: "CIMOMStatDataProvider", provider: true},
		{name: "CIMxmlIndicationHandler"},
		{name: "cmpiCppImpl"},
		{name: "cmpiCWS_Util"},
		{name: "CMPIProviderManager"},
		{name: "cmpiUtilLib"},
		{name: "ConfigSettingProvider", provider: true},
		{name: "CertificateProvider", provider: true},
		{name: "DefaultProviderManager"},
		{name: "InteropProvider", provider: true},
		{name: "NamespaceProvider", provider: true},
		{name: "pegauthentication"},
		{name: "pegclient"},
		{name: "pegcliutils"},
		{name: "pegcommon"},
		{name: "pegconfig"},
		{name: "pegwsmserver"},
		{name: "pegexportclient"},
		{name: "pegexportserver"},
		{name: "peggetoopt"},
		{name: "peghandlerservice"},
		{name: "pegindicationservice"},
		{name: "pegpmservice"},
		{name: "pegprm"},
		{name: "pegprovidermanager"},
		{name: "pegprovider", provider: true},
		{name: "pegquerycommon"},
		{name: "pegqueryexpression"},
		{name: "pegrepository"},
		{name: "pegserver"},
		{name: "pegservice"},
		{name: "peguser"},
		{name: "pegwql"},
		{name: "ProviderRegistrationProvider", provider: true},
		{name: "UserAuthProvider", provider: true},
		{name: "pegcompiler"},
	}

	// repositoryPlaceholders are written by the CIM server at runtime.
	repositoryPlaceholders = []string{
		"root#scx/classes/PG_ElementConformsToProfile.CIM_ElementConformsToProfile",
		"root#scx/classes/PG_RegisteredProfile.CIM_RegisteredProfile",
		"root#PG_InterOp/instances/associations",
		"root#PG_InterOp/instances/PG_ObjectManager.instances",
		"root#PG_InterOp/instances/PG_ObjectManager.idx",
	}

	// Conffiles keep user edits across upgrades; installinfo.txt is rewritten on install.
	conffiles = []string{
		"cimserver_planned.conf",
		"cimserver_current.conf",
		"scxlog.conf",
		"scxrunas.conf",
	}
)
