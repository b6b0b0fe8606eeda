package platform

// Script locations inside the installer directory.
const (
	initScriptPath = "etc/init.d/scx-cimd"
	initLinkTarget = "../init.d/scx-cimd"
)

func linuxProfile(format, tag, requires, scriptSource string, templated bool) *Profile {
	return &Profile{
		EtcRoot:   "etc",
		OptRoot:   "opt",
		VarRoot:   "var",
		RootGroup: "root",
		InitDir:   true,
		Startup: &Startup{
			Script:    File{Path: initScriptPath, Source: scriptSource, Mode: 0o744},
			Templated: templated,
		},
		AdminLink: true,
		LibSuffix: "so",
		Format:    format,
		Tag:       tag,
		Requires:  requires,
	}
}

func suseProfile(requires string) *Profile {
	p := linuxProfile(FormatRPM, "sles", requires, "conf/init.d/scx-cimd.sles", false)
	p.ServiceAdd = "/usr/lib/lsb/install_initd /etc/init.d/%s"
	p.ServiceRemove = "/usr/lib/lsb/remove_initd /etc/init.d/%s"

	return p
}

func redhatProfile(requires string) *Profile {
	p := linuxProfile(FormatRPM, "rhel", requires, "conf/init.d/scx-cimd.rhel", true)
	p.ServiceAdd = "/sbin/chkconfig --add %s"
	p.ServiceRemove = "/sbin/chkconfig --del %s"

	return p
}

func ubuntuProfile() *Profile {
	p := linuxProfile(FormatDEB, "ubuntu", "", "conf/init.d/scx-cimd.ubuntu", false)
	p.ServiceAdd = "update-rc.d %s defaults"
	p.ServiceRemove = "update-rc.d -f %s remove"

	return p
}

func solarisProfile(legacy bool) *Profile {
	p := &Profile{
		EtcRoot:   "etc",
		OptRoot:   "opt",
		VarRoot:   "var",
		RootGroup: "root",
		InitDir:   true,
		LibSuffix: "so",
		Tag:       "solaris",
	}

	if legacy {
		p.Dirs = []Dir{{Path: "etc/rc2.d", Mode: 0o755, Group: "bin", System: true}}
		p.Startup = &Startup{
			Script:    File{Path: initScriptPath, Source: "conf/init.d/scx-cimd.sun8", Mode: 0o744},
			Templated: true,
			Links:     []Link{{Path: "etc/rc2.d/S999scx-cimd", Target: initLinkTarget}},
		}
		p.AdminLink = true

		return p
	}

	p.Dirs = []Dir{
		{Path: "var/svc", Mode: 0o755, Group: "sys", System: true},
		{Path: "var/svc/manifest", Mode: 0o755, Group: "sys", System: true},
		{Path: "var/svc/manifest/application", Mode: 0o755, Group: "sys", System: true},
		{Path: "var/svc/manifest/application/management", Mode: 0o755, Group: "sys", System: true},
	}
	p.Startup = &Startup{
		Script: File{
			Path:   "opt/microsoft/scx/bin/tools/scx-cimd",
			Source: "conf/svc-method/scx-cimd",
			Mode:   0o555,
			Group:  "bin",
		},
		Templated: true,
		Manifest: &File{
			Path:   "var/svc/manifest/application/management/scx-cimd.xml",
			Source: "conf/svc-manifest/scx-cimd.xml",
			Mode:   0o444,
			Group:  "sys",
		},
	}

	return p
}

func hpuxProfile() *Profile {
	return &Profile{
		EtcRoot:   "etc",
		OptRoot:   "opt",
		VarRoot:   "var",
		RootGroup: "root",
		InitDir:   true,
		Dirs: []Dir{
			{Path: "var/log", Mode: 0o755, Group: "sys", System: true},
			{Path: "sbin", Mode: 0o755, Group: "bin", System: true},
			{Path: "sbin/init.d", Mode: 0o755, Group: "bin", System: true},
			{Path: "sbin/rc1.d", Mode: 0o755, Group: "bin", System: true},
			{Path: "sbin/rc2.d", Mode: 0o755, Group: "bin", System: true},
		},
		Startup: &Startup{
			Script: File{Path: "sbin/init.d/scx-cimd", Source: "conf/init.d/scx-cimd.hpux", Mode: 0o744},
			Links: []Link{
				{Path: "sbin/rc2.d/S999scx-cimd", Target: initLinkTarget},
				{Path: "sbin/rc1.d/K100scx-cimd", Target: initLinkTarget},
			},
		},
		AdminLink:         true,
		LibSuffix:         "so",
		ArchLibSuffix:     map[string]string{"pa-risc": "sl"},
		NumericLibVersion: true,
		Tag:               "hpux",
	}
}

func aixProfile() *Profile {
	return &Profile{
		EtcRoot:   "etc",
		OptRoot:   "opt",
		VarRoot:   "var",
		RootGroup: "system",
		InitDir:   true,
		// Only needed by the package format itself.
		Dirs: []Dir{
			{Path: "usr/lpp", Mode: 0o755, System: true},
			{Path: "usr/lpp/scx.rte", Mode: 0o755},
		},
		AdminLink: true,
		LibSuffix: "so",
		Tag:       "aix",
	}
}

func macProfile() *Profile {
	return &Profile{
		EtcRoot:     "private/etc",
		OptRoot:     "usr/libexec",
		VarRoot:     "private/var",
		RootGroup:   "wheel",
		PrivateRoot: true,
		Dirs: []Dir{
			{Path: "Library", Mode: 0o775, Group: "admin", System: true},
			{Path: "Library/LaunchDaemons", Mode: 0o755, System: true},
		},
		Startup: &Startup{
			Script: File{
				Path:   "Library/LaunchDaemons/com.microsoft.scx-cimd.plist",
				Source: "conf/launchd/com.microsoft.scx-cimd.plist",
				Mode:   0o644,
			},
		},
		UninstallScript: true,
		AdminLink:       true,
		LibSuffix:       "dylib",
		Tag:             "macos",
	}
}

//nolint:gochecknoglobals // Static lookup table; adding a platform is a row here.
var table = []entry{
	{platform: Linux, distro: SUSE, major: 11, profile: suseProfile(
		"glibc >= 2.9-7.18, openssl >= 0.9.8h-30.8, pam >= 1.0.2-17.2, insserv >= 1.12.0-25.1")},
	{platform: Linux, distro: SUSE, major: 10, profile: suseProfile(
		"glibc >= 2.4-31.30, openssl >= 0.9.8a-18.15, pam >= 0.99.6.3-28.8, insserv >= 1.04.0-20.13")},
	{platform: Linux, distro: SUSE, major: 9, profile: suseProfile(
		"glibc >= 2.3.3-98.28, libstdc++-41 >= 4.1.2, libgcc-41 >= 4.1.2, openssl >= 0.9.7d-15.10, " +
			"pam >= 0.77-221.1, insserv >= 1.00.2-85.1")},
	{platform: Linux, distro: RedHat, major: 6, profile: redhatProfile(
		"glibc >= 2.12-1.7, openssl >= 1.0.0-4, pam >= 1.1.1-4, redhat-lsb >= 4.0-2.1")},
	{platform: Linux, distro: RedHat, major: 5, profile: redhatProfile(
		"glibc >= 2.5-12, openssl >= 0.9.8b-8.3.el5, pam >= 0.99.6.2-3.14.el5, redhat-lsb >= 3.1-12.2")},
	{platform: Linux, distro: RedHat, major: 4, profile: redhatProfile(
		"glibc >= 2.3.4-2, openssl >= 0.9.7a-43.1, pam >= 0.77-65.1, redhat-lsb >= 1.3-5.2")},
	{platform: Linux, distro: Ubuntu, major: AnyVersion, profile: ubuntuProfile()},
	{platform: SunOS, major: 5, minorBelow: 10, profile: solarisProfile(true)},
	{platform: SunOS, major: 5, profile: solarisProfile(false)},
	{platform: HPUX, major: AnyVersion, profile: hpuxProfile()},
	{platform: AIX, major: AnyVersion, profile: aixProfile()},
	{platform: MacOS, major: AnyVersion, profile: macProfile()},
}
