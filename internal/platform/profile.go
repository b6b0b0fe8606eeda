package platform

import (
	"errors"
	"fmt"
	"os"
)

// Platform family names as they appear in the configuration.
const (
	Linux = "Linux"
	SunOS = "SunOS"
	HPUX  = "HPUX"
	AIX   = "AIX"
	MacOS = "MacOS"
)

// Linux distribution names as they appear in the configuration.
const (
	SUSE   = "SUSE"
	RedHat = "REDHAT"
	Ubuntu = "UBUNTU"
)

// Package formats produced by the renderers.
const (
	FormatNone = ""
	FormatDEB  = "deb"
	FormatRPM  = "rpm"
)

// AnyVersion matches every major version in the profile table.
const AnyVersion = -1

// ErrUnsupportedPlatform is returned for a platform/distro/version combination with no profile.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Dir is an extra directory a platform needs for its service startup artifacts.
type Dir struct {
	Path  string
	Mode  os.FileMode
	Group string
	// System marks directories excluded from package manifests.
	System bool
}

// Link is a symlink declared relative to the staging root.
type Link struct {
	Path   string
	Target string
}

// File is a file copied from the installer directory.
type File struct {
	Path   string
	Source string
	Mode   os.FileMode
	// Group overrides the privileged group when set.
	Group string
}

// Startup is the service-startup artifact set of a platform.
type Startup struct {
	// Script is the init/method script. Always present.
	Script File
	// Templated scripts receive the coverage environment block.
	Templated bool
	// Links are run-level symlinks to the script.
	Links []Link
	// Manifest is a declarative service description (SMF, launchd), if any.
	Manifest *File
}

// Profile is everything platform-specific the manifest builder and renderers need.
type Profile struct {
	// EtcRoot, OptRoot and VarRoot are the staging-relative locations of /etc, /opt and /var.
	EtcRoot string
	OptRoot string
	VarRoot string
	// RootGroup is the name of the group with id 0.
	RootGroup string
	// PrivateRoot adds the "private" system directory (MacOS).
	PrivateRoot bool
	// InitDir adds <etc>/init.d as a system directory.
	InitDir bool
	// Dirs are appended after the base directory set.
	Dirs []Dir
	// Startup is the single service-startup artifact set. Nil when the platform starts
	// the service from its lifecycle scripts only.
	Startup *Startup
	// UninstallScript adds an empty early scxUninstall.sh filled in after staging (MacOS).
	UninstallScript bool
	// AdminLink adds usr/sbin/scxadmin. Platforms that create it in lifecycle scripts leave it off.
	AdminLink bool
	// LibSuffix is the shared-library extension without the dot.
	LibSuffix string
	// ArchLibSuffix overrides LibSuffix per architecture code.
	ArchLibSuffix map[string]string
	// NumericLibVersion appends a bare "1" instead of "<suffix>.1" to versioned libraries.
	NumericLibVersion bool

	// Format selects the package renderer.
	Format string
	// Tag names the distro family in produced package file names.
	Tag string
	// Requires is the pinned minimum-version dependency list (RPM).
	Requires string
	// ServiceAdd and ServiceRemove register and unregister an init script.
	// The %s verb receives the service name.
	ServiceAdd    string
	ServiceRemove string
}

// ServiceCommand formats a service registration command for service.
// It returns an empty string when the platform has no such command.
func ServiceCommand(format, service string) string {
	if format == "" {
		return ""
	}

	return fmt.Sprintf(format, service)
}

// SharedLibrarySuffix returns the library extension for arch.
func (p *Profile) SharedLibrarySuffix(arch string) string {
	if suffix, ok := p.ArchLibSuffix[arch]; ok {
		return suffix
	}

	return p.LibSuffix
}

// entry is a row of the profile table. The first matching row wins.
type entry struct {
	platform string
	distro   string
	major    int
	// minorBelow restricts the row to minor versions strictly below it; zero means no bound.
	minorBelow int
	profile    *Profile
}

func (e *entry) matches(platform, distro string, major, minor int) bool {
	if e.platform != platform || e.distro != distro {
		return false
	}

	if e.major != AnyVersion && e.major != major {
		return false
	}

	return e.minorBelow == 0 || minor < e.minorBelow
}

// Lookup returns the profile for the given platform, distro and version.
// Unknown combinations are a fatal configuration error.
func Lookup(platform, distro string, major, minor int) (*Profile, error) {
	if platform != Linux {
		distro = ""
	}

	for i := range table {
		if table[i].matches(platform, distro, major, minor) {
			profile := *table[i].profile
			return &profile, nil
		}
	}

	return nil, fmt.Errorf("%s %s %d.%d: %w", platform, distro, major, minor, ErrUnsupportedPlatform)
}
