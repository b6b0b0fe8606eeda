package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Paths holds the absolute directories a packaging run works with.
type Paths struct {
	// SourceDir is the source tree root.
	SourceDir string `yaml:"src_dir" toml:"src_dir"`
	// TargetDir is the build output directory; finished packages land here.
	TargetDir string `yaml:"target_dir" toml:"target_dir"`
	// InstallerDir holds installer templates (init scripts, service manifests).
	InstallerDir string `yaml:"installer_dir" toml:"installer_dir"`
	// IntermediateDir is the intermediate build tree.
	IntermediateDir string `yaml:"intermediate_dir" toml:"intermediate_dir"`
	// StagingDir is wiped and rebuilt on every run.
	StagingDir string `yaml:"staging_dir" toml:"staging_dir"`
	// TempDir receives generated scripts and the RPM spec file. Defaults to IntermediateDir.
	TempDir string `yaml:"temp_dir" toml:"temp_dir"`
}

// Config is the read-only input of a packaging run.
// Every manifest and rendering decision is a function of these values.
type Config struct {
	// Platform is the OS family: Linux, SunOS, HPUX, AIX or MacOS.
	Platform string `yaml:"pf" toml:"pf"`
	// Distro is the Linux distribution (SUSE, REDHAT, UBUNTU); empty elsewhere.
	Distro string `yaml:"pfdistro" toml:"pfdistro"`
	// Major and Minor are the OS version numbers.
	Major int `yaml:"pfmajor" toml:"pfmajor"`
	Minor int `yaml:"pfminor" toml:"pfminor"`
	// Arch is the internal architecture code (x86, x64, ia64, pa-risc, sparc, ppc).
	Arch string `yaml:"pfarch" toml:"pfarch"`
	// BuildType is the build variant; "Bullseye" enables coverage instrumentation.
	BuildType string `yaml:"bt" toml:"bt"`

	ShortName   string `yaml:"short_name" toml:"short_name"`
	LongName    string `yaml:"long_name" toml:"long_name"`
	Version     string `yaml:"version" toml:"version"`
	Release     string `yaml:"release" toml:"release"`
	Vendor      string `yaml:"vendor" toml:"vendor"`
	License     string `yaml:"license" toml:"license"`
	Description string `yaml:"description" toml:"description"`

	Paths Paths `yaml:"paths" toml:"paths"`

	// UseSudo runs ownership changes through sudo. Defaults to true when omitted.
	UseSudo *bool `yaml:"use_sudo" toml:"use_sudo"`
}

const (
	// DefaultConfigFilename is the configuration file looked up when none is given.
	DefaultConfigFilename = "scx-installer.yaml"

	// BuildTypeBullseye is the coverage-instrumented build variant.
	BuildTypeBullseye = "Bullseye"
)

var (
	// ErrMissingKey is returned when a required configuration key is absent.
	ErrMissingKey = errors.New("missing configuration key")
	// ErrRelativePath is returned when a path key is not absolute.
	ErrRelativePath = errors.New("path must be absolute")

	errConfigIsNotSet    = errors.New("configuration is not set")
	errUnsupportedFormat = errors.New("unsupported configuration format")
)

// Load reads configuration from the provided path and validates it.
// The format is chosen by extension: .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	cfg, err := Parse(contents, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes configuration contents in the format named by ext.
// Numeric version keys must be present: their zero value is a valid version.
func Parse(contents []byte, ext string) (*Config, error) {
	var (
		cfg  Config
		keys map[string]any
	)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml configuration: %w", err)
		}

		if err := yaml.Unmarshal(contents, &keys); err != nil {
			return nil, fmt.Errorf("unmarshal yaml configuration: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal toml configuration: %w", err)
		}

		if err := toml.Unmarshal(contents, &keys); err != nil {
			return nil, fmt.Errorf("unmarshal toml configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", ext, errUnsupportedFormat)
	}

	for _, key := range []string{"pfmajor", "pfminor"} {
		if _, ok := keys[key]; !ok {
			return nil, fmt.Errorf("%s: %w", key, ErrMissingKey)
		}
	}

	return &cfg, nil
}

// Validate checks required keys and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	required := []struct {
		key   string
		value string
	}{
		{"pf", cfg.Platform},
		{"pfarch", cfg.Arch},
		{"bt", cfg.BuildType},
		{"short_name", cfg.ShortName},
		{"long_name", cfg.LongName},
		{"version", cfg.Version},
		{"release", cfg.Release},
		{"vendor", cfg.Vendor},
		{"license", cfg.License},
		{"description", cfg.Description},
		{"paths.src_dir", cfg.Paths.SourceDir},
		{"paths.target_dir", cfg.Paths.TargetDir},
		{"paths.installer_dir", cfg.Paths.InstallerDir},
		{"paths.intermediate_dir", cfg.Paths.IntermediateDir},
		{"paths.staging_dir", cfg.Paths.StagingDir},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s: %w", field.key, ErrMissingKey)
		}
	}

	if cfg.Platform == "Linux" && cfg.Distro == "" {
		return fmt.Errorf("pfdistro: %w", ErrMissingKey)
	}

	if cfg.Paths.TempDir == "" {
		cfg.Paths.TempDir = cfg.Paths.IntermediateDir
	}

	absolute := []struct {
		key string
		dir string
	}{
		{"paths.src_dir", cfg.Paths.SourceDir},
		{"paths.target_dir", cfg.Paths.TargetDir},
		{"paths.installer_dir", cfg.Paths.InstallerDir},
		{"paths.intermediate_dir", cfg.Paths.IntermediateDir},
		{"paths.staging_dir", cfg.Paths.StagingDir},
		{"paths.temp_dir", cfg.Paths.TempDir},
	}

	for _, field := range absolute {
		if !filepath.IsAbs(field.dir) {
			return fmt.Errorf("%s %q: %w", field.key, field.dir, ErrRelativePath)
		}
	}

	return nil
}

// SudoEnabled reports whether ownership changes go through sudo.
func (c *Config) SudoEnabled() bool {
	return c.UseSudo == nil || *c.UseSudo
}

// Coverage reports whether the coverage-instrumented build variant is active.
func (c *Config) Coverage() bool {
	return c.BuildType == BuildTypeBullseye
}
