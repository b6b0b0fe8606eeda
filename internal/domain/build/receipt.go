package build

import "time"

// Actor identifies who ran a build.
type Actor struct {
	// Hostname is the machine the package was built on.
	Hostname string
	// Username is the system user who ran the build.
	Username string
	// Group is the primary group of Username.
	Group string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Receipt describes the package produced by the last successful run.
type Receipt struct {
	// Format is the package format, "deb" or "rpm".
	Format string
	// Artifact is the absolute path of the produced package.
	Artifact string
	Version  string
	Release  string
	// Platform is the target, e.g. "Linux REDHAT 6.0 x64".
	Platform string
	// Objects is the number of staged objects.
	Objects int
	// ToolVersion is the version of the installer builder.
	ToolVersion string
	// Timestamp is when the package was produced.
	Timestamp time.Time
	Actor     *Actor
}
