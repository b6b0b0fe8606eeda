package installer

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/manifest"
)

// listing holds the colors of the manifest listing columns.
type listing struct {
	dir   *color.Color
	file  *color.Color
	link  *color.Color
	other *color.Color
	owner *color.Color
}

func newListing(noColor bool) *listing {
	l := &listing{
		dir:   color.New(color.FgBlue, color.Bold),
		file:  color.New(color.FgGreen),
		link:  color.New(color.FgCyan),
		other: color.New(color.FgYellow),
		owner: color.New(color.FgMagenta),
	}

	if noColor {
		for _, c := range []*color.Color{l.dir, l.file, l.link, l.other, l.owner} {
			c.DisableColor()
		}
	}

	return l
}

func (l *listing) kind(kind staging.Kind) *color.Color {
	switch kind {
	case staging.KindDir, staging.KindSysDir:
		return l.dir
	case staging.KindFile:
		return l.file
	case staging.KindLink:
		return l.link
	default:
		return l.other
	}
}

// Manifest writes the ordered staging object list to w without staging anything.
// Only the repository source tree is read.
func Manifest(ctx context.Context, opts *Options, w io.Writer) error {
	ctx = logger.WithName(ctx, "scx-installer")

	cfg, profile, err := load(opts.ConfigPath)
	if err != nil {
		return err
	}

	objects, err := manifest.Build(cfg, profile, afero.NewReadOnlyFs(afero.NewOsFs()))
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Listing staging manifest", "platform", describe(cfg), "objects", len(objects))

	l := newListing(opts.NoColor)

	for _, obj := range objects {
		line := fmt.Sprintf("%s %04o %s %s",
			l.kind(obj.Kind).Sprintf("%-14s", obj.Kind),
			obj.Mode.Perm(),
			l.owner.Sprintf("%-11s", obj.Owner+":"+obj.Group),
			obj.ManifestPath())

		if obj.Kind == staging.KindLink {
			line += " -> " + obj.Target
		}

		if _, err = fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write manifest listing: %w", err)
		}
	}

	return nil
}
