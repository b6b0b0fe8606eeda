package installer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/repository/receipt"
)

// LastReceipt writes the receipt of the last successful build in the configured
// target directory to w.
func LastReceipt(ctx context.Context, opts *Options, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	repo := receipt.NewFileRepository(fsutil.NewOS(cfg.SudoEnabled()), cfg.Paths.TargetDir)

	last, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", repo.Path(), err)
	}

	label := color.New(color.Bold)
	if opts.NoColor {
		label.DisableColor()
	}

	fields := []struct {
		name  string
		value string
	}{
		{"format", last.Format},
		{"artifact", last.Artifact},
		{"version", last.Version + "-" + last.Release},
		{"platform", last.Platform},
		{"objects", fmt.Sprint(last.Objects)},
		{"built at", last.Timestamp.Format(time.RFC3339)},
		{"tool", last.ToolVersion},
	}

	if last.Actor != nil {
		fields = append(fields, struct {
			name  string
			value string
		}{"built by", fmt.Sprintf("%s@%s (%s)", last.Actor.Username, last.Actor.Hostname, last.Actor.Group)})
	}

	for _, field := range fields {
		if _, err = fmt.Fprintf(w, "%s %s\n", label.Sprintf("%-9s", field.name+":"), field.value); err != nil {
			return fmt.Errorf("write receipt: %w", err)
		}
	}

	return nil
}
