package materializer

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/scx-installer/internal/domain/staging"
	"github.com/oshokin/scx-installer/internal/fsutil"
	"github.com/oshokin/scx-installer/internal/logger"
)

// dirCreateMode keeps directories writable by the builder until ownership is fixed.
const dirCreateMode = 0o700

// Materializer writes staging trees.
type Materializer struct {
	fs *fsutil.FS
}

// New creates a Materializer working on fs.
func New(fs *fsutil.FS) *Materializer {
	return &Materializer{fs: fs}
}

// Materialize wipes the staging root and creates every entry of tree in order.
// Parents must precede children; the order is not re-validated here.
func (m *Materializer) Materialize(ctx context.Context, tree *staging.Tree) error {
	if err := m.fs.RemoveAll(tree.Root); err != nil {
		return fmt.Errorf("wipe staging root: %w", err)
	}

	for i := range tree.Entries {
		if err := m.create(&tree.Entries[i]); err != nil {
			return fmt.Errorf("stage %q: %w", tree.Entries[i].Path, err)
		}
	}

	logger.InfoKV(ctx, "Staging tree created", "root", tree.Root, "objects", len(tree.Entries))

	return nil
}

func (m *Materializer) create(entry *staging.Entry) error {
	switch entry.Kind {
	case staging.KindDir, staging.KindSysDir:
		return m.fs.MkDir(entry.Dest, entry.Mode|dirCreateMode)
	case staging.KindFile:
		return m.fs.Copy(entry.SourcePath, entry.Dest, entry.Mode)
	case staging.KindConffile, staging.KindEmptyFile:
		if entry.SourcePath != "" {
			return m.fs.Copy(entry.SourcePath, entry.Dest, entry.Mode)
		}

		return m.fs.WriteFile(entry.Dest, nil, entry.Mode)
	case staging.KindTemplatedFile:
		content, err := m.fs.ReadFile(entry.SourcePath)
		if err != nil {
			return err
		}

		return m.fs.WriteFile(entry.Dest, ApplyRules(content, entry.Rules), entry.Mode)
	case staging.KindLink:
		return m.fs.Symlink(entry.Target, entry.Dest)
	default:
		return fmt.Errorf("%s: %w", entry.Kind, staging.ErrUnknownKind)
	}
}

// ApplyRules replaces every rule token in content with the rule lines joined by newlines.
func ApplyRules(content []byte, rules []staging.Rule) []byte {
	text := string(content)

	for _, rule := range rules {
		text = strings.ReplaceAll(text, rule.Token, strings.Join(rule.Lines, "\n"))
	}

	return []byte(text)
}
