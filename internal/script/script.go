package script

import (
	"bytes"
	"strings"

	"github.com/oshokin/scx-installer/internal/fsutil"
)

// Mode is the permission of generated scripts.
const Mode = 0o755

const shebang = "#!/bin/sh"

// Fragment is a named, reusable block of shell statements.
type Fragment struct {
	// Name is the shell function name.
	Name string
	Body []string
}

// Script is an ordered lifecycle script under construction.
type Script struct {
	functions []Fragment
	defined   map[string]struct{}
	body      []string
}

// New creates an empty Script.
func New() *Script {
	return &Script{defined: make(map[string]struct{})}
}

// WriteLn appends a raw statement to the script body.
func (s *Script) WriteLn(line string) *Script {
	s.body = append(s.body, line)
	return s
}

// Call appends an invocation of f, defining it on first use.
func (s *Script) Call(f Fragment) *Script {
	if _, ok := s.defined[f.Name]; !ok {
		s.defined[f.Name] = struct{}{}
		s.functions = append(s.functions, f)
	}

	s.body = append(s.body, f.Name)

	return s
}

// Bytes renders the script text.
func (s *Script) Bytes() []byte {
	var buf bytes.Buffer

	buf.WriteString(shebang + "\n\n")

	for _, f := range s.functions {
		buf.WriteString(f.Name + "() {\n")

		for _, line := range f.Body {
			if line == "" {
				buf.WriteString("\n")
				continue
			}

			buf.WriteString("    " + line + "\n")
		}

		buf.WriteString("}\n\n")
	}

	buf.WriteString(strings.Join(s.body, "\n"))
	buf.WriteString("\n")

	return buf.Bytes()
}

// Generate writes the script to path with Mode permissions.
func (s *Script) Generate(fs *fsutil.FS, path string) error {
	return fs.WriteFile(path, s.Bytes(), Mode)
}
