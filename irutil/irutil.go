// Package irutil contains helpers for loading programs, mostly for tests.
package irutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BarrensZeppelin/pta/ir"
)

// LoadProgramFromSource loads a program from YAML source that may be
// indented with tabs, as is customary for source embedded in Go raw strings.
func LoadProgramFromSource(source string) (*ir.Program, error) {
	return ir.Load(strings.NewReader(Dedent(source)))
}

// LoadProgramsFromGlob loads every program file matching pattern, keyed by
// file name.
func LoadProgramsFromGlob(pattern string) (map[string]*ir.Program, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	progs := make(map[string]*ir.Program, len(paths))
	var errs []error
	for _, path := range paths {
		prog, err := ir.LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		progs[filepath.Base(path)] = prog
	}

	if len(errs) > 0 {
		return progs, fmt.Errorf("errors encountered while loading programs: %w", errors.Join(errs...))
	}
	return progs, nil
}

// Dedent removes the longest whitespace prefix common to all non-blank lines
// of s, and replaces the remaining leading tabs by two spaces each.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")

	prefix, first := "", true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ws := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = ws, false
			continue
		}
		for !strings.HasPrefix(ws, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, l := range lines {
		l = strings.TrimPrefix(l, prefix)
		rest := strings.TrimLeft(l, "\t")
		lines[i] = strings.Repeat("  ", len(l)-len(rest)) + rest
	}
	return strings.Join(lines, "\n")
}
