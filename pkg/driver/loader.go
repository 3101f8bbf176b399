package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/parser"
	"github.com/zaharidichev/rlox/pkg/resolver"
)

// Program is a parsed and resolved script, ready for either backend.
type Program struct {
	Path   string
	Source string
	Stmts  []ast.Stmt
}

// ParseError aggregates the diagnostics that stopped a script from loading.
type ParseError struct {
	Path string
	Errs parser.ErrorList
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Errs.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Errs.Error())
}

// Load reads a script from disk and runs it through the front end.
func Load(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return LoadSource(path, string(src))
}

// LoadSource scans, parses, and resolves src. Any front-end diagnostics come
// back as a *ParseError.
func LoadSource(path, src string) (*Program, error) {
	stmts, errs := parser.Parse(src)
	if len(errs) > 0 {
		return nil, &ParseError{Path: path, Errs: errs}
	}
	if errs := resolver.Resolve(stmts); len(errs) > 0 {
		return nil, &ParseError{Path: path, Errs: errs}
	}
	return &Program{Path: path, Source: src, Stmts: stmts}, nil
}

// ListScripts returns the .lox files directly under dir, sorted by name.
func ListScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list scripts in %s", dir)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lox") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
