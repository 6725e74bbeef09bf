package output

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/hyperifyio/pagescrape/internal/extract"
)

//go:embed templates/move.lua.tmpl
var templatesFS embed.FS

// ScriptExt is appended to the move name to form each script file name.
const ScriptExt = ".lua"

// ErrUnsafeScriptName is returned for a move name that cannot be used as a
// file name inside the script directory.
var ErrUnsafeScriptName = errors.New("unsafe script name")

// DefaultScriptTemplate returns the built-in move script template.
func DefaultScriptTemplate() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/move.lua.tmpl"))
}

// LoadScriptTemplate parses a template file. An empty path selects the
// built-in template. Templates see a Move as their data.
func LoadScriptTemplate(path string) (*template.Template, error) {
	if path == "" {
		return DefaultScriptTemplate(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script template: %w", err)
	}
	t, err := template.New(filepath.Base(path)).Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse script template: %w", err)
	}
	return t, nil
}

// WriteScripts renders tmpl once per row into <dir>/<name>.lua and returns the
// written paths in row order. Values are substituted verbatim. A name that is
// empty or would leave dir is rejected with ErrUnsafeScriptName. Files written
// before a failure stay on disk.
func WriteScripts(dir string, rows []extract.Row, tmpl *template.Template) ([]string, error) {
	if tmpl == nil {
		tmpl = DefaultScriptTemplate()
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(rows))
	var buf bytes.Buffer
	for _, row := range rows {
		m := MoveFromRow(row)
		if !safeScriptName(m.Name) {
			return paths, fmt.Errorf("%w: %q", ErrUnsafeScriptName, m.Name)
		}
		buf.Reset()
		if err := tmpl.Execute(&buf, m); err != nil {
			return paths, fmt.Errorf("render %q: %w", m.Name, err)
		}
		path := filepath.Join(dir, m.Name+ScriptExt)
		if err := os.WriteFile(path, buf.Bytes(), fileMode); err != nil {
			return paths, fmt.Errorf("write script: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// safeScriptName reports whether name is a single local path element.
func safeScriptName(name string) bool {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.IsLocal(name + ScriptExt)
}
