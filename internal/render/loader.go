package render

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed builtin/*.tmpl
var builtinFS embed.FS

// Loader reads built-in templates, preferring a user copy in the custom
// directory over the embedded default.
type Loader struct {
	embedFS   fs.FS
	customDir string
}

// NewLoader creates a Loader for the embedded built-in templates with
// overrides looked up in customDir.
func NewLoader(customDir string) *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return &Loader{embedFS: sub, customDir: customDir}
}

// Load reads a template file, checking for a custom override first.
// It reports whether the override was used.
func (l *Loader) Load(filename string) (content []byte, fromCustom bool, err error) {
	if content, err := os.ReadFile(l.CustomPath(filename)); err == nil {
		return content, true, nil
	}

	content, err = fs.ReadFile(l.embedFS, filename)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load template %q: %w", filename, err)
	}
	return content, false, nil
}

// CustomPath returns where a custom override of filename would be located.
func (l *Loader) CustomPath(filename string) string {
	return filepath.Join(l.customDir, filename)
}

// List returns the names of the embedded templates.
func (l *Loader) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(l.embedFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".tmpl" {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}
	return names, nil
}

// Dump writes an embedded template to the custom directory so it can be
// edited. Existing files are only replaced when force is set.
func (l *Loader) Dump(filename string, force bool) (string, error) {
	content, err := fs.ReadFile(l.embedFS, filename)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded template %q: %w", filename, err)
	}

	out := l.CustomPath(filename)
	if !force {
		if _, err := os.Stat(out); err == nil {
			return "", fmt.Errorf("custom template already exists: %s (use --force to overwrite)", out)
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %q: %w", filepath.Dir(out), err)
	}
	if err := os.WriteFile(out, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write template to %q: %w", out, err)
	}
	return out, nil
}

// outputName strips the template suffix: styles.css.tmpl renders to styles.css.
func outputName(filename string) string {
	return strings.TrimSuffix(filename, ".tmpl")
}
