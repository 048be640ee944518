// Package config locates palsnap's directories and loads its configuration
// files: the reference accents, the template list and the settings.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const appName = "palsnap"

// File names inside the config directory.
const (
	AccentsFileName   = "palsnap.toml"
	TemplatesFileName = "templates.toml"
	SettingsFileName  = "settings.toml"
)

// Paths holds the directories palsnap reads from and writes to.
type Paths struct {
	// Config holds palsnap.toml, templates.toml, settings.toml and user templates.
	Config string
	// Cache holds saved palettes, downloaded images and rendered output.
	Cache string
}

// DefaultPaths returns the XDG directories for palsnap.
func DefaultPaths() Paths {
	return Paths{
		Config: filepath.Join(xdg.ConfigHome, appName),
		Cache:  filepath.Join(xdg.CacheHome, appName),
	}
}

// AccentsFile returns the path of the reference accent file.
func (p Paths) AccentsFile() string { return filepath.Join(p.Config, AccentsFileName) }

// TemplatesFile returns the path of the template list.
func (p Paths) TemplatesFile() string { return filepath.Join(p.Config, TemplatesFileName) }

// SettingsFile returns the path of the optional settings file.
func (p Paths) SettingsFile() string { return filepath.Join(p.Config, SettingsFileName) }

// TemplateDir returns the directory holding user templates.
func (p Paths) TemplateDir() string { return filepath.Join(p.Config, "templates") }

// PaletteDir returns the directory holding saved palettes.
func (p Paths) PaletteDir() string { return filepath.Join(p.Cache, "palettes") }

// ImageDir returns the directory holding downloaded images.
func (p Paths) ImageDir() string { return filepath.Join(p.Cache, "images") }

// OutputDir returns the directory rendered templates are written to by default.
func (p Paths) OutputDir() string { return filepath.Join(p.Cache, "output") }

// Accent is a named reference colour.
type Accent struct {
	Name string
	Hex  string
}

// DefaultAccents returns the reference accents written on first run.
func DefaultAccents() []Accent {
	return []Accent{
		{"black", "#000000"},
		{"red", "#ff0000"},
		{"orange", "#ffa500"},
		{"yellow", "#ffff00"},
		{"green", "#008000"},
		{"blue", "#0000ff"},
		{"cyan", "#00ffff"},
		{"magenta", "#ff00ff"},
		{"violet", "#7f00ff"},
		{"white", "#ffffff"},
	}
}

const templatesHeader = `# Templates rendered after every palette generation.
#
# [[template]]
# program = "kitty"             # process checked before running cmd
# name = "kitty.conf"           # template file in the templates directory
# alias = "palsnap-kitty.conf"  # output file name, defaults to name
# dir = "~/.config/kitty"       # output directory, defaults to the cache output directory
# cmd = "kill -SIGUSR1 $(pgrep kitty)"
`

// EnsurePaths creates the palsnap directories and writes the default accent
// and template files when they are missing. Existing files are left alone.
func EnsurePaths(p Paths) error {
	for _, dir := range []string{p.Config, p.TemplateDir(), p.PaletteDir(), p.ImageDir(), p.OutputDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Config directories need standard permissions
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	accents, err := EncodeAccents(DefaultAccents())
	if err != nil {
		return err
	}
	if err := writeIfMissing(p.AccentsFile(), accents); err != nil {
		return err
	}
	return writeIfMissing(p.TemplatesFile(), []byte(templatesHeader))
}

// EncodeAccents renders accents as a flat TOML table, keeping their order.
func EncodeAccents(accents []Accent) ([]byte, error) {
	var buf bytes.Buffer
	for _, a := range accents {
		// One table per entry: a map would lose the order.
		if err := toml.NewEncoder(&buf).Encode(map[string]string{a.Name: a.Hex}); err != nil {
			return nil, fmt.Errorf("failed to encode accent %s: %w", a.Name, err)
		}
	}
	return buf.Bytes(), nil
}

func writeIfMissing(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - Config files need standard read permissions
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
