// Package cache stores extracted palettes by name so they can be reloaded
// without running extraction again.
package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jmylchreest/palsnap/internal/colour"
)

// CurrentName is the file stem of the most recently generated or loaded palette.
const CurrentName = "palette"

const ext = ".toml"

var (
	// ErrInvalidName is returned for reserved names and names that are not a plain file stem.
	ErrInvalidName = errors.New("invalid palette name")
	// ErrNotFound is returned when a named palette is not cached.
	ErrNotFound = errors.New("palette not found")
	// ErrExists is returned when saving over an existing palette without force.
	ErrExists = errors.New("palette already exists")
	// ErrNoCurrent is returned when no palette has been generated yet.
	ErrNoCurrent = errors.New("no current palette")
	// ErrEmpty is returned when picking from an empty cache.
	ErrEmpty = errors.New("no cached palettes")
)

var reservedNames = []string{CurrentName, "all", "random"}

// ValidateName reports whether name may be used for a cached palette.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case slices.Contains(reservedNames, name):
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case strings.ContainsAny(name, `./\`):
		return fmt.Errorf("%w: %q must not contain '.' or path separators", ErrInvalidName, name)
	}
	return nil
}

// file is the on-disk layout of a cached palette.
type file struct {
	Image  string            `toml:"image"`
	Mode   string            `toml:"mode"`
	Order  []string          `toml:"order"`
	Colors map[string]string `toml:"colors"`
}

// Store is a directory of cached palettes.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

// SaveCurrent records p as the current palette.
func (s *Store) SaveCurrent(p *colour.Palette) error {
	return s.write(CurrentName, p)
}

// Current returns the current palette.
func (s *Store) Current() (*colour.Palette, error) {
	p, err := s.read(CurrentName)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoCurrent
	}
	return p, err
}

// Set copies the current palette to name. An existing palette is only
// replaced when force is set.
func (s *Store) Set(name string, force bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !force && s.exists(name) {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	p, err := s.Current()
	if err != nil {
		return err
	}
	return s.write(name, p)
}

// Get returns the palette cached as name.
func (s *Store) Get(name string) (*colour.Palette, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return s.read(name)
}

// Load returns the palette cached as name and makes it current.
func (s *Store) Load(name string) (*colour.Palette, error) {
	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if err := s.SaveCurrent(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Random loads a randomly chosen cached palette and returns its name.
func (s *Store) Random(rng *rand.Rand) (string, *colour.Palette, error) {
	names, err := s.List()
	if err != nil {
		return "", nil, err
	}
	if len(names) == 0 {
		return "", nil, ErrEmpty
	}
	name := names[rng.Intn(len(names))]
	p, err := s.Load(name)
	return name, p, err
}

// List returns the names of the cached palettes, sorted, excluding the current one.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if name == CurrentName {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Remove deletes the named palettes. Every name is checked before any file is removed.
func (s *Store) Remove(names ...string) error {
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		if !s.exists(name) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}
	for _, name := range names {
		if err := os.Remove(s.path(name)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// Rename moves a cached palette to a new name without replacing an existing one.
func (s *Store) Rename(oldName, newName string) error {
	for _, name := range []string{oldName, newName} {
		if err := ValidateName(name); err != nil {
			return err
		}
	}
	if !s.exists(oldName) {
		return fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if s.exists(newName) {
		return fmt.Errorf("%w: %s", ErrExists, newName)
	}
	return os.Rename(s.path(oldName), s.path(newName))
}

// Clear removes every cached palette except the current one and returns how many were removed.
func (s *Store) Clear() (int, error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}
	if err := s.Remove(names...); err != nil {
		return 0, err
	}
	return len(names), nil
}

func (s *Store) exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *Store) write(name string, p *colour.Palette) error {
	if p == nil || p.Colors == nil {
		return fmt.Errorf("cannot cache an empty palette as %s", name)
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *Store) read(name string) (*colour.Palette, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return p, nil
}

// Encode serialises a palette. The slot order is stored explicitly because
// TOML tables are unordered.
func Encode(p *colour.Palette) ([]byte, error) {
	f := file{
		Image:  p.Image,
		Mode:   string(p.Mode),
		Order:  p.Colors.Names(),
		Colors: make(map[string]string, p.Colors.Len()),
	}
	for name, c := range p.Colors.All() {
		f.Colors[name] = c.Hex()
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode palette: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a palette written by Encode. Without an order list the
// colours keep the order they appear in the file.
func Decode(data []byte) (*colour.Palette, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, err
	}

	order := f.Order
	if len(order) == 0 {
		for _, key := range md.Keys() {
			if len(key) == 2 && key[0] == "colors" {
				order = append(order, key[1])
			}
		}
	}

	colors := colour.NewSwatches()
	for _, name := range order {
		hex, ok := f.Colors[name]
		if !ok {
			return nil, fmt.Errorf("slot %q listed in order has no colour", name)
		}
		c, err := colour.FromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", name, err)
		}
		colors.Set(name, c)
	}
	if colors.Len() != len(f.Colors) {
		return nil, fmt.Errorf("order lists %d slots but %d colours are present", colors.Len(), len(f.Colors))
	}

	mode := colour.Mode(f.Mode)
	if f.Mode != "" {
		if mode, err = colour.ParseMode(f.Mode); err != nil {
			return nil, err
		}
	}

	return &colour.Palette{Image: f.Image, Mode: mode, Colors: colors}, nil
}
