package colour

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
)

// Slot names that every extracted palette carries besides the accents.
const (
	SlotBackground = "bg"
	SlotForeground = "fg"
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Mode is the light/dark flavour of a palette.
type Mode string

const (
	// ModeAuto derives the mode from the extracted background.
	ModeAuto Mode = "auto"
	// ModeDark picks the darkest dominant cluster as background.
	ModeDark Mode = "dark"
	// ModeLight picks the lightest dominant cluster as background.
	ModeLight Mode = "light"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAuto, ModeDark, ModeLight:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (valid: auto, dark, light)", s)
	}
}

// Variety selects which optional colour-variety stages run after matching.
type Variety string

const (
	// VarietyDefault keeps the matched accents as they are.
	VarietyDefault Variety = "default"
	// VarietyExtra adds harmony candidates around background and foreground.
	VarietyExtra Variety = "extra"
	// VarietyMix adds harmony candidates, then mixes accents toward their references.
	VarietyMix Variety = "mix"
	// VarietyTweak adds harmony candidates, then corrects hue and chroma.
	VarietyTweak Variety = "tweak"
)

// ParseVariety parses a variety name.
func ParseVariety(s string) (Variety, error) {
	switch v := Variety(strings.ToLower(s)); v {
	case VarietyDefault, VarietyExtra, VarietyMix, VarietyTweak:
		return v, nil
	default:
		return "", fmt.Errorf("invalid variety: %s (valid: default, extra, mix, tweak)", s)
	}
}

// Swatches is an insertion-ordered mapping from name to Color.
// Setting an existing name replaces its colour but keeps its position.
type Swatches struct {
	names  []string
	colors map[string]Color
}

// NewSwatches creates an empty Swatches.
func NewSwatches() *Swatches {
	return &Swatches{colors: make(map[string]Color)}
}

// Set stores c under name.
func (s *Swatches) Set(name string, c Color) {
	if _, ok := s.colors[name]; !ok {
		s.names = append(s.names, name)
	}
	s.colors[name] = c
}

// Get returns the colour stored under name.
func (s *Swatches) Get(name string) (Color, bool) {
	c, ok := s.colors[name]
	return c, ok
}

// Has reports whether name is present.
func (s *Swatches) Has(name string) bool {
	_, ok := s.colors[name]
	return ok
}

// Names returns a copy of the names in insertion order.
func (s *Swatches) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of entries.
func (s *Swatches) Len() int {
	return len(s.names)
}

// All iterates over the entries in insertion order.
func (s *Swatches) All() iter.Seq2[string, Color] {
	return func(yield func(string, Color) bool) {
		for _, name := range s.names {
			if !yield(name, s.colors[name]) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (s *Swatches) Clone() *Swatches {
	out := &Swatches{
		names:  s.Names(),
		colors: make(map[string]Color, len(s.colors)),
	}
	for k, v := range s.colors {
		out.colors[k] = v
	}
	return out
}

// Merge sets every entry of other into s.
func (s *Swatches) Merge(other *Swatches) {
	for name, c := range other.All() {
		s.Set(name, c)
	}
}

// Palette is the result of an extraction run: named colours plus the source
// image and the light/dark mode.
type Palette struct {
	Image  string
	Mode   Mode
	Colors *Swatches
}

// Get returns the colour in the given slot.
func (p *Palette) Get(slot string) (Color, bool) {
	return p.Colors.Get(slot)
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	RGB  RGB    `json:"rgb"`
	HSL  HSL    `json:"hsl"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Image  string      `json:"image"`
	Mode   Mode        `json:"mode"`
	Colors []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to JSON format, keeping slot order.
func (p *Palette) ToJSON() ([]byte, error) {
	out := PaletteJSON{
		Image:  p.Image,
		Mode:   p.Mode,
		Colors: make([]ColorJSON, 0, p.Colors.Len()),
	}
	for name, c := range p.Colors.All() {
		out.Colors = append(out.Colors, ColorJSON{
			Name: name,
			Hex:  c.Hex(),
			RGB:  c.RGB(),
			HSL:  c.HSL(),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if p.Colors == nil || p.Colors.Len() == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette (%s) from %s:\n", p.Mode, p.Image)
	for name, c := range p.Colors.All() {
		fmt.Fprintf(&sb, "  %-10s %s (%s)\n", name, c.Hex(), c.RGB().String())
	}
	return sb.String()
}
