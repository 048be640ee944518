package render

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/jmylchreest/palsnap/internal/colour"
)

// Slot is one named colour of the rendered palette.
type Slot struct {
	Name  string
	Color colour.Color
}

// Data is the value templates are executed with.
type Data struct {
	Image string
	Mode  colour.Mode
	// Colors maps slot names to colours, e.g. {{ .Colors.red | hex }}.
	Colors map[string]colour.Color
	// Slots lists every colour in palette order.
	Slots []Slot
	// Accents lists the colours that are not background, foreground or gradient.
	Accents []Slot
}

// NewData builds template data from a palette.
func NewData(p *colour.Palette) *Data {
	d := &Data{
		Image:  p.Image,
		Mode:   p.Mode,
		Colors: make(map[string]colour.Color, p.Colors.Len()),
	}
	fixed := append([]string{colour.SlotBackground, colour.SlotForeground}, colour.GradientNames()...)
	for name, c := range p.Colors.All() {
		d.Colors[name] = c
		d.Slots = append(d.Slots, Slot{Name: name, Color: c})
		if !slices.Contains(fixed, name) {
			d.Accents = append(d.Accents, Slot{Name: name, Color: c})
		}
	}
	return d
}

// TemplateFuncs returns the functions available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Slot access.
		"get": getFunc,
		"has": hasFunc,

		// Palette metadata.
		"image": imageFunc,
		"mode":  modeFunc,

		// Format conversion.
		"hex":       hexFunc,
		"hexNoHash": hexNoHashFunc,
		"rgb":       rgbFunc,
		"r":         func(c colour.Color) uint8 { return c.RGB().R },
		"g":         func(c colour.Color) uint8 { return c.RGB().G },
		"b":         func(c colour.Color) uint8 { return c.RGB().B },
		"nr":        func(c colour.Color) float64 { return c.NormalRGB()[0] },
		"ng":        func(c colour.Color) float64 { return c.NormalRGB()[1] },
		"nb":        func(c colour.Color) float64 { return c.NormalRGB()[2] },

		"toUpper": strings.ToUpper,
		"toLower": strings.ToLower,
	}
}

// getFunc returns a colour by slot name. A missing slot fails the render.
func getFunc(d *Data, name string) (colour.Color, error) {
	c, ok := d.Colors[name]
	if !ok {
		return colour.Color{}, fmt.Errorf("slot %q not in palette", name)
	}
	return c, nil
}

func hasFunc(d *Data, name string) bool {
	_, ok := d.Colors[name]
	return ok
}

func imageFunc(d *Data) string {
	return d.Image
}

func modeFunc(d *Data) string {
	return string(d.Mode)
}

// hexFunc returns the colour in #rrggbb format.
func hexFunc(c colour.Color) string {
	return c.Hex()
}

// hexNoHashFunc returns the colour in rrggbb format, without the # prefix.
func hexNoHashFunc(c colour.Color) string {
	return strings.TrimPrefix(c.Hex(), "#")
}

// rgbFunc returns the colour in CSS rgb(r, g, b) format.
func rgbFunc(c colour.Color) string {
	return c.RGB().String()
}
