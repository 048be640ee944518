package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/jmylchreest/palsnap/internal/colour"
)

// InvalidConfigError is returned for a configuration entry that cannot be used.
type InvalidConfigError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid config %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid config %q = %q: %s", e.Key, e.Value, e.Reason)
}

// ErrNoAccents is returned when the accent file defines no accents.
var ErrNoAccents = errors.New("no accents defined")

// reservedSlots are palette slots the extractor fills itself.
func reservedSlots() []string {
	return append([]string{colour.SlotBackground, colour.SlotForeground}, colour.GradientNames()...)
}

// LoadAccents reads the reference accents from a TOML file.
func LoadAccents(path string) (*colour.Swatches, error) {
	data, err := os.ReadFile(path) // #nosec G304 - User config path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read accents file: %w", err)
	}
	accents, err := ParseAccents(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load accents from %s: %w", path, err)
	}
	return accents, nil
}

// ParseAccents parses a flat TOML table of name = "#rrggbb" pairs. The
// declaration order of the keys becomes the accent order.
func ParseAccents(data string) (*colour.Swatches, error) {
	var raw map[string]any
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse accents: %w", err)
	}

	reserved := reservedSlots()
	accents := colour.NewSwatches()
	for _, key := range md.Keys() {
		if len(key) != 1 {
			return nil, &InvalidConfigError{Key: key.String(), Reason: "nested tables are not supported"}
		}
		name := key[0]

		value, ok := raw[name].(string)
		if !ok {
			return nil, &InvalidConfigError{Key: name, Value: fmt.Sprint(raw[name]), Reason: "value must be a string"}
		}
		if slices.Contains(reserved, name) {
			return nil, &InvalidConfigError{Key: name, Value: value, Reason: "name is reserved for a palette slot"}
		}
		c, err := colour.FromHex(value)
		if err != nil {
			return nil, &InvalidConfigError{Key: name, Value: value, Reason: colour.ErrInvalidHex.Error()}
		}
		accents.Set(name, c)
	}

	if accents.Len() == 0 {
		return nil, ErrNoAccents
	}
	return accents, nil
}
