package slug

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var defaultOverrides []byte

// ErrUnsafeOverride is returned for override bases that are not plain file
// name stems.
var ErrUnsafeOverride = errors.New("unsafe override slug")

// Overrides maps a date key and ranking position to a fixed slug base.
type Overrides map[string]map[int]string

type overridesFile struct {
	Overrides Overrides `yaml:"overrides"`
}

// Lookup returns the override base for the article at index on dateKey.
func (o Overrides) Lookup(dateKey string, index int) (string, bool) {
	base, ok := o[dateKey][index]
	return base, ok
}

// With returns a new table holding o's entries with other's laid on top.
func (o Overrides) With(other Overrides) Overrides {
	out := make(Overrides, len(o)+len(other))
	for _, src := range []Overrides{o, other} {
		for date, entries := range src {
			if out[date] == nil {
				out[date] = make(map[int]string, len(entries))
			}
			for i, base := range entries {
				out[date][i] = base
			}
		}
	}
	return out
}

// ParseOverrides decodes an override table from YAML.
func ParseOverrides(data []byte) (Overrides, error) {
	var f overridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	if f.Overrides == nil {
		return Overrides{}, nil
	}

	for date, entries := range f.Overrides {
		for i, base := range entries {
			if strings.TrimSpace(base) == "" || strings.ContainsAny(base, `/\`) || strings.Contains(base, "..") {
				return nil, fmt.Errorf("%w: %s[%d] = %q", ErrUnsafeOverride, date, i, base)
			}
		}
	}

	return f.Overrides, nil
}

// DefaultOverrides returns the built-in override table.
func DefaultOverrides() Overrides {
	o, err := ParseOverrides(defaultOverrides)
	if err != nil {
		panic(err)
	}
	return o
}

// LoadOverrides returns the built-in table merged with the entries in path.
// An empty path or a missing file yields the built-in table alone.
func LoadOverrides(path string) (Overrides, error) {
	defaults := DefaultOverrides()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	user, err := ParseOverrides(data)
	if err != nil {
		return nil, err
	}

	return defaults.With(user), nil
}
