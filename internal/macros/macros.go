// Package macros loads named roll shorthands from a YAML file, so users
// can say "sneak" instead of retyping "3d6^2+1". The file is
// configuration: read once at startup, validated up front, immutable at
// runtime.
package macros

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/dicetower/internal/dicemath"
)

// yamlFile is the top-level YAML structure for macro files.
type yamlFile struct {
	Macros []yamlMacro `yaml:"macros"`
}

// yamlMacro is one named expression entry.
type yamlMacro struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// Library is an immutable name -> expression mapping whose every entry
// parsed successfully at load time.
type Library struct {
	entries map[string]string
}

// LoadFile reads and validates a macro YAML file.
//
// Postcondition: returns a Library whose every expression parses, or a
// non-nil error naming the offending macro.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading macro file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates macros from YAML bytes.
func LoadBytes(data []byte) (*Library, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing macro YAML: %w", err)
	}

	entries := make(map[string]string, len(file.Macros))
	for _, m := range file.Macros {
		if m.Name == "" {
			return nil, fmt.Errorf("macro with expression %q has no name", m.Expr)
		}
		if _, ok := entries[m.Name]; ok {
			return nil, fmt.Errorf("duplicate macro %q", m.Name)
		}
		if _, err := dicemath.Parse(m.Expr); err != nil {
			return nil, fmt.Errorf("macro %q: %w", m.Name, err)
		}
		entries[m.Name] = m.Expr
	}
	return &Library{entries: entries}, nil
}

// Lookup returns the expression bound to name.
func (l *Library) Lookup(name string) (string, bool) {
	expr, ok := l.entries[name]
	return expr, ok
}

// Names returns every macro name in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of macros in the library.
func (l *Library) Len() int { return len(l.entries) }
