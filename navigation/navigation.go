// Package navigation serves the static dashboard menu.
package navigation

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

type Item struct {
	Label string `yaml:"label" json:"label"`
	Path  string `yaml:"path" json:"path"`
	Icon  string `yaml:"icon" json:"icon,omitempty"`
}

type Section struct {
	Title  string `yaml:"title" json:"title"`
	Module string `yaml:"module" json:"module"`
	Items  []Item `yaml:"items" json:"items"`
}

type Menu struct {
	Sections []Section `yaml:"sections" json:"sections"`
}

// Default returns the embedded menu.
func Default() (Menu, error) {
	return Parse(defaultMenu)
}

// Parse decodes and checks a menu definition. Every item needs a label
// and an absolute path; paths must be unique across the menu.
func Parse(data []byte) (Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Menu{}, fmt.Errorf("parse menu: %w", err)
	}
	if len(m.Sections) == 0 {
		return Menu{}, errors.New("menu has no sections")
	}
	seen := make(map[string]bool)
	for _, s := range m.Sections {
		for _, it := range s.Items {
			if it.Label == "" || !strings.HasPrefix(it.Path, "/") {
				return Menu{}, fmt.Errorf("section %q: item needs a label and an absolute path", s.Title)
			}
			if seen[it.Path] {
				return Menu{}, fmt.Errorf("duplicate menu path %q", it.Path)
			}
			seen[it.Path] = true
		}
	}
	return m, nil
}

// Module returns the section for module, if any.
func (m Menu) Module(module string) (Section, bool) {
	for _, s := range m.Sections {
		if s.Module == module {
			return s, true
		}
	}
	return Section{}, false
}
