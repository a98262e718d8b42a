// Package templates holds the fixed catalogue of messages a run can send.
package templates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTemplate is returned by Lookup for a name not in the catalogue.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is a named, static message.
type Template struct {
	Name    string `yaml:"name" json:"name"`
	Message string `yaml:"message" json:"message"`
}

// Defaults is the built-in catalogue.
var Defaults = []Template{
	{
		Name:    "M Suites",
		Message: "Hi, I'm Sabrina. Agent for M Suites. May I know if your unit is available for rent?",
	},
	{
		Name:    "M City",
		Message: "Hi, I'm Sabrina. Agent for M City. May I know if your unit is available for rent?",
	},
}

// Catalogue is an ordered set of templates.
type Catalogue struct {
	items []Template
}

// New builds a catalogue. With no templates it uses Defaults.
func New(items ...Template) (*Catalogue, error) {
	if len(items) == 0 {
		items = Defaults
	}
	seen := make(map[string]bool, len(items))
	for i, t := range items {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return nil, fmt.Errorf("templates[%d]: name is required", i)
		}
		if strings.TrimSpace(t.Message) == "" {
			return nil, fmt.Errorf("templates[%d] %q: message is required", i, t.Name)
		}
		if seen[key] {
			return nil, fmt.Errorf("templates[%d]: duplicate name %q", i, t.Name)
		}
		seen[key] = true
	}
	return &Catalogue{items: append([]Template(nil), items...)}, nil
}

// Lookup returns the message for name, compared case-insensitively.
func (c *Catalogue) Lookup(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, t := range c.items {
		if strings.ToLower(t.Name) == key {
			return t.Message, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of %v", ErrUnknownTemplate, name, c.Names())
}

// Names returns template names in catalogue order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.items))
	for i, t := range c.items {
		names[i] = t.Name
	}
	return names
}

// All returns a copy of every template in order.
func (c *Catalogue) All() []Template {
	return append([]Template(nil), c.items...)
}
