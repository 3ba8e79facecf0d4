// Package persona loads the fixed character instruction injected into every
// generation call.
package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultPersona []byte

// Persona is the assistant's character
type Persona struct {
	Name        string `yaml:"name" json:"name"`
	Instruction string `yaml:"instruction" json:"-"`
}

// Load reads the persona from path, or the bundled default when path is empty
func Load(path string) (*Persona, error) {
	data := defaultPersona
	source := "default"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read persona file: %w", err)
		}
		source = path
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", source, err)
	}
	return p, nil
}

// Parse decodes a persona document
func Parse(data []byte) (*Persona, error) {
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Instruction = strings.TrimSpace(p.Instruction)
	if p.Instruction == "" {
		return nil, errors.New("instruction is required")
	}
	return &p, nil
}
