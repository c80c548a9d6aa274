// Package config loads fetch profiles: a target plus the request and
// output settings for one hc fetch run, stored as YAML or JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a profile file with an unrecognised
// extension.
var ErrUnknownFormat = errors.New("config: unknown profile format")

// Profile describes one fetch.
type Profile struct {
	Target    string            `json:"target" yaml:"target"`
	Method    string            `json:"method,omitempty" yaml:"method,omitempty"`
	Path      string            `json:"path,omitempty" yaml:"path,omitempty"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      string            `json:"body,omitempty" yaml:"body,omitempty"`
	Timeout   string            `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Format    string            `json:"format,omitempty" yaml:"format,omitempty"`
	Extract   map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
	Repeat    int               `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Rate      float64           `json:"rate,omitempty" yaml:"rate,omitempty"`
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// LoadProfile reads a profile file. The format follows the extension:
// .yaml and .yml are YAML, .json is JSON.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading profile: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ParseYAML decodes, validates and expands a YAML profile.
func ParseYAML(data []byte) (*Profile, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing profile: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	// The schema is defined over JSON values.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error parsing profile: %w", err)
	}
	return ParseJSON(asJSON)
}

// ParseJSON decodes, validates and expands a JSON profile.
func ParseJSON(data []byte) (*Profile, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error parsing profile: %w", err)
	}
	p.expand()
	return &p, nil
}

// expand substitutes {{name}} variables in the request fields.
func (p *Profile) expand() {
	if len(p.Variables) == 0 {
		return
	}
	p.Target = ProcessVariables(p.Target, p.Variables)
	p.Path = ProcessVariables(p.Path, p.Variables)
	p.Body = ProcessVariables(p.Body, p.Variables)
	p.Headers = ProcessVariablesInMap(p.Headers, p.Variables)
}

// TimeoutDuration returns the parsed timeout, or def when none is set.
func (p *Profile) TimeoutDuration(def time.Duration) (time.Duration, error) {
	if p.Timeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
	}
	return d, nil
}

// HeaderKeys returns the header names in a stable order.
func (p *Profile) HeaderKeys() []string {
	keys := make([]string, 0, len(p.Headers))
	for k := range p.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProcessVariables replaces every {{name}} in input with its value.
// Unknown names are left as they are.
func ProcessVariables(input string, vars map[string]string) string {
	result := input
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessVariablesInMap applies ProcessVariables to every value.
func ProcessVariablesInMap(input map[string]string, vars map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessVariables(value, vars)
	}
	return result
}
