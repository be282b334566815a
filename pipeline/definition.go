package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/utils"
	"gopkg.in/yaml.v3"
)

// Step is one configured controller invocation
type Step struct {
	Name       string         `yaml:"name" json:"name" validate:"required"`
	Controller string         `yaml:"controller" json:"controller" validate:"required"`
	Inputs     map[string]any `yaml:"inputs" json:"inputs,omitempty"`
}

// Definition is a named sequence of steps bound to an HTTP route
type Definition struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Method string `yaml:"method" json:"method" validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Path   string `yaml:"path" json:"path" validate:"required,startswith=/"`
	Steps  []Step `yaml:"steps" json:"steps" validate:"required,min=1,dive"`
}

// File is the on-disk pipeline configuration
type File struct {
	Clients   []*models.OAuthClient `yaml:"clients"`
	Pipelines []*Definition         `yaml:"pipelines"`
}

// LoadFile reads and validates a pipeline file. Every step must name a
// controller present in registry.
func LoadFile(path string, registry *Registry) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline file: %w", err)
	}
	return ParseFile(data, registry)
}

// ParseFile decodes and validates pipeline YAML
func ParseFile(data []byte, registry *Registry) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pipeline file: %w", err)
	}

	seen := make(map[string]bool, len(file.Pipelines))
	for i, def := range file.Pipelines {
		if def == nil {
			return nil, fmt.Errorf("pipelines[%d]: empty entry", i)
		}
		def.Method = strings.ToUpper(def.Method)
		if def.Method == "" {
			def.Method = "GET"
		}
		if err := def.Validate(registry); err != nil {
			return nil, err
		}

		route := def.Method + " " + def.Path
		if seen[route] {
			return nil, fmt.Errorf("pipeline %s: duplicate route %s", def.Name, route)
		}
		seen[route] = true
	}

	for i, c := range file.Clients {
		if c == nil {
			return nil, fmt.Errorf("clients[%d]: empty entry", i)
		}
		if err := utils.ValidateStruct(c); err != nil {
			return nil, fmt.Errorf("oauth client %q: %w", c.Name, err)
		}
	}

	return &file, nil
}

// Validate checks the definition shape and that its controllers exist
func (d *Definition) Validate(registry *Registry) error {
	if err := utils.ValidateStruct(d); err != nil {
		return fmt.Errorf("pipeline %s: %w", d.Name, err)
	}
	if registry == nil {
		return nil
	}
	for _, step := range d.Steps {
		if _, err := registry.Lookup(step.Controller); err != nil {
			return fmt.Errorf("pipeline %s step %s: %w", d.Name, step.Name, err)
		}
	}
	return nil
}
