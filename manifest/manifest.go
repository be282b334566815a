// Package manifest declares the plugin's steps and their configurable inputs
// for host discovery.
package manifest

import (
	"fmt"

	"github.com/EcoFlowJS/ecoflow-authentication/utils"
)

// Kind is the step category shown by the host
type Kind string

const (
	KindConfiguration Kind = "Configuration"
	KindMiddleware    Kind = "Middleware"
)

// InputType is the editor the host renders for an input
type InputType string

const (
	InputString       InputType = "String"
	InputHiddenString InputType = "HiddenString"
	InputCheckbox     InputType = "Checkbox"
	InputRadio        InputType = "Radio"
	InputSelectPicker InputType = "SelectPicker"
	InputListBox      InputType = "ListBox"
)

// Controller identifiers bound to steps
const (
	ControllerJWTSign            = "jwtSign"
	ControllerJWTVerify          = "jwtVerify"
	ControllerJWKSPublish        = "jwksPublish"
	ControllerGoogleAuthURL      = "googleAuthURL"
	ControllerGoogleCodeExchange = "googleCodeExchange"
	ControllerGoogleUserDetails  = "googleUserDetails"
	ControllerGoogleAuthenticate = "googleAuthenticate"
)

// Input describes one configurable field of a step
type Input struct {
	Name     string    `json:"name" validate:"required"`
	Label    string    `json:"label" validate:"required"`
	Type     InputType `json:"type" validate:"required,oneof=String HiddenString Checkbox Radio SelectPicker ListBox"`
	Default  any       `json:"defaultValue,omitempty"`
	Hint     string    `json:"hint,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required,omitempty"`
}

// Step describes one pipeline step the plugin provides
type Step struct {
	Name        string  `json:"name" validate:"required"`
	Kind        Kind    `json:"type" validate:"required,oneof=Configuration Middleware"`
	Description string  `json:"description,omitempty"`
	Controller  string  `json:"controller" validate:"required"`
	Inputs      []Input `json:"inputs" validate:"dive"`
}

// Manifest is the static plugin declaration
type Manifest struct {
	Name        string `json:"name" validate:"required"`
	Version     string `json:"version" validate:"required"`
	Description string `json:"description"`
	Steps       []Step `json:"steps" validate:"required,min=1,dive"`
}

// Step returns the step bound to controller
func (m *Manifest) Step(controller string) (*Step, bool) {
	for i := range m.Steps {
		if m.Steps[i].Controller == controller {
			return &m.Steps[i], true
		}
	}
	return nil, false
}

// Controllers returns every controller identifier in declaration order
func (m *Manifest) Controllers() []string {
	ids := make([]string, 0, len(m.Steps))
	for _, s := range m.Steps {
		ids = append(ids, s.Controller)
	}
	return ids
}

// Validate checks the manifest shape, uniqueness of step and input names, and
// that choice inputs carry options
func (m *Manifest) Validate() error {
	if err := utils.ValidateStruct(m); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	steps := make(map[string]bool, len(m.Steps))
	controllers := make(map[string]bool, len(m.Steps))
	for _, s := range m.Steps {
		if steps[s.Name] {
			return fmt.Errorf("duplicate step %q", s.Name)
		}
		if controllers[s.Controller] {
			return fmt.Errorf("duplicate controller %q", s.Controller)
		}
		steps[s.Name], controllers[s.Controller] = true, true

		inputs := make(map[string]bool, len(s.Inputs))
		for _, in := range s.Inputs {
			if inputs[in.Name] {
				return fmt.Errorf("step %q: duplicate input %q", s.Name, in.Name)
			}
			inputs[in.Name] = true

			if (in.Type == InputRadio || in.Type == InputSelectPicker) && len(in.Options) == 0 {
				return fmt.Errorf("step %q: input %q needs options", s.Name, in.Name)
			}
		}
	}
	return nil
}

// Defaults returns the default input values of the step bound to controller
func (m *Manifest) Defaults(controller string) map[string]any {
	out := map[string]any{}
	step, ok := m.Step(controller)
	if !ok {
		return out
	}
	for _, in := range step.Inputs {
		if in.Default != nil {
			out[in.Name] = in.Default
		}
	}
	return out
}
