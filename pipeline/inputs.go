package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/EcoFlowJS/ecoflow-authentication/keys"
)

// Inputs is a step's configuration as declared in the manifest
type Inputs map[string]any

// String returns the input as text; non-string scalars are formatted
func (in Inputs) String(key string) string {
	switch v := in[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return v.String()
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Bool reports whether a checkbox-style input is set
func (in Inputs) Bool(key string) bool {
	switch v := in[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// Strings returns a list-box input. A string value is split on commas.
func (in Inputs) Strings(key string) []string {
	var raw []string
	switch v := in[key].(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(v, ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ref returns the input as a key reference, reading it from the environment
// when the fromEnvKey checkbox is set
func (in Inputs) Ref(key, fromEnvKey string) keys.Ref {
	return keys.FromInput(in.String(key), in.Bool(fromEnvKey))
}

// Value resolves the input, reading os.Getenv(<input>) when fromEnvKey is set
func (in Inputs) Value(key, fromEnvKey string) string {
	value := in.String(key)
	if fromEnvKey != "" && in.Bool(fromEnvKey) {
		return strings.TrimSpace(os.Getenv(value))
	}
	return value
}

// Or returns the input or def when it is empty
func (in Inputs) Or(key, def string) string {
	if v := in.String(key); v != "" {
		return v
	}
	return def
}
