package keys

import (
	"os"
)

// Ref is a reference to key material. It is one of Literal, Env, File or Remote.
type Ref interface {
	// Value returns the textual value the reference points at, read at call time
	Value() string
	isRef()
}

// Literal is key material given inline, typically a shared secret
type Literal string

// Env names an environment variable holding the key material, or its path/URL
type Env string

// File is a filesystem path to key material
type File string

// Remote is the URL of a JWKS endpoint
type Remote string

// Value returns the literal text
func (l Literal) Value() string { return string(l) }

// Value reads the environment variable at call time
func (e Env) Value() string { return os.Getenv(string(e)) }

// Value returns the path
func (f File) Value() string { return string(f) }

// Value returns the URL
func (r Remote) Value() string { return string(r) }

func (Literal) isRef() {}
func (Env) isRef()     {}
func (File) isRef()    {}
func (Remote) isRef()  {}

// FromInput builds a reference from a step input value and its "from environment" flag.
// When fromEnv is set the value is the name of the environment variable to read.
func FromInput(value string, fromEnv bool) Ref {
	if fromEnv {
		return Env(value)
	}
	return Literal(value)
}
