// Package pipeline is the host-side contract between the plugin's controllers
// and the runtime that sequences them.
package pipeline

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Payload is the open map shared and mutated by every step of a pipeline
type Payload map[string]any

// Outcome tells the runner whether to advance to the next step
type Outcome int

const (
	// Halt stops the pipeline after the current step
	Halt Outcome = iota
	// Continue advances to the next step
	Continue
)

// String returns the outcome name
func (o Outcome) String() string {
	if o == Continue {
		return "continue"
	}
	return "halt"
}

// ControllerFunc is one step implementation
type ControllerFunc func(ctx context.Context, c *Context) (Outcome, error)

// Context is the per-invocation state handed to each controller
type Context struct {
	// ID identifies the invocation in logs
	ID string
	// Payload is shared across all steps of the invocation
	Payload Payload
	// Inputs holds the current step's configuration
	Inputs Inputs
	// Request is the incoming HTTP request, if any
	Request *http.Request

	status int
}

// NewContext creates a context around payload and an optional request
func NewContext(id string, payload Payload, r *http.Request) *Context {
	if id == "" {
		id = uuid.NewString()
	}
	if payload == nil {
		payload = Payload{}
	}
	return &Context{
		ID:      id,
		Payload: payload,
		Inputs:  Inputs{},
		Request: r,
	}
}

// SetStatus records the response status
func (c *Context) SetStatus(code int) {
	c.status = code
}

// Status returns the recorded status, zero when unset
func (c *Context) Status() int {
	return c.status
}

// Query returns a query string parameter of the request
func (c *Context) Query(key string) string {
	if c.Request == nil || c.Request.URL == nil {
		return ""
	}
	return c.Request.URL.Query().Get(key)
}

// Header returns a request header
func (c *Context) Header(key string) string {
	if c.Request == nil {
		return ""
	}
	return c.Request.Header.Get(key)
}

// Fail writes value at key, sets status and halts
func (c *Context) Fail(key string, status int, value any) (Outcome, error) {
	c.Payload[key] = value
	c.SetStatus(status)
	return Halt, nil
}

// Succeed writes value at key and continues
func (c *Context) Succeed(key string, value any) (Outcome, error) {
	c.Payload[key] = value
	return Continue, nil
}
