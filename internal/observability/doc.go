// Package observability builds the process logger.
//
// Every component receives a *zap.Logger; request and pipeline identifiers
// are attached as fields by the HTTP middleware and the pipeline runner.
package observability
