package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknown          = errors.New("unknown")
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrResourceNotFound = errors.New("resource not found")
	ErrUnsupported      = errors.New("unsupported")
	ErrAlreadyClosed    = errors.New("already closed")
)

// ConstructionError reports a failed setup step. Components that fail to
// construct leave the engine unusable, so callers treat it as fatal.
type ConstructionError struct {
	Component string
	Resource  string
	Err       error
}

func NewConstructionError(component, resource string, err error) *ConstructionError {
	return &ConstructionError{Component: component, Resource: resource, Err: err}
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: failed to create %s: %v", e.Component, e.Resource, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// LoadError carries the location of a failure while reading an asset file.
// Line is 1-based; zero means the failure is not tied to a line.
type LoadError struct {
	Path  string
	Line  int
	Token string
	Err   error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0 && e.Token != "":
		return fmt.Sprintf("%s:%d: %q: %v", e.Path, e.Line, e.Token, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
