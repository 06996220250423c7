package client

import (
	"errors"
	"fmt"
)

var (
	// ErrStatus means the provider answered with a status other than "success".
	ErrStatus = errors.New("provider reported failure")
	// ErrHTTP means the provider answered with an HTTP error status.
	ErrHTTP = errors.New("unexpected HTTP status")
	// ErrDecode means the response body did not match the expected shape.
	ErrDecode = errors.New("malformed provider response")
)

type Op string

const (
	OpListAll     Op = "list all"
	OpImages      Op = "images"
	OpRandomImage Op = "random image"
	OpProbe       Op = "probe"
)

// FetchError is the failure outcome of every provider call.
type FetchError struct {
	Op    Op
	Scope Scope
	Err   error
}

func (e *FetchError) Error() string {
	if e.Scope.Category == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Scope, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
