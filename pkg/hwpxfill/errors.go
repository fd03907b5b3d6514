// Package hwpxfill provides custom error types for better error handling and reporting.
package hwpxfill

import (
	"fmt"
	"strings"
)

// ContainerError represents an error while opening, reading, or writing
// the container as a whole. It is the only error kind that aborts a run.
type ContainerError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *ContainerError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("container error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("container error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("container error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("container error during %s", e.Operation)
}

func (e *ContainerError) Unwrap() error {
	return e.Cause
}

// NewContainerError creates a new container error
func NewContainerError(operation, path string, cause error) error {
	return &ContainerError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// PartError represents a failure to parse or serialize a single part.
// Part errors are recovered locally: the part is emitted unchanged and the
// run continues.
type PartError struct {
	Part  string
	Cause error
}

func (e *PartError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("part error in '%s': %v", e.Part, e.Cause)
	}
	return fmt.Sprintf("part error in '%s'", e.Part)
}

func (e *PartError) Unwrap() error {
	return e.Cause
}

// NewPartError creates a new part error
func NewPartError(part string, cause error) error {
	return &PartError{
		Part:  part,
		Cause: cause,
	}
}

// ResolveError represents an image slot whose indirect binary reference
// could not be mapped to a binary-asset part. Non-fatal: the image is
// left unmodified.
type ResolveError struct {
	Slot     string
	BinaryID string
}

func (e *ResolveError) Error() string {
	if e.BinaryID != "" {
		return fmt.Sprintf("cannot resolve binary item '%s' for image slot '%s'", e.BinaryID, e.Slot)
	}
	return fmt.Sprintf("cannot locate picture reference for image slot '%s'", e.Slot)
}

// NewResolveError creates a new resolve error
func NewResolveError(slot, binaryID string) error {
	return &ResolveError{
		Slot:     slot,
		BinaryID: binaryID,
	}
}

// MediaTypeError represents an image submission whose declared media type
// is not in the allow-list. The submission is rejected; the rest of the
// run proceeds.
type MediaTypeError struct {
	Slot      string
	MediaType string
}

func (e *MediaTypeError) Error() string {
	return fmt.Sprintf("unsupported media type '%s' for image slot '%s'", e.MediaType, e.Slot)
}

// NewMediaTypeError creates a new media type error
func NewMediaTypeError(slot, mediaType string) error {
	return &MediaTypeError{
		Slot:      slot,
		MediaType: mediaType,
	}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// IsContainerError checks if an error is a container error
func IsContainerError(err error) bool {
	_, ok := err.(*ContainerError)
	return ok
}

// IsPartError checks if an error is a part error
func IsPartError(err error) bool {
	_, ok := err.(*PartError)
	return ok
}

// IsResolveError checks if an error is a resolve error
func IsResolveError(err error) bool {
	_, ok := err.(*ResolveError)
	return ok
}

// IsMediaTypeError checks if an error is a media type error
func IsMediaTypeError(err error) bool {
	_, ok := err.(*MediaTypeError)
	return ok
}
