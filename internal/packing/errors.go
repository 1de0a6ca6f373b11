package packing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned when an item or container has a non-positive length, width or height.
	ErrInvalidDimension = errors.New("dimensions must be positive")
	// ErrInvalidCapacity is returned when an item weight or container capacity is negative.
	ErrInvalidCapacity = errors.New("weight and capacity must be non-negative")
	// ErrValueOutOfRange is returned when a size, weight or capacity is too
	// large to be compared exactly at the run's precision.
	ErrValueOutOfRange = errors.New("value out of range")
	// ErrEmptyContainerSet is returned when a run is started without containers.
	ErrEmptyContainerSet = errors.New("at least one container is required")
	// ErrMissingID is returned when an item or container has an empty identity.
	ErrMissingID = errors.New("identity must not be empty")
	// ErrDuplicateID is returned when two items or two containers share an identity.
	ErrDuplicateID = errors.New("duplicate identity")
	// ErrInvalidRotation is returned when an item restricts itself to an unknown rotation.
	ErrInvalidRotation = errors.New("invalid rotation")
	// ErrInvalidOptions is returned when run options are out of range.
	ErrInvalidOptions = errors.New("invalid packing options")
)

// ValidationError ties a validation failure to the offending record.
type ValidationError struct {
	Kind string // "item" or "container"
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func itemError(id string, err error) error {
	return &ValidationError{Kind: "item", ID: id, Err: err}
}

func containerError(id string, err error) error {
	return &ValidationError{Kind: "container", ID: id, Err: err}
}
