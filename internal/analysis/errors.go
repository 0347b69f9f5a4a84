package analysis

import "errors"

var (
	// ErrNotFound is returned when the image being analyzed does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidGeometry is returned for a malformed region polygon or threshold.
	ErrInvalidGeometry = errors.New("invalid region geometry")
	// ErrInvalidParameter is returned for a non-positive pixel density.
	ErrInvalidParameter = errors.New("invalid parameter")
)
