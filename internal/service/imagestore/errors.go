package imagestore

import "errors"

var (
	// ErrImageAccess wraps every failure to reach an image source.
	ErrImageAccess = errors.New("image access failed")
	// ErrImageNotFound means no source holds the image file.
	ErrImageNotFound = errors.New("image file not found")
)
