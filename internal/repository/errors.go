package repository

import "errors"

// ErrDuplicate is returned when a write violates a uniqueness rule,
// such as a second region with the same label on one camera.
var ErrDuplicate = errors.New("duplicate record")
