package interfaces

import "errors"

// ErrNotFound is returned by every repository backend when a requested
// record does not exist. Callers check this sentinel instead of depending
// on a concrete backend.
var ErrNotFound = errors.New("record not found")
