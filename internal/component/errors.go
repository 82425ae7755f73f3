package component

import "errors"

// ErrForeignSection is returned when a wing segment names a section of
// another component.
var ErrForeignSection = errors.New("section belongs to another component")
