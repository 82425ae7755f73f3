package uid

import "errors"

// ErrEmptyUID is returned when registering or renaming to an empty UID.
var ErrEmptyUID = errors.New("empty uid")

// ErrDuplicateUID is returned when a UID is already registered.
var ErrDuplicateUID = errors.New("duplicate uid")

// ErrUIDNotFound is returned when resolving or unregistering an unknown UID.
var ErrUIDNotFound = errors.New("uid not found")

// ErrTypeMismatch is returned when a UID resolves to an object of another kind.
var ErrTypeMismatch = errors.New("uid type mismatch")
