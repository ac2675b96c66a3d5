package core

import (
	"errors"
)

var (
	ErrResourceCreation = errors.New("native resource creation failed")
	// ErrUnknown marks a native call that reported success but produced
	// nothing usable.
	ErrUnknown = errors.New("unknown")
)
