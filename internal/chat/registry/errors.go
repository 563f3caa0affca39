package registry

import "errors"

var (
	// ErrFull - returned by Admit when every slot is taken.
	ErrFull = errors.New("registry: no free slot")

	// ErrHandleKept - returned by Admit for a handle which is registered already.
	ErrHandleKept = errors.New("registry: handle is kept already")

	// ErrCapacity - returned by New for non-positive capacity.
	ErrCapacity = errors.New("registry: capacity must be greater than 0")
)
