package registry

import "errors"

// Operation errors returned by the registry. All are plain values the
// caller can match with errors.Is and recover from; nothing here
// panics.
var (
	// ErrInvalidParameter covers empty, overlong or out-of-range input.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDuplicateID is returned when adding a slot whose id is taken.
	ErrDuplicateID = errors.New("slot id already exists")

	// ErrNotFound is returned when no slot matches the given id, plate
	// or owner.
	ErrNotFound = errors.New("slot not found")

	// ErrAlreadyOccupied is returned when allocating or deleting an
	// occupied slot.
	ErrAlreadyOccupied = errors.New("slot already occupied")

	// ErrAlreadyFree is returned when deallocating a free slot.
	ErrAlreadyFree = errors.New("slot already free")

	// ErrLicenseInUse is returned when the license plate is parked in
	// another slot.
	ErrLicenseInUse = errors.New("license plate already in use")

	// ErrOutsideVisitorHours is returned when a visitor allocation is
	// attempted outside the admission window.
	ErrOutsideVisitorHours = errors.New("visitor entry outside allowed hours")
)
