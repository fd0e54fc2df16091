package model

import "time"

// Field length limits for text attributes.
const (
	MaxLocationLen = 99
	MaxNameLen     = 49
	MaxLicenseLen  = 49
	MaxContactLen  = 49
)

// Slot id range accepted by the registry.
const (
	MinSlotID = 1
	MaxSlotID = 99999
)

// Category classifies the tenant occupying a slot.
type Category int

const (
	Resident Category = 0
	Visitor  Category = 1
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case Resident:
		return "resident"
	case Visitor:
		return "visitor"
	default:
		return "unknown"
	}
}

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	return c == Resident || c == Visitor
}

// Status is the lifecycle state of a slot.
type Status int

const (
	Free     Status = 0
	Occupied Status = 1
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case Free:
		return "free"
	case Occupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// Slot represents one physical parking space.
//
// While occupied the occupant fields (OwnerName, LicensePlate, Contact)
// are set and EntryTime is non-zero; deallocation clears them and stamps
// ExitTime. ResidentDue survives across allocations: the billing cycle
// belongs to the slot, not to the tenant.
type Slot struct {
	ID           int       `json:"id"`
	Location     string    `json:"location"`
	OwnerName    string    `json:"owner_name,omitempty"`
	LicensePlate string    `json:"license_plate,omitempty"`
	Contact      string    `json:"contact,omitempty"`
	Category     Category  `json:"category"`
	EntryTime    time.Time `json:"entry_time,omitempty"`
	ExitTime     time.Time `json:"exit_time,omitempty"`
	ResidentDue  time.Time `json:"resident_due,omitempty"`
	Status       Status    `json:"status"`
}

// Occupied reports whether the slot currently holds a vehicle.
func (s *Slot) Occupied() bool {
	return s.Status == Occupied
}

// ParkingDuration returns how long the current (or last) stay has
// lasted. For an occupied slot the duration runs from EntryTime to now;
// a free slot always reports zero.
func (s *Slot) ParkingDuration(now time.Time) time.Duration {
	if s.Status == Free || s.EntryTime.IsZero() {
		return 0
	}
	if !s.ExitTime.IsZero() {
		return s.ExitTime.Sub(s.EntryTime)
	}
	return now.Sub(s.EntryTime)
}

// ClearOccupant resets all occupant fields.
func (s *Slot) ClearOccupant() {
	s.OwnerName = ""
	s.LicensePlate = ""
	s.Contact = ""
}
