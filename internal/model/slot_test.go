package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlot_ParkingDuration(t *testing.T) {
	entry := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := entry.Add(2 * time.Hour)

	tests := []struct {
		name     string
		slot     Slot
		expected time.Duration
	}{
		{
			name:     "free slot reports zero",
			slot:     Slot{Status: Free, EntryTime: entry},
			expected: 0,
		},
		{
			name:     "occupied without exit uses now",
			slot:     Slot{Status: Occupied, EntryTime: entry},
			expected: 2 * time.Hour,
		},
		{
			name:     "exit time wins over now",
			slot:     Slot{Status: Occupied, EntryTime: entry, ExitTime: entry.Add(30 * time.Minute)},
			expected: 30 * time.Minute,
		},
		{
			name:     "occupied with zero entry reports zero",
			slot:     Slot{Status: Occupied},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.slot.ParkingDuration(now))
		})
	}
}

func TestSlot_ClearOccupant(t *testing.T) {
	s := Slot{OwnerName: "Zhang", LicensePlate: "A123", Contact: "555"}
	s.ClearOccupant()
	assert.Empty(t, s.OwnerName)
	assert.Empty(t, s.LicensePlate)
	assert.Empty(t, s.Contact)
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, Resident.Valid())
	assert.True(t, Visitor.Valid())
	assert.False(t, Category(7).Valid())
}
