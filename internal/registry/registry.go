// Package registry implements the in-memory slot registry and
// allocation engine: slot lifecycle, occupancy bookkeeping and revenue
// accrual for a single parking lot.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"parklot/internal/events"
	"parklot/internal/fees"
	"parklot/internal/model"
)

// Visitor admission window, local time. Entry is allowed from the open
// hour up to but excluding the close hour.
const (
	VisitorOpenHour  = 9
	VisitorCloseHour = 17
)

// PlateValidator checks a license plate before allocation. The default
// accepts any non-empty, length-bounded plate without the persistence
// delimiter; stricter formats (regional plate patterns) can be plugged
// in by the caller.
type PlateValidator func(plate string) error

// DefaultPlateValidator is the baseline plate check.
func DefaultPlateValidator(plate string) error {
	if plate == "" {
		return fmt.Errorf("%w: empty license plate", ErrInvalidParameter)
	}
	if len(plate) > model.MaxLicenseLen {
		return fmt.Errorf("%w: license plate too long", ErrInvalidParameter)
	}
	if strings.Contains(plate, "|") {
		return fmt.Errorf("%w: license plate contains reserved character", ErrInvalidParameter)
	}
	return nil
}

// Lot is the registry root: the ordered slot collection plus aggregate
// counters. It assumes exclusive access per call; embedders running
// concurrent callers must wrap it in their own mutual exclusion.
type Lot struct {
	slots        []*model.Slot // most recently added first
	totalSlots   int
	occupied     int
	todayRevenue float64
	monthRevenue float64
	lastUpdate   time.Time

	plateValid PlateValidator
	bus        *events.Bus
	now        func() time.Time
}

// New allocates an empty lot with the configured capacity. The capacity
// is advisory bookkeeping: adding more slots than configured is
// allowed.
func New(totalSlots int) *Lot {
	return &Lot{
		totalSlots: totalSlots,
		plateValid: DefaultPlateValidator,
		now:        time.Now,
	}
}

// SetPlateValidator replaces the license plate check.
func (l *Lot) SetPlateValidator(v PlateValidator) {
	if v != nil {
		l.plateValid = v
	}
}

// SetEventBus attaches a bus that receives slot lifecycle events.
func (l *Lot) SetEventBus(bus *events.Bus) {
	l.bus = bus
}

func (l *Lot) publish(event events.Event) {
	if l.bus != nil {
		event.CreatedAt = l.now()
		l.bus.Publish(event)
	}
}

// TotalSlots returns the configured capacity.
func (l *Lot) TotalSlots() int { return l.totalSlots }

// OccupiedCount returns the number of occupied slots.
func (l *Lot) OccupiedCount() int { return l.occupied }

// TodayRevenue returns revenue collected today.
func (l *Lot) TodayRevenue() float64 { return l.todayRevenue }

// MonthRevenue returns revenue collected this month.
func (l *Lot) MonthRevenue() float64 { return l.monthRevenue }

func validSlotID(id int) bool {
	return id >= model.MinSlotID && id <= model.MaxSlotID
}

// CreateSlot constructs a free slot. The slot is not inserted; pass it
// to AddSlot.
func (l *Lot) CreateSlot(id int, location string) (*model.Slot, error) {
	if !validSlotID(id) {
		return nil, fmt.Errorf("%w: slot id %d outside %d..%d", ErrInvalidParameter, id, model.MinSlotID, model.MaxSlotID)
	}
	if location == "" || len(location) > model.MaxLocationLen {
		return nil, fmt.Errorf("%w: location length invalid", ErrInvalidParameter)
	}
	return &model.Slot{ID: id, Location: location, Status: model.Free}, nil
}

// AddSlot inserts a slot at the head of the collection. The id must be
// unique within the lot; the configured capacity is not enforced.
func (l *Lot) AddSlot(slot *model.Slot) error {
	if slot == nil {
		return fmt.Errorf("%w: nil slot", ErrInvalidParameter)
	}
	if !validSlotID(slot.ID) {
		return fmt.Errorf("%w: slot id %d outside %d..%d", ErrInvalidParameter, slot.ID, model.MinSlotID, model.MaxSlotID)
	}
	if l.FindByID(slot.ID) != nil {
		return fmt.Errorf("%w: id %d", ErrDuplicateID, slot.ID)
	}
	l.slots = append([]*model.Slot{slot}, l.slots...)
	return nil
}

// FindByID returns the slot with the given id, or nil.
func (l *Lot) FindByID(id int) *model.Slot {
	for _, s := range l.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindByLicense returns the occupied slot holding the exact plate, or
// nil. Free slots are never matched.
func (l *Lot) FindByLicense(plate string) *model.Slot {
	if plate == "" {
		return nil
	}
	for _, s := range l.slots {
		if s.Occupied() && s.LicensePlate == plate {
			return s
		}
	}
	return nil
}

// FindByOwner returns the first occupied slot whose owner name contains
// the given substring, or nil. With several matching owners the result
// depends on collection order.
func (l *Lot) FindByOwner(name string) *model.Slot {
	if name == "" {
		return nil
	}
	for _, s := range l.slots {
		if s.Occupied() && strings.Contains(s.OwnerName, name) {
			return s
		}
	}
	return nil
}

// Allocate assigns an occupant to a free slot. Visitors may only enter
// between VisitorOpenHour and VisitorCloseHour, checked against the
// local wall clock at the moment of the call.
func (l *Lot) Allocate(id int, owner, plate, contact string, category model.Category) error {
	if owner == "" || len(owner) > model.MaxNameLen {
		return fmt.Errorf("%w: owner name length invalid", ErrInvalidParameter)
	}
	if err := l.plateValid(plate); err != nil {
		return err
	}
	if len(contact) > model.MaxContactLen {
		return fmt.Errorf("%w: contact too long", ErrInvalidParameter)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category", ErrInvalidParameter)
	}
	if !validSlotID(id) {
		return fmt.Errorf("%w: slot id %d", ErrInvalidParameter, id)
	}

	slot := l.FindByID(id)
	if slot == nil {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if slot.Occupied() {
		return fmt.Errorf("%w: id %d", ErrAlreadyOccupied, id)
	}
	if l.FindByLicense(plate) != nil {
		return fmt.Errorf("%w: %s", ErrLicenseInUse, plate)
	}

	now := l.now()
	if category == model.Visitor {
		if hour := now.Hour(); hour < VisitorOpenHour || hour >= VisitorCloseHour {
			return fmt.Errorf("%w: %02d:00 (allowed %d:00-%d:00)", ErrOutsideVisitorHours, hour, VisitorOpenHour, VisitorCloseHour)
		}
	}

	slot.OwnerName = owner
	slot.LicensePlate = plate
	slot.Contact = contact
	slot.Category = category
	slot.EntryTime = now
	slot.ExitTime = time.Time{}
	slot.Status = model.Occupied
	l.occupied++

	l.publish(events.Event{
		Type:         events.TypeSlotAllocated,
		SlotID:       slot.ID,
		Category:     category,
		LicensePlate: plate,
	})
	return nil
}

// Deallocate releases an occupied slot and returns the fee owed for the
// stay: hourly for visitors, overdue monthly billing for residents
// (which also advances the slot's due date). The fee is credited to the
// revenue totals.
func (l *Lot) Deallocate(id int) (float64, error) {
	slot := l.FindByID(id)
	if slot == nil {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if !slot.Occupied() {
		return 0, fmt.Errorf("%w: id %d", ErrAlreadyFree, id)
	}

	now := l.now()
	var fee float64
	switch slot.Category {
	case model.Visitor:
		fee = fees.VisitorFee(slot.EntryTime, now)
	case model.Resident:
		fee, slot.ResidentDue = fees.ResidentOverdueFee(slot.ResidentDue, now)
	}
	if fee > 0 {
		l.creditRevenue(fee, now)
	}

	plate := slot.LicensePlate
	category := slot.Category
	slot.ClearOccupant()
	slot.ExitTime = now
	slot.Status = model.Free
	l.occupied--

	l.publish(events.Event{
		Type:         events.TypeSlotReleased,
		SlotID:       slot.ID,
		Category:     category,
		LicensePlate: plate,
		Fee:          fee,
	})
	return fee, nil
}

// RecordResidentPayment bills an occupied resident slot for the given
// number of 30-day months in advance. The due date advances from the
// later of now and the current due date, and the amount is credited to
// revenue.
func (l *Lot) RecordResidentPayment(id, months int) (float64, error) {
	if months <= 0 || months > 12 {
		return 0, fmt.Errorf("%w: months must be 1..12", ErrInvalidParameter)
	}
	slot := l.FindByID(id)
	if slot == nil {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if !slot.Occupied() || slot.Category != model.Resident {
		return 0, fmt.Errorf("%w: only occupied resident slots can be billed", ErrInvalidParameter)
	}

	now := l.now()
	base := slot.ResidentDue
	if base.Before(now) {
		base = now
	}
	slot.ResidentDue = base.Add(time.Duration(months) * fees.BillingMonth)

	amount := float64(months) * fees.ResidentMonthlyRate
	l.creditRevenue(amount, now)

	l.publish(events.Event{
		Type:         events.TypeResidentBilled,
		SlotID:       slot.ID,
		Category:     model.Resident,
		LicensePlate: slot.LicensePlate,
		Fee:          amount,
	})
	return amount, nil
}

// Delete removes a free slot and decrements the configured capacity.
// Occupied slots cannot be deleted.
func (l *Lot) Delete(id int) error {
	for i, s := range l.slots {
		if s.ID != id {
			continue
		}
		if s.Occupied() {
			return fmt.Errorf("%w: id %d", ErrAlreadyOccupied, id)
		}
		l.slots = append(l.slots[:i], l.slots[i+1:]...)
		l.totalSlots--
		l.publish(events.Event{Type: events.TypeSlotDeleted, SlotID: id})
		return nil
	}
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// UpdateSlotInfo edits slot attributes in place. Empty arguments leave
// the corresponding field unchanged. Location may change any time;
// owner and contact only apply while the slot is occupied.
func (l *Lot) UpdateSlotInfo(id int, location, owner, contact string) error {
	slot := l.FindByID(id)
	if slot == nil {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if location != "" {
		if len(location) > model.MaxLocationLen {
			return fmt.Errorf("%w: location too long", ErrInvalidParameter)
		}
		slot.Location = location
	}
	if owner != "" && slot.Occupied() {
		if len(owner) > model.MaxNameLen {
			return fmt.Errorf("%w: owner name too long", ErrInvalidParameter)
		}
		slot.OwnerName = owner
	}
	if contact != "" && slot.Occupied() {
		if len(contact) > model.MaxContactLen {
			return fmt.Errorf("%w: contact too long", ErrInvalidParameter)
		}
		slot.Contact = contact
	}
	return nil
}

// Slots returns a snapshot of all slots in collection order (most
// recently added first). The returned slots are borrowed views owned by
// the lot.
func (l *Lot) Slots() []*model.Slot {
	return append([]*model.Slot(nil), l.slots...)
}

// FreeSlots returns a snapshot of free slots in collection order.
func (l *Lot) FreeSlots() []*model.Slot {
	var out []*model.Slot
	for _, s := range l.slots {
		if !s.Occupied() {
			out = append(out, s)
		}
	}
	return out
}

// OccupiedSlots returns a snapshot of occupied slots in collection
// order.
func (l *Lot) OccupiedSlots() []*model.Slot {
	var out []*model.Slot
	for _, s := range l.slots {
		if s.Occupied() {
			out = append(out, s)
		}
	}
	return out
}

// SlotsByDuration returns occupied slots sorted by parking duration.
// Ties keep collection order.
func (l *Lot) SlotsByDuration(ascending bool) []*model.Slot {
	out := l.OccupiedSlots()
	now := l.now()
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].ParkingDuration(now), out[j].ParkingDuration(now)
		if ascending {
			return di < dj
		}
		return di > dj
	})
	return out
}

// Recount rebuilds the occupied counter by scanning the collection.
// Called after loading persisted data so the counter matches reality
// even when the source file was hand-edited.
func (l *Lot) Recount() {
	n := 0
	for _, s := range l.slots {
		if s.Occupied() {
			n++
		}
	}
	l.occupied = n
}

// creditRevenue adds a fee to the running totals, resetting them first
// when the wall-clock day or month has rolled over since the last
// update.
func (l *Lot) creditRevenue(fee float64, now time.Time) {
	if !l.lastUpdate.IsZero() {
		ly, lm, ld := l.lastUpdate.Date()
		y, m, d := now.Date()
		if ly != y || lm != m {
			l.monthRevenue = 0
			l.todayRevenue = 0
		} else if ld != d {
			l.todayRevenue = 0
		}
	}
	l.todayRevenue += fee
	l.monthRevenue += fee
	l.lastUpdate = now
}
