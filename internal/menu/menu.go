// Package menu implements the interactive console for the lot
// registry. It is thin glue: every choice maps to one registry, store
// or stats call, with errors rendered as user messages.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"parklot/internal/events"
	"parklot/internal/metrics"
	"parklot/internal/model"
	"parklot/internal/registry"
	"parklot/internal/report"
	"parklot/internal/stats"
	"parklot/internal/store"
)

// Menu drives the interactive console session.
type Menu struct {
	lot        *registry.Lot
	dataPath   string
	reportPath string
	backup     *store.BackupService
	bus        *events.Bus
	logger     *zerolog.Logger
	in         *bufio.Scanner
	out        io.Writer
}

// New creates a menu bound to the given lot and streams. A freshly
// loaded lot is re-attached to bus so journal and metrics keep
// receiving events after a load.
func New(lot *registry.Lot, dataPath, reportPath string, backup *store.BackupService, bus *events.Bus, logger *zerolog.Logger, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		lot:        lot,
		dataPath:   dataPath,
		reportPath: reportPath,
		backup:     backup,
		bus:        bus,
		logger:     logger,
		in:         bufio.NewScanner(in),
		out:        out,
	}
}

// Lot returns the currently active lot (it changes after a load).
func (m *Menu) Lot() *registry.Lot { return m.lot }

// Run loops until the user quits or input ends.
func (m *Menu) Run() {
	for {
		m.printMenu()
		if !m.in.Scan() {
			return
		}
		choice := strings.TrimSpace(m.in.Text())
		if choice == "0" || strings.EqualFold(choice, "q") {
			return
		}
		m.dispatch(choice)
	}
}

func (m *Menu) printMenu() {
	fmt.Fprint(m.out, `
--- Parking lot ---
 1) add slot          7) list free slots
 2) allocate slot     8) list occupied slots
 3) release slot      9) list by duration
 4) find slot        10) statistics
 5) update slot      11) save data
 6) delete slot      12) load data
13) resident payment 14) export report
 0) quit
> `)
}

func (m *Menu) dispatch(choice string) {
	switch choice {
	case "1":
		m.addSlot()
	case "2":
		m.allocate()
	case "3":
		m.deallocate()
	case "4":
		m.find()
	case "5":
		m.updateSlot()
	case "6":
		m.deleteSlot()
	case "7":
		m.printSlots(m.lot.FreeSlots())
	case "8":
		m.printSlots(m.lot.OccupiedSlots())
	case "9":
		m.listByDuration()
	case "10":
		m.showStats()
	case "11":
		m.save()
	case "12":
		m.load()
	case "13":
		m.residentPayment()
	case "14":
		m.exportReport()
	default:
		fmt.Fprintln(m.out, "unknown choice")
	}
}

func (m *Menu) readLine(prompt string) (string, bool) {
	fmt.Fprintf(m.out, "%s: ", prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) readInt(prompt string) (int, bool) {
	text, ok := m.readLine(prompt)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		fmt.Fprintln(m.out, "not a number")
		return 0, false
	}
	return n, true
}

func (m *Menu) addSlot() {
	id, ok := m.readInt("slot id")
	if !ok {
		return
	}
	location, ok := m.readLine("location")
	if !ok {
		return
	}
	slot, err := m.lot.CreateSlot(id, location)
	if err == nil {
		err = m.lot.AddSlot(slot)
	}
	if err != nil {
		m.fail(err)
		return
	}
	fmt.Fprintf(m.out, "slot %d added\n", id)
}

func (m *Menu) allocate() {
	id, ok := m.readInt("slot id")
	if !ok {
		return
	}
	owner, ok := m.readLine("owner name")
	if !ok {
		return
	}
	plate, ok := m.readLine("license plate")
	if !ok {
		return
	}
	contact, ok := m.readLine("contact")
	if !ok {
		return
	}
	catText, ok := m.readLine("category (r=resident, v=visitor)")
	if !ok {
		return
	}
	category := model.Resident
	if strings.EqualFold(catText, "v") {
		category = model.Visitor
	}

	if err := m.lot.Allocate(id, owner, plate, contact, category); err != nil {
		m.fail(err)
		return
	}
	metrics.IncSlotAllocated(category.String())
	metrics.SetOccupiedSlots(m.lot.OccupiedCount())
	m.logger.Info().Int("slot_id", id).Str("category", category.String()).Msg("slot allocated")
	fmt.Fprintf(m.out, "slot %d allocated\n", id)
}

func (m *Menu) deallocate() {
	id, ok := m.readInt("slot id")
	if !ok {
		return
	}
	fee, err := m.lot.Deallocate(id)
	if err != nil {
		m.fail(err)
		return
	}
	metrics.IncSlotReleased()
	metrics.AddRevenue(fee)
	metrics.SetOccupiedSlots(m.lot.OccupiedCount())
	m.logger.Info().Int("slot_id", id).Float64("fee", fee).Msg("slot released")
	fmt.Fprintf(m.out, "slot %d released, fee %.2f\n", id, fee)
}

func (m *Menu) find() {
	mode, ok := m.readLine("find by (1=id, 2=license, 3=owner)")
	if !ok {
		return
	}
	var slot *model.Slot
	switch mode {
	case "1":
		id, ok := m.readInt("slot id")
		if !ok {
			return
		}
		slot = m.lot.FindByID(id)
	case "2":
		plate, ok := m.readLine("license plate")
		if !ok {
			return
		}
		slot = m.lot.FindByLicense(plate)
	case "3":
		name, ok := m.readLine("owner name")
		if !ok {
			return
		}
		slot = m.lot.FindByOwner(name)
	default:
		fmt.Fprintln(m.out, "unknown choice")
		return
	}
	if slot == nil {
		fmt.Fprintln(m.out, "no matching slot")
		return
	}
	m.printSlots([]*model.Slot{slot})
}

func (m *Menu) updateSlot() {
	id, ok := m.readInt("slot id")
	if !ok {
		return
	}
	location, ok := m.readLine("new location (empty to keep)")
	if !ok {
		return
	}
	owner, ok := m.readLine("new owner (empty to keep)")
	if !ok {
		return
	}
	contact, ok := m.readLine("new contact (empty to keep)")
	if !ok {
		return
	}
	if err := m.lot.UpdateSlotInfo(id, location, owner, contact); err != nil {
		m.fail(err)
		return
	}
	fmt.Fprintf(m.out, "slot %d updated\n", id)
}

func (m *Menu) deleteSlot() {
	id, ok := m.readInt("slot id")
	if !ok {
		return
	}
	if err := m.lot.Delete(id); err != nil {
		m.fail(err)
		return
	}
	fmt.Fprintf(m.out, "slot %d deleted\n", id)
}

func (m *Menu) listByDuration() {
	order, ok := m.readLine("order (a=ascending, d=descending)")
	if !ok {
		return
	}
	m.printSlots(m.lot.SlotsByDuration(strings.EqualFold(order, "a")))
}

func (m *Menu) showStats() {
	s := stats.Take(m.lot)
	fmt.Fprintf(m.out, "total %d, occupied %d, free %d, occupancy %.1f%%\n",
		s.TotalSlots, s.OccupiedSlots, s.FreeSlots, s.OccupancyPct)
	fmt.Fprintf(m.out, "revenue today %.2f, this month %.2f\n", s.TodayRevenue, s.MonthRevenue)

	now := time.Now()
	for _, cat := range []model.Category{model.Resident, model.Visitor} {
		today := stats.CountByDay(m.lot, now, cat)
		monthly, _ := stats.CountByMonth(m.lot, now.Year(), int(now.Month()), cat)
		fmt.Fprintf(m.out, "%s entries: %d today, %d this month\n", cat, today, monthly)
	}
}

func (m *Menu) save() {
	if err := store.Save(m.lot, m.dataPath); err != nil {
		m.fail(err)
		return
	}
	fmt.Fprintf(m.out, "data saved to %s\n", m.dataPath)

	if m.backup != nil {
		if _, err := m.backup.Perform(); err != nil {
			m.logger.Error().Err(err).Msg("backup failed")
		}
		m.backup.CleanupOld()
	}
}

func (m *Menu) load() {
	lot, skipped, err := store.Load(m.dataPath)
	if err != nil {
		m.fail(err)
		return
	}
	if skipped > 0 {
		fmt.Fprintf(m.out, "warning: %d malformed lines skipped\n", skipped)
	}
	lot.SetEventBus(m.bus)
	m.lot = lot
	metrics.SetOccupiedSlots(lot.OccupiedCount())
	fmt.Fprintf(m.out, "loaded %d slots from %s\n", len(lot.Slots()), m.dataPath)
}

func (m *Menu) residentPayment() {
	id, ok := m.readInt("slot id")
	if !ok {
		return
	}
	months, ok := m.readInt("months to pay (1-12)")
	if !ok {
		return
	}
	amount, err := m.lot.RecordResidentPayment(id, months)
	if err != nil {
		m.fail(err)
		return
	}
	metrics.AddRevenue(amount)
	m.logger.Info().Int("slot_id", id).Float64("amount", amount).Msg("resident payment recorded")
	fmt.Fprintf(m.out, "payment of %.2f recorded for slot %d\n", amount, id)
}

func (m *Menu) exportReport() {
	if err := report.ExportFile(m.lot, m.reportPath); err != nil {
		m.fail(err)
		return
	}
	fmt.Fprintf(m.out, "report written to %s\n", m.reportPath)
}

func (m *Menu) printSlots(slots []*model.Slot) {
	if len(slots) == 0 {
		fmt.Fprintln(m.out, "no slots")
		return
	}
	now := time.Now()
	for _, s := range slots {
		fmt.Fprintf(m.out, "#%d %-20s %-8s %s", s.ID, s.Location, s.Status, s.Category)
		if s.Occupied() {
			fmt.Fprintf(m.out, "  %s (%s) parked %s", s.OwnerName, s.LicensePlate,
				s.ParkingDuration(now).Round(time.Minute))
		}
		fmt.Fprintln(m.out)
	}
}

func (m *Menu) fail(err error) {
	fmt.Fprintf(m.out, "error: %s\n", errorMessage(err))
}

// errorMessage maps registry errors to user-facing text; anything
// unmatched falls through to the raw error string.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, registry.ErrInvalidParameter):
		return "invalid input: " + err.Error()
	case errors.Is(err, registry.ErrDuplicateID):
		return "a slot with this id already exists"
	case errors.Is(err, registry.ErrNotFound):
		return "slot not found"
	case errors.Is(err, registry.ErrAlreadyOccupied):
		return "slot is occupied"
	case errors.Is(err, registry.ErrAlreadyFree):
		return "slot is already free"
	case errors.Is(err, registry.ErrLicenseInUse):
		return "this license plate is already parked"
	case errors.Is(err, registry.ErrOutsideVisitorHours):
		return fmt.Sprintf("visitors may only enter between %d:00 and %d:00",
			registry.VisitorOpenHour, registry.VisitorCloseHour)
	case errors.Is(err, store.ErrFormat):
		return "data file is malformed: " + err.Error()
	default:
		return err.Error()
	}
}
