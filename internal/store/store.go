// Package store persists a lot to a line-oriented pipe-delimited text
// file and restores it. The format is intentionally simple: one header
// line, one line per slot, no escaping and no checksum. Loading is
// lenient: malformed slot lines are skipped and counted rather than
// failing the whole file.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"parklot/internal/model"
	"parklot/internal/registry"
)

const (
	headerTag = "LOT"
	slotTag   = "SLOT"
	delimiter = "|"
)

// ErrFormat reports an unusable file: missing or invalid header.
var ErrFormat = errors.New("invalid data file format")

// Save writes the lot to path, truncating any existing file. Slots are
// written in collection order. Field values containing the delimiter
// are rejected before anything is written; the format has no escaping.
func Save(lot *registry.Lot, path string) error {
	if lot == nil || path == "" {
		return fmt.Errorf("%w: nil lot or empty path", ErrFormat)
	}

	slots := lot.Slots()
	for _, s := range slots {
		for _, field := range []string{s.Location, s.OwnerName, s.LicensePlate, s.Contact} {
			if strings.Contains(field, delimiter) {
				return fmt.Errorf("%w: slot %d field contains %q", ErrFormat, s.ID, delimiter)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s%s%d\n", headerTag, delimiter, lot.TotalSlots())
	for _, s := range slots {
		fmt.Fprintf(w, "%s|%d|%s|%s|%s|%s|%d|%d|%d|%d|%d\n",
			slotTag, s.ID, s.Location, s.OwnerName, s.LicensePlate, s.Contact,
			int(s.Category), epoch(s.EntryTime), epoch(s.ExitTime),
			int(s.Status), epoch(s.ResidentDue))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads a lot from path. It fails when the file cannot be opened
// or its header is missing or invalid; individual slot lines that do
// not parse are skipped, and the count of skipped lines is returned for
// the caller to surface. The occupied counter is recomputed by scanning
// the loaded slots, never trusted from the file.
func Load(path string) (*registry.Lot, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("%w: missing header line", ErrFormat)
	}
	total, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, 0, err
	}

	skipped := 0
	seen := make(map[int]bool)
	var parsed []*model.Slot
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		slot, ok := parseSlotLine(line)
		if !ok {
			skipped++
			continue
		}
		if seen[slot.ID] {
			// Duplicate id in a hand-edited file; first occurrence wins.
			skipped++
			continue
		}
		seen[slot.ID] = true
		parsed = append(parsed, slot)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read %s: %w", path, err)
	}

	// AddSlot prepends, so inserting in reverse file order restores the
	// collection order the file was written in.
	lot := registry.New(total)
	for i := len(parsed) - 1; i >= 0; i-- {
		if err := lot.AddSlot(parsed[i]); err != nil {
			skipped++
		}
	}

	lot.Recount()
	return lot, skipped, nil
}

func parseHeader(line string) (int, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), delimiter)
	if len(fields) < 2 || fields[0] != headerTag {
		return 0, fmt.Errorf("%w: bad header %q", ErrFormat, line)
	}
	total, err := strconv.Atoi(fields[1])
	if err != nil || total <= 0 {
		return 0, fmt.Errorf("%w: bad total slots %q", ErrFormat, fields[1])
	}
	return total, nil
}

// parseSlotLine decodes one SLOT line. A truncated line keeps whatever
// prefix of fields parsed; the rest stay at their defaults. Any field
// that is present but unparsable invalidates the whole line.
func parseSlotLine(line string) (*model.Slot, bool) {
	fields := strings.Split(line, delimiter)
	if len(fields) < 3 || fields[0] != slotTag {
		return nil, false
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, false
	}
	slot := &model.Slot{ID: id, Location: fields[2]}

	if len(fields) > 3 {
		slot.OwnerName = fields[3]
	}
	if len(fields) > 4 {
		slot.LicensePlate = fields[4]
	}
	if len(fields) > 5 {
		slot.Contact = fields[5]
	}
	if len(fields) > 6 {
		cat, err := strconv.Atoi(fields[6])
		if err != nil || !model.Category(cat).Valid() {
			return nil, false
		}
		slot.Category = model.Category(cat)
	}
	if len(fields) > 7 {
		if slot.EntryTime, err = parseEpoch(fields[7]); err != nil {
			return nil, false
		}
	}
	if len(fields) > 8 {
		if slot.ExitTime, err = parseEpoch(fields[8]); err != nil {
			return nil, false
		}
	}
	if len(fields) > 9 {
		st, err := strconv.Atoi(fields[9])
		if err != nil || (st != int(model.Free) && st != int(model.Occupied)) {
			return nil, false
		}
		slot.Status = model.Status(st)
	}
	if len(fields) > 10 {
		if slot.ResidentDue, err = parseEpoch(fields[10]); err != nil {
			return nil, false
		}
	}
	return slot, true
}

// epoch maps the zero time to 0 so unset timestamps round-trip.
func epoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func parseEpoch(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if sec == 0 {
		return time.Time{}, nil
	}
	return time.Unix(sec, 0), nil
}
