package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parklot/internal/model"
	"parklot/internal/registry"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func tempFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "parklot.dat")
}

func buildLot(t *testing.T) *registry.Lot {
	t.Helper()
	lot := registry.New(5)
	for id, location := range map[int]string{1: "A-1", 2: "A-2", 3: "B-1"} {
		slot, err := lot.CreateSlot(id, location)
		require.NoError(t, err)
		require.NoError(t, lot.AddSlot(slot))
	}
	return lot
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	lot := buildLot(t)
	slot := lot.FindByID(2)
	slot.OwnerName = "Zhang Wei"
	slot.LicensePlate = "HU-A12345"
	slot.Contact = "13800000000"
	slot.Category = model.Visitor
	slot.EntryTime = time.Unix(1770000000, 0)
	slot.Status = model.Occupied
	lot.FindByID(3).ResidentDue = time.Unix(1780000000, 0)
	lot.Recount()

	path := tempFile(t)
	require.NoError(t, Save(lot, path))

	loaded, skipped, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)

	assert.Equal(t, 5, loaded.TotalSlots())
	assert.Equal(t, 1, loaded.OccupiedCount())
	require.Len(t, loaded.Slots(), 3)

	got := loaded.FindByID(2)
	require.NotNil(t, got)
	assert.Equal(t, "A-2", got.Location)
	assert.Equal(t, "Zhang Wei", got.OwnerName)
	assert.Equal(t, "HU-A12345", got.LicensePlate)
	assert.Equal(t, "13800000000", got.Contact)
	assert.Equal(t, model.Visitor, got.Category)
	assert.Equal(t, model.Occupied, got.Status)
	assert.Equal(t, int64(1770000000), got.EntryTime.Unix())
	assert.True(t, got.ExitTime.IsZero())

	free := loaded.FindByID(3)
	require.NotNil(t, free)
	assert.Equal(t, model.Free, free.Status)
	assert.Empty(t, free.OwnerName)
	assert.Equal(t, int64(1780000000), free.ResidentDue.Unix())

	// Collection order survives the round trip.
	originalIDs := idsOf(lot)
	assert.Equal(t, originalIDs, idsOf(loaded))
}

func idsOf(lot *registry.Lot) []int {
	var ids []int
	for _, s := range lot.Slots() {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestSave_RejectsDelimiterInFields(t *testing.T) {
	lot := buildLot(t)
	lot.FindByID(1).Location = "row|7"

	path := tempFile(t)
	err := Save(lot, path)
	assert.ErrorIs(t, err, ErrFormat)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written on a rejected save")
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.dat"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_HeaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"wrong tag", "PARK|5\nSLOT|1|A-1\n"},
		{"non-numeric total", "LOT|five\n"},
		{"zero total", "LOT|0\n"},
		{"negative total", "LOT|-2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempFile(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, _, err := Load(path)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestLoad_LenientSlotParsing(t *testing.T) {
	content := strings.Join([]string{
		"LOT|10",
		"SLOT|1|A-1|Zhang|HU-A12345|555|0|1770000000|0|1|0",
		"SLOT|bogus|A-2",               // non-numeric id
		"SLOT|2|A-2|||x|9|0|0|0|0",     // unknown category
		"SLOT|3|B-1",                   // truncated: defaults for the rest
		"SLOT|1|dup",                   // duplicate id
		"",                             // blank lines are ignored
		"SLOT|4|B-2|||0|0|0|notanum|0", // non-numeric time field
	}, "\n") + "\n"

	path := tempFile(t)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lot, skipped, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)

	require.Len(t, lot.Slots(), 2)
	assert.Equal(t, 10, lot.TotalSlots())

	full := lot.FindByID(1)
	require.NotNil(t, full)
	assert.Equal(t, model.Occupied, full.Status)
	assert.Equal(t, "Zhang", full.OwnerName)

	partial := lot.FindByID(3)
	require.NotNil(t, partial)
	assert.Equal(t, "B-1", partial.Location)
	assert.Equal(t, model.Free, partial.Status)
	assert.True(t, partial.EntryTime.IsZero())
}

func TestLoad_RecomputesOccupiedCount(t *testing.T) {
	// Hand-edited file: header claims nothing, one slot line says
	// occupied. The loaded counter must come from scanning.
	content := strings.Join([]string{
		"LOT|5",
		"SLOT|1|A-1|Zhang|HU-A1|555|0|1770000000|0|1|0",
		"SLOT|2|A-2||||0|0|0|0|0",
	}, "\n") + "\n"

	path := tempFile(t)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lot, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, lot.OccupiedCount())
}

func TestBackupService(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "parklot.dat")
	require.NoError(t, os.WriteFile(dataPath, []byte("LOT|5\n"), 0o644))

	logger := testLogger()
	backupDir := filepath.Join(dir, "backups")
	svc := NewBackupService(dataPath, BackupConfig{Enabled: true, Path: backupDir, RetentionDays: 7}, logger)

	path, err := svc.Perform()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LOT|5\n", string(data))

	t.Run("disabled service is a no-op", func(t *testing.T) {
		off := NewBackupService(dataPath, BackupConfig{Enabled: false}, logger)
		path, err := off.Perform()
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("cleanup removes stale backups", func(t *testing.T) {
		stale := filepath.Join(backupDir, "backup_20200101_000000.dat")
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
		old := time.Now().AddDate(0, 0, -30)
		require.NoError(t, os.Chtimes(stale, old, old))

		svc.CleanupOld()

		_, err := os.Stat(stale)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(path)
		assert.NoError(t, err, "recent backup survives cleanup")
	})
}
