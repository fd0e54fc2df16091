package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"parklot/internal/model"
	"parklot/internal/registry"
)

func TestExportFile(t *testing.T) {
	lot := registry.New(5)
	for id, location := range map[int]string{1: "A-1", 2: "A-2"} {
		slot, err := lot.CreateSlot(id, location)
		require.NoError(t, err)
		require.NoError(t, lot.AddSlot(slot))
	}
	require.NoError(t, lot.Allocate(1, "Zhang", "HU-A12345", "555", model.Resident))

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportFile(lot, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Slots", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Slots")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per slot")
	assert.Equal(t, "ID", rows[0][0])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, "Total slots", summary[0][0])
	assert.Equal(t, "5", summary[0][1])
}
