// Package report exports a lot snapshot to an Excel workbook.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"parklot/internal/registry"
	"parklot/internal/stats"
)

var slotColumns = []string{
	"ID", "Location", "Owner", "License plate", "Contact",
	"Category", "Status", "Entry time", "Exit time", "Resident due",
}

// ExportFile writes the current slots and a statistics summary to an
// xlsx file at path.
func ExportFile(lot *registry.Lot, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSlotsSheet(f, lot); err != nil {
		return err
	}
	if err := writeSummarySheet(f, lot); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func writeSlotsSheet(f *excelize.File, lot *registry.Lot) error {
	const sheet = "Slots"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range slotColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(slotColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, style)
	}

	for rowIdx, s := range lot.Slots() {
		row := []interface{}{
			s.ID, s.Location, s.OwnerName, s.LicensePlate, s.Contact,
			s.Category.String(), s.Status.String(),
			formatTime(s.EntryTime), formatTime(s.ExitTime), formatTime(s.ResidentDue),
		}
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, lot *registry.Lot) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	snapshot := stats.Take(lot)
	rows := [][]interface{}{
		{"Total slots", snapshot.TotalSlots},
		{"Occupied slots", snapshot.OccupiedSlots},
		{"Free slots", snapshot.FreeSlots},
		{"Occupancy %", snapshot.OccupancyPct},
		{"Today revenue", snapshot.TodayRevenue},
		{"Month revenue", snapshot.MonthRevenue},
		{"Generated at", time.Now().Format(time.RFC3339)},
	}
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
