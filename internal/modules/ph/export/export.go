// Package export writes a result series as an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/timerange"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

const (
	SheetName   = "pH"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	datetimeFormat = "yyyy-mm-dd hh:mm:ss"
)

var header = []any{"datetime", "event_time", "ph"}

// Filename is the download name for a selection, e.g.
// pH_report_2024-01-01_2024-01-03.xlsx.
func Filename(sel timerange.Selection) string {
	return fmt.Sprintf("pH_report_%s_%s.xlsx", sel.StartDate, sel.EndDate)
}

// WriteXLSX writes one sheet with a header row and one row per observation:
// UTC datetime, epoch milliseconds, pH. No observations gives a header-only sheet.
func WriteXLSX(w io.Writer, obs []types.Observation) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(datetimeFormat)})
	if err != nil {
		return fmt.Errorf("datetime style: %w", err)
	}
	if err := f.SetColStyle(SheetName, "A", style); err != nil {
		return fmt.Errorf("datetime column style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 20); err != nil {
		return fmt.Errorf("datetime column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 16); err != nil {
		return fmt.Errorf("event_time column width: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, o := range obs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{o.Timestamp.UTC(), o.Timestamp.UnixMilli(), o.PH}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
