package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/history"
)

var xlsxHistoryHeader = []string{
	"Date", "Time", "Voltage (V)", "Current (A)", "Temperature (°C)",
	"SOC", "State", "Cells",
}

var xlsxAlertsHeader = []string{"Severity", "Kind", "Message", "Timestamp"}

// WriteXLSX renders one battery as a workbook with a history sheet and
// an alerts sheet.
func WriteXLSX(w io.Writer, doc *history.Document, alertList []alerts.Alert) error {
	f := excelize.NewFile()
	defer f.Close()

	const historySheet = "History"
	const alertsSheet = "Alerts"
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(alertsSheet); err != nil {
		return err
	}

	for col, title := range xlsxHistoryHeader {
		if err := setCellValue(f, historySheet, col+1, 1, title); err != nil {
			return err
		}
	}
	for i := range doc.History {
		entry := &doc.History[i]
		cellCount := 0
		if entry.CellData != nil {
			cellCount = entry.CellData.CellCount()
		}
		values := []interface{}{
			entry.Day,
			entry.Time,
			float64(entry.Voltage) / 1000,
			float64(entry.Current) / 1000,
			float64(entry.Temperature) / 1000,
			entry.SOC,
			entry.BaseState,
			cellCount,
		}
		for col, value := range values {
			if err := setCellValue(f, historySheet, col+1, i+2, value); err != nil {
				return err
			}
		}
	}

	for col, title := range xlsxAlertsHeader {
		if err := setCellValue(f, alertsSheet, col+1, 1, title); err != nil {
			return err
		}
	}
	for i, alert := range alertList {
		values := []interface{}{
			string(alert.Severity),
			string(alert.Kind),
			alert.Message,
			alert.Timestamp,
		}
		for col, value := range values {
			if err := setCellValue(f, alertsSheet, col+1, i+2, value); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
