// Package export renders battery documents and their alerts for
// operator consumption: CSV, JSON, a printable HTML report and an XLSX
// workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/history"
)

// csvHeader matches the column layout the original operator tooling
// expects, French labels included.
var csvHeader = []string{
	"Date", "Heure", "Tension(V)", "Courant(A)", "Temperature(°C)",
	"SOC", "Etat", "TempAlert", "VoltageAlert",
}

// WriteCSV renders one battery's history as CSV. The alert columns
// re-evaluate each row against the given thresholds so the output is
// self-contained.
func WriteCSV(w io.Writer, doc *history.Document, thresholds alerts.Thresholds) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range doc.History {
		entry := &doc.History[i]
		tempC := float64(entry.Temperature) / 1000
		voltageV := float64(entry.Voltage) / 1000
		currentA := float64(entry.Current) / 1000
		tempAlert := tempC > thresholds.TempWarning
		voltageAlert := voltageV > thresholds.VoltageHigh || voltageV < thresholds.VoltageLow

		record := []string{
			entry.Day,
			entry.Time,
			fmt.Sprintf("%.2f", voltageV),
			fmt.Sprintf("%.2f", currentA),
			fmt.Sprintf("%.1f", tempC),
			entry.SOC,
			entry.BaseState,
			fmt.Sprintf("%t", tempAlert),
			fmt.Sprintf("%t", voltageAlert),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
