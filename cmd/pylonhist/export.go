package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/export"
	"github.com/pylontech-tools/pylonhist/fleet"
	"github.com/pylontech-tools/pylonhist/history"
)

func runExport(args *argSpec) error {
	manager := fleet.NewManager(args.thresholds())
	loaded := loadFiles(manager, args.Export.Files)
	if len(loaded) == 0 {
		return fmt.Errorf("no batteries loaded")
	}

	out, closeOut, err := openOutput(args.Export.Output, args.Export.Format)
	if err != nil {
		return err
	}
	defer closeOut()

	filters := alerts.Filters{
		Temperature:  !args.Export.NoTemp,
		Voltage:      !args.Export.NoVoltage,
		CriticalOnly: args.Export.CriticalOnly,
	}

	switch args.Export.Format {
	case "csv":
		battery := manager.Selected()
		return export.WriteCSV(out, battery.Doc, manager.Thresholds())
	case "json":
		battery := manager.Selected()
		return export.WriteJSON(out, battery.Doc, alerts.Filter(battery.Alerts, filters), manager.Thresholds())
	case "html":
		battery := manager.Selected()
		return export.WriteReport(out, battery.Doc, alerts.Filter(battery.Alerts, filters))
	case "xlsx":
		battery := manager.Selected()
		return export.WriteXLSX(out, battery.Doc, alerts.Filter(battery.Alerts, filters))
	case "fleet":
		batteries := manager.Batteries()
		docs := make([]*history.Document, 0, len(batteries))
		for _, battery := range batteries {
			docs = append(docs, battery.Doc)
		}
		return export.WriteFleetJSON(out, docs, manager.Thresholds(), version)
	default:
		return fmt.Errorf("unsupported export format: %s", args.Export.Format)
	}
}

// openOutput resolves the export destination. XLSX output is binary and
// never goes to a terminal by default.
func openOutput(path, format string) (io.Writer, func(), error) {
	if path == "" {
		if format == "xlsx" {
			path = "pylonhist-export.xlsx"
		} else {
			return os.Stdout, func() {}, nil
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create %s: %w", path, err)
	}
	log.Infof("Writing %s export to %s", format, path)
	return f, func() { f.Close() }, nil
}
