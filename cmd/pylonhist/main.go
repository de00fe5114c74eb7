/*
pylonhist - Parses and analyzes Pylontech battery history dumps.
Copyright (C) 2025, pylontech-tools

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	arg "github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/fleet"
	"github.com/pylontech-tools/pylonhist/history"
	"github.com/pylontech-tools/pylonhist/store"
)

var version = "No version provided"

var log = logrus.New()

type loadCmd struct {
	Files []string `arg:"positional,required" help:"history dump files to load"`
	Save  bool     `arg:"--save" help:"persist the loaded batteries in the local database"`
}

type analyzeCmd struct {
	Files  []string `arg:"positional" help:"history dump files to analyze"`
	FromDB bool     `arg:"--from-db" help:"analyze every battery stored in the local database"`
	Cells  bool     `arg:"--cells" help:"print per-cell imbalance of the most recent sample"`
}

type exportCmd struct {
	Files        []string `arg:"positional,required" help:"history dump files to export"`
	Format       string   `arg:"-f,--format" default:"csv" help:"export format (csv, json, xlsx, html, fleet)"`
	Output       string   `arg:"-o,--output" help:"output file (default: stdout, or derived for xlsx)"`
	NoTemp       bool     `arg:"--no-temp" help:"leave temperature alerts out of the export"`
	NoVoltage    bool     `arg:"--no-voltage" help:"leave voltage alerts out of the export"`
	CriticalOnly bool     `arg:"--critical-only" help:"export only critical alerts"`
}

type argSpec struct {
	Load    *loadCmd    `arg:"subcommand:load" help:"parse history dumps and show a summary"`
	Analyze *analyzeCmd `arg:"subcommand:analyze" help:"run the full fleet analysis"`
	Export  *exportCmd  `arg:"subcommand:export" help:"export history dumps to other formats"`
	DB      *dbCmd      `arg:"subcommand:db" help:"manage the local battery database"`

	DBPath   string `arg:"--db" help:"path to the battery database"`
	LogLevel string `arg:"-l,--log-level" default:"info" help:"set the logging level (debug, info, warn, error)"`

	TempWarning         float64 `arg:"--temp-warning" help:"temperature warning threshold in °C"`
	TempCritical        float64 `arg:"--temp-critical" help:"temperature critical threshold in °C"`
	VoltageHigh         float64 `arg:"--voltage-high" help:"high voltage warning threshold in V"`
	VoltageLow          float64 `arg:"--voltage-low" help:"low voltage warning threshold in V"`
	VoltageHighCritical float64 `arg:"--voltage-high-critical" help:"high voltage critical threshold in V"`
	VoltageLowCritical  float64 `arg:"--voltage-low-critical" help:"low voltage critical threshold in V"`
}

func (argSpec) Version() string {
	return version
}

func procArgs() argSpec {
	defaults := alerts.DefaultThresholds()
	args := argSpec{
		DBPath:              defaultDBPath(),
		TempWarning:         defaults.TempWarning,
		TempCritical:        defaults.TempCritical,
		VoltageHigh:         defaults.VoltageHigh,
		VoltageLow:          defaults.VoltageLow,
		VoltageHighCritical: defaults.VoltageHighCritical,
		VoltageLowCritical:  defaults.VoltageLowCritical,
	}
	arg.MustParse(&args)
	return args
}

func (a *argSpec) thresholds() alerts.Thresholds {
	return alerts.Thresholds{
		TempWarning:         a.TempWarning,
		TempCritical:        a.TempCritical,
		VoltageHigh:         a.VoltageHigh,
		VoltageLow:          a.VoltageLow,
		VoltageHighCritical: a.VoltageHighCritical,
		VoltageLowCritical:  a.VoltageLowCritical,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pylonhist.db"
	}
	return filepath.Join(home, ".pylonhist", "batteries.db")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
		log.Warn("Unknown log level, defaulting to info")
	}
}

type customFormatter struct{}

func (f *customFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("[%s] %s\n", strings.ToUpper(entry.Level.String()), entry.Message)), nil
}

func main() {
	if err := runMain(); err != nil {
		log.Fatal(err.Error())
	}
}

func runMain() error {
	log.SetFormatter(new(customFormatter))
	args := procArgs()
	setLogLevel(args.LogLevel)

	log.Debug("Running version: ", version)

	switch {
	case args.Load != nil:
		return runLoad(&args)
	case args.Analyze != nil:
		return runAnalyze(&args)
	case args.Export != nil:
		return runExport(&args)
	case args.DB != nil:
		return runDB(&args)
	default:
		return fmt.Errorf("no command given, see --help")
	}
}

// loadFiles reads the given paths and feeds them through the fleet
// manager. A file that cannot be read or whose battery id collides is
// reported and skipped; the rest still load.
func loadFiles(manager *fleet.Manager, paths []string) []string {
	var files []fleet.File
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("Could not read %s: %v", path, err)
			continue
		}
		files = append(files, fleet.File{Name: filepath.Base(path), Content: string(content)})
	}

	loaded, errs := manager.Load(files)
	for _, err := range errs {
		log.Error(err.Error())
	}
	return loaded
}

func runLoad(args *argSpec) error {
	manager := fleet.NewManager(args.thresholds())
	loaded := loadFiles(manager, args.Load.Files)
	if len(loaded) == 0 {
		return fmt.Errorf("no batteries loaded")
	}

	for _, battery := range manager.Batteries() {
		printBatterySummary(battery)
	}

	if args.Load.Save {
		s, err := openStore(args.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()
		batteries := manager.Batteries()
		docs := make([]*history.Document, 0, len(batteries))
		for _, battery := range batteries {
			docs = append(docs, battery.Doc)
		}
		if err := s.SaveAll(docs); err != nil {
			// Persistence failures must not invalidate the in-memory
			// session, surface and carry on.
			log.Errorf("Could not save batteries: %v", err)
		} else {
			log.Infof("Saved %d batteries to %s", len(docs), args.DBPath)
		}
	}
	return nil
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create database directory: %w", err)
	}
	return store.Open(path)
}
