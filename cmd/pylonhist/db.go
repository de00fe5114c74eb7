package main

import (
	"fmt"
	"os"
)

type dbListCmd struct{}

type dbDeleteCmd struct {
	ID string `arg:"positional,required" help:"battery id to delete"`
}

type dbRenameCmd struct {
	ID   string `arg:"positional,required" help:"battery id to rename"`
	Name string `arg:"positional,required" help:"new display name"`
}

type dbClearCmd struct{}

type dbStatsCmd struct{}

type dbExportCmd struct {
	Output string `arg:"-o,--output" help:"output file (default: stdout)"`
}

type dbImportCmd struct {
	File string `arg:"positional,required" help:"fleet JSON file to import"`
}

type dbCmd struct {
	List   *dbListCmd   `arg:"subcommand:list" help:"list stored batteries"`
	Delete *dbDeleteCmd `arg:"subcommand:delete" help:"delete a stored battery"`
	Rename *dbRenameCmd `arg:"subcommand:rename" help:"rename a stored battery"`
	Clear  *dbClearCmd  `arg:"subcommand:clear" help:"delete every stored battery"`
	Stats  *dbStatsCmd  `arg:"subcommand:stats" help:"show database statistics"`
	Export *dbExportCmd `arg:"subcommand:export" help:"export the stored fleet as JSON"`
	Import *dbImportCmd `arg:"subcommand:import" help:"import a fleet JSON file"`
}

func runDB(args *argSpec) error {
	s, err := openStore(args.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	cmd := args.DB
	switch {
	case cmd.List != nil:
		records, err := s.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no stored batteries")
			return nil
		}
		for _, record := range records {
			fmt.Printf("%-16s %-24s %s (loaded %s)\n",
				record.BatteryID, record.DisplayName, record.Filename,
				record.LoadedAt.Format("02/01/2006 15:04:05"))
		}
		return nil

	case cmd.Delete != nil:
		if err := s.Delete(cmd.Delete.ID); err != nil {
			return err
		}
		log.Infof("Deleted battery %s", cmd.Delete.ID)
		return nil

	case cmd.Rename != nil:
		if err := s.Rename(cmd.Rename.ID, cmd.Rename.Name); err != nil {
			return err
		}
		log.Infof("Renamed battery %s to %q", cmd.Rename.ID, cmd.Rename.Name)
		return nil

	case cmd.Clear != nil:
		if err := s.Clear(); err != nil {
			return err
		}
		log.Info("Cleared the battery database")
		return nil

	case cmd.Stats != nil:
		stats, err := s.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("batteries:        %d\n", stats.BatteriesCount)
		fmt.Printf("history entries:  %d\n", stats.TotalHistoryEntries)
		fmt.Printf("approximate size: %d bytes\n", stats.SizeBytes)
		return nil

	case cmd.Export != nil:
		data, err := s.ExportJSON(version)
		if err != nil {
			return err
		}
		if cmd.Export.Output == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(cmd.Export.Output, data, 0644); err != nil {
			return err
		}
		log.Infof("Exported fleet to %s", cmd.Export.Output)
		return nil

	case cmd.Import != nil:
		data, err := os.ReadFile(cmd.Import.File)
		if err != nil {
			return err
		}
		result, err := s.ImportJSON(data)
		if err != nil {
			return fmt.Errorf("import rejected: %w", err)
		}
		log.Infof("Imported %d batteries (%d skipped as already present)", result.Imported, result.Skipped)
		return nil

	default:
		return fmt.Errorf("no db command given, see --help")
	}
}
