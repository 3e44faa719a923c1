package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/database"
	"github.com/swgdb/swgdb/internal/iff"
	"github.com/swgdb/swgdb/internal/tre"
	"github.com/swgdb/swgdb/internal/utils"
)

var exportArchive string

var datatableCmd = &cobra.Command{
	Use:   "datatable",
	Short: "Work with IFF datatable files",
}

var datatableExportCmd = &cobra.Command{
	Use:   "export <file>...",
	Short: "Export datatables into a SQLite database",
	Long: `Export parses each datatable file and writes its rows into the SQLite
database configured with --database, one SQL table per datatable. With
--archive the file arguments name entries inside a TRE archive instead
of paths on disk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		ctx := cmd.Context()

		db, err := database.New(database.DefaultOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		read, closeSource, err := datatableSource()
		if err != nil {
			return err
		}
		defer closeSource()

		exporter := database.NewExporter(db, nil)
		progress := utils.NewProgress(len(args), showProgress())

		var rows int
		for i, name := range args {
			progress.Update(i+1, name)

			data, err := read(name)
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}

			table, err := iff.ParseDataTable(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", name, err)
			}

			if err := exporter.ExportTable(ctx, tableName(name), table); err != nil {
				return fmt.Errorf("exporting %s: %w", name, err)
			}

			rows += len(table.Rows)
		}

		progress.Finish()

		slog.Info("Export complete",
			"database", cfg.Database,
			"tables", len(args),
			"rows", utils.Number(int64(rows)),
			"duration", utils.Duration(time.Since(start)))

		return nil
	},
}

// datatableSource returns a reader for datatable contents, either from
// the filesystem or from entries of the archive named by --archive.
func datatableSource() (func(string) ([]byte, error), func(), error) {
	if exportArchive == "" {
		return os.ReadFile, func() {}, nil
	}

	archive, err := tre.OpenFile(exportArchive)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	return archive.Extract, func() { archive.Close() }, nil
}

// tableName derives the SQL table name from a datatable path, e.g.
// "datatables/creature/spawns.iff" becomes "spawns".
func tableName(file string) string {
	base := path.Base(filepath.ToSlash(file))
	return strings.TrimSuffix(base, path.Ext(base))
}

func init() {
	rootCmd.AddCommand(datatableCmd)
	datatableCmd.AddCommand(datatableExportCmd)
	datatableExportCmd.Flags().StringVar(&exportArchive, "archive", "", "read datatables from entries of this TRE archive")
}
