package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/tre"
	"github.com/swgdb/swgdb/internal/utils"
)

var extractPrefix string

var treExtractCmd = &cobra.Command{
	Use:   "extract <archive> <output-dir>",
	Short: "Extract archive entries to a directory",
	Long: `Extract writes every entry of the archive into the output directory,
recreating the entry paths as subdirectories. Use --prefix to extract
only the entries whose names start with a given path.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		archive, err := tre.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer archive.Close()

		outDir := args[1]

		var selected []tre.EntryInfo
		for _, e := range archive.Entries() {
			if extractPrefix == "" || strings.HasPrefix(e.Name, extractPrefix) {
				selected = append(selected, e)
			}
		}

		if len(selected) == 0 {
			slog.Info("No entries matched", "prefix", extractPrefix)
			return nil
		}

		progress := utils.NewProgress(len(selected), showProgress())

		var written int64
		for i, e := range selected {
			progress.Update(i+1, e.Name)

			target, err := entryPath(outDir, e.Name)
			if err != nil {
				return err
			}

			data, err := archive.Extract(e.Name)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", e.Name, err)
			}

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", e.Name, err)
			}
			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", e.Name, err)
			}

			progress.AddBytes(len(data))
			written += int64(len(data))
		}

		progress.Finish()

		slog.Info("Extraction complete",
			"entries", len(selected),
			"written", utils.Bytes(written),
			"duration", utils.Duration(time.Since(start)))

		return nil
	},
}

// entryPath resolves an entry name below the output directory,
// rejecting names that would escape it.
func entryPath(outDir, name string) (string, error) {
	target := filepath.Join(outDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(outDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry name %q escapes the output directory", name)
	}
	return target, nil
}

func init() {
	treCmd.AddCommand(treExtractCmd)
	treExtractCmd.Flags().StringVar(&extractPrefix, "prefix", "", "only extract entries whose names start with this path")
}
