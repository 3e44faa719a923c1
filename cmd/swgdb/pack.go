package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/tre"
	"github.com/swgdb/swgdb/internal/utils"
)

var trePackCmd = &cobra.Command{
	Use:   "pack <input-dir> <archive>",
	Short: "Build an archive from a directory tree",
	Long: `Pack walks the input directory and builds an archive containing every
regular file in it, using the file paths relative to the input directory
as entry names. Files are walked in sorted order, so packing the same
tree twice produces identical archives.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		inDir, outPath := args[0], args[1]

		var names []string
		err := filepath.WalkDir(inDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				rel, err := filepath.Rel(inDir, path)
				if err != nil {
					return err
				}
				names = append(names, filepath.ToSlash(rel))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("walking %s: %w", inDir, err)
		}
		sort.Strings(names)

		if len(names) == 0 {
			return fmt.Errorf("no files found under %s", inDir)
		}

		method := tre.Zlib
		if cfg.Compression == "none" {
			method = tre.None
		}
		builder := tre.NewBuilder(tre.BuilderOptions{
			RecordCompression: method,
			NameCompression:   method,
		})

		progress := utils.NewProgress(len(names), showProgress())

		var total int64
		for i, name := range names {
			progress.Update(i+1, name)

			data, err := os.ReadFile(filepath.Join(inDir, filepath.FromSlash(name)))
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}

			if method == tre.None {
				err = builder.AddWithMethod(name, data, tre.None)
			} else {
				err = builder.Add(name, data)
			}
			if err != nil {
				return fmt.Errorf("adding %s: %w", name, err)
			}

			progress.AddBytes(len(data))
			total += int64(len(data))
		}

		if err := builder.WriteFile(outPath); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}

		progress.Finish()

		slog.Info("Archive built",
			"path", outPath,
			"entries", len(names),
			"input", utils.Bytes(total),
			"duration", utils.Duration(time.Since(start)))

		return nil
	},
}

func init() {
	treCmd.AddCommand(trePackCmd)
}
