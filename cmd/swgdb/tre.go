package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/tre"
	"github.com/swgdb/swgdb/internal/utils"
)

var treCmd = &cobra.Command{
	Use:   "tre",
	Short: "Work with TRE resource archives",
}

var treListCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the entries of an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := tre.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer archive.Close()

		var stored, uncompressed int64
		for _, e := range archive.Entries() {
			fmt.Printf("%08X  %-6s %10s  %s\n",
				e.NameChecksum, e.Method, utils.Bytes(int64(e.UncompressedSize)), e.Name)
			stored += int64(e.CompressedSize)
			uncompressed += int64(e.UncompressedSize)
		}

		fmt.Printf("%s entries, %s stored (%s uncompressed)\n",
			utils.Number(int64(archive.Len())), utils.Bytes(stored), utils.Bytes(uncompressed))

		return nil
	},
}

var treVerifyCmd = &cobra.Command{
	Use:   "verify <archive>",
	Short: "Verify the checksums of every entry in an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		archive, err := tre.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer archive.Close()

		if err := archive.VerifyAll(); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		slog.Info("Archive verified",
			"entries", archive.Len(),
			"duration", utils.Duration(time.Since(start)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(treCmd)
	treCmd.AddCommand(treListCmd)
	treCmd.AddCommand(treVerifyCmd)
}
