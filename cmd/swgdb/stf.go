package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/stf"
)

var stfCmd = &cobra.Command{
	Use:   "stf",
	Short: "Work with STF string table files",
}

var stfDumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the entries of a string table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		table, err := stf.Decode(data)
		if err != nil {
			return fmt.Errorf("decoding string table: %w", err)
		}

		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("%s\t%s\n", name, table[name])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(stfCmd)
	stfCmd.AddCommand(stfDumpCmd)
}
