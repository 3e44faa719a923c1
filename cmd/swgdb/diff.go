package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/tre"
)

var treDiffCmd = &cobra.Command{
	Use:   "diff <archive-a> <archive-b>",
	Short: "Compare the contents of two archives",
	Long: `Diff reports entries that exist in only one archive and entries whose
contents differ. Contents are compared after decompression, so the same
payload stored with different compression methods counts as unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := tre.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer a.Close()

		b, err := tre.OpenFile(args[1])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[1], err)
		}
		defer b.Close()

		names := make(map[string]bool)
		for _, e := range a.Entries() {
			names[e.Name] = true
		}
		for _, e := range b.Entries() {
			names[e.Name] = true
		}

		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)

		var added, removed, changed int
		for _, name := range sorted {
			_, inA := a.ByName(name)
			_, inB := b.ByName(name)

			switch {
			case !inB:
				fmt.Printf("- %s\n", name)
				removed++
			case !inA:
				fmt.Printf("+ %s\n", name)
				added++
			default:
				same, err := sameContent(a, b, name)
				if err != nil {
					return err
				}
				if !same {
					fmt.Printf("~ %s\n", name)
					changed++
				}
			}
		}

		fmt.Printf("%d added, %d removed, %d changed\n", added, removed, changed)

		return nil
	},
}

func sameContent(a, b *tre.Archive, name string) (bool, error) {
	dataA, err := a.Extract(name)
	if err != nil {
		return false, fmt.Errorf("extracting %s: %w", name, err)
	}
	dataB, err := b.Extract(name)
	if err != nil {
		return false, fmt.Errorf("extracting %s: %w", name, err)
	}
	return tre.Digest(dataA) == tre.Digest(dataB), nil
}

func init() {
	treCmd.AddCommand(treDiffCmd)
}
