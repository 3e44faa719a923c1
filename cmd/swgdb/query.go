package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swgdb/swgdb/internal/database"
)

var listTables bool

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Query the export database directly from command line",
	Long: `Query executes a SQL statement against the database that datatable
exports were written into, or lists the exported tables with --tables.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := database.New(database.DefaultOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if listTables {
			rows, err := db.Query(ctx, `
				SELECT name FROM sqlite_master
				WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
				ORDER BY name
			`)
			if err != nil {
				return fmt.Errorf("listing tables: %w", err)
			}
			defer rows.Close()

			for rows.Next() {
				var name string
				if err := rows.Scan(&name); err != nil {
					return fmt.Errorf("scanning table name: %w", err)
				}
				fmt.Println(name)
			}
			return rows.Err()
		}

		if len(args) == 0 {
			return fmt.Errorf("no query provided, use --tables to list tables")
		}

		rows, err := db.Query(ctx, args[0])
		if err != nil {
			return fmt.Errorf("executing query: %w", err)
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("getting column names: %w", err)
		}

		fmt.Println(strings.Join(columns, "\t"))

		for rows.Next() {
			values := make([]any, len(columns))
			pointers := make([]any, len(columns))
			for i := range values {
				pointers[i] = &values[i]
			}
			if err := rows.Scan(pointers...); err != nil {
				return fmt.Errorf("scanning row: %w", err)
			}

			cells := make([]string, len(values))
			for i, val := range values {
				if val == nil {
					cells[i] = "NULL"
				} else {
					cells[i] = fmt.Sprintf("%v", val)
				}
			}
			fmt.Println(strings.Join(cells, "\t"))
		}

		return rows.Err()
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVar(&listTables, "tables", false, "list exported tables instead of running a query")
}
