package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/swgdb/swgdb/internal/iff"
	"github.com/swgdb/swgdb/internal/utils"
)

// Exporter writes parsed datatables into the database, one SQL table
// per datatable.
type Exporter struct {
	db        *Database
	batchSize int
}

// ExportOptions configures datatable export behavior.
type ExportOptions struct {
	// BatchSize determines how many rows to insert per transaction.
	BatchSize int
}

// DefaultExportOptions returns sensible defaults for exports.
func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{BatchSize: 1000}
}

// NewExporter creates a new exporter writing into db.
func NewExporter(db *Database, options *ExportOptions) *Exporter {
	if options == nil {
		options = DefaultExportOptions()
	}

	return &Exporter{db: db, batchSize: options.BatchSize}
}

// ExportTable creates (or replaces) the SQL table for a datatable and
// inserts all of its rows. The table gets a _row column holding the
// original row index.
func (e *Exporter) ExportTable(ctx context.Context, name string, table *iff.DataTable) error {
	if table == nil {
		return fmt.Errorf("datatable cannot be nil")
	}

	tableName := utils.ToSnakeCase(name)

	if err := e.createTable(ctx, tableName, table); err != nil {
		return err
	}

	insertSQL := generateInsertSQL(tableName, table)

	for i := 0; i < len(table.Rows); i += e.batchSize {
		end := i + e.batchSize
		if end > len(table.Rows) {
			end = len(table.Rows)
		}

		if err := e.insertBatch(ctx, insertSQL, i, table.Rows[i:end]); err != nil {
			return fmt.Errorf("inserting rows %d-%d into %s: %w", i, end-1, tableName, err)
		}
	}

	slog.Debug("Exported datatable",
		"table", tableName,
		"columns", len(table.Columns),
		"rows", len(table.Rows))

	return nil
}

// createTable drops any existing table of the same name and creates a
// fresh one matching the datatable's columns.
func (e *Exporter) createTable(ctx context.Context, tableName string, table *iff.DataTable) error {
	if _, err := e.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName))); err != nil {
		return fmt.Errorf("dropping table %s: %w", tableName, err)
	}

	defs := []string{quoteIdentifier("_row") + " INTEGER PRIMARY KEY"}
	for _, col := range table.Columns {
		defs = append(defs, fmt.Sprintf("%s %s",
			quoteIdentifier(utils.ToSnakeCase(col.Name)),
			sqlType(col.Type)))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)",
		quoteIdentifier(tableName),
		strings.Join(defs, ", "))

	if _, err := e.db.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	return nil
}

// insertBatch inserts a run of rows within a single transaction.
func (e *Exporter) insertBatch(ctx context.Context, insertSQL string, offset int, rows [][]any) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := make([]any, 0, len(row)+1)
		args = append(args, offset+i)
		args = append(args, row...)

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", offset+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// generateInsertSQL creates the INSERT statement for a datatable.
func generateInsertSQL(tableName string, table *iff.DataTable) string {
	columns := []string{quoteIdentifier("_row")}
	placeholders := []string{"?"}

	for _, col := range table.Columns {
		columns = append(columns, quoteIdentifier(utils.ToSnakeCase(col.Name)))
		placeholders = append(placeholders, "?")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(tableName),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "))
}

// sqlType maps a datatable column type to its SQLite storage class.
func sqlType(t iff.ColumnType) string {
	switch t {
	case iff.StringColumn:
		return "TEXT"
	case iff.FloatColumn:
		return "REAL"
	default:
		return "INTEGER"
	}
}

// quoteIdentifier quotes a SQL identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
