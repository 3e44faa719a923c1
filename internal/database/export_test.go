package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swgdb/swgdb/internal/iff"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(DefaultOptions(filepath.Join(t.TempDir(), "export.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func creatureTable() *iff.DataTable {
	return &iff.DataTable{
		Columns: []iff.Column{
			{Name: "Name", Type: iff.StringColumn},
			{Name: "Level", Type: iff.IntColumn},
			{Name: "Scale", Type: iff.FloatColumn},
			{Name: "Spawnable", Type: iff.BoolColumn},
			{Name: "Biome", Type: iff.EnumColumn, Options: []string{"desert", "forest"}},
		},
		Rows: [][]any{
			{"womp rat", int64(4), 1.25, true, int64(0)},
			{"bantha", int64(12), 3.0, false, int64(1)},
		},
	}
}

func TestExportTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	exporter := NewExporter(db, nil)
	require.NoError(t, exporter.ExportTable(ctx, "CreatureSpawns", creatureTable()))

	exists, err := db.TableExists(ctx, "creature_spawns")
	require.NoError(t, err)
	assert.True(t, exists)

	rows, err := db.Query(ctx, `SELECT _row, name, level, scale, spawnable, biome FROM creature_spawns ORDER BY _row`)
	require.NoError(t, err)
	defer rows.Close()

	type record struct {
		row       int
		name      string
		level     int64
		scale     float64
		spawnable bool
		biome     int64
	}
	var got []record
	for rows.Next() {
		var r record
		require.NoError(t, rows.Scan(&r.row, &r.name, &r.level, &r.scale, &r.spawnable, &r.biome))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []record{
		{0, "womp rat", 4, 1.25, true, 0},
		{1, "bantha", 12, 3.0, false, 1},
	}, got)
}

func TestExportTableReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	exporter := NewExporter(db, nil)
	require.NoError(t, exporter.ExportTable(ctx, "creatures", creatureTable()))

	smaller := &iff.DataTable{
		Columns: []iff.Column{{Name: "Name", Type: iff.StringColumn}},
		Rows:    [][]any{{"rancor"}},
	}
	require.NoError(t, exporter.ExportTable(ctx, "creatures", smaller))

	var count int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM creatures`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExportTableBatching(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	table := &iff.DataTable{
		Columns: []iff.Column{{Name: "Value", Type: iff.IntColumn}},
	}
	for i := 0; i < 2500; i++ {
		table.Rows = append(table.Rows, []any{int64(i)})
	}

	exporter := NewExporter(db, &ExportOptions{BatchSize: 1000})
	require.NoError(t, exporter.ExportTable(ctx, "numbers", table))

	var count, maxRow int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*), MAX(_row) FROM numbers`).Scan(&count, &maxRow))
	assert.Equal(t, 2500, count)
	assert.Equal(t, 2499, maxRow)
}
