package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"users", "projects", "stages", "units", "unit_stages", "unit_stage_photos", "unit_stage_logs"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_stages_project",
		"idx_units_project",
		"idx_unit_stages_pair",
		"idx_unit_stages_stage",
		"idx_photos_unit_stage",
		"idx_logs_unit_stage",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func seedUnit(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO projects (id, name, created_at, updated_at)
		VALUES ('p1', 'Residencial Aurora', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO units (id, project_id, identifier, created_at, updated_at)
		VALUES ('u1', 'p1', '301', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
}

func TestMigrate_UnitCheckConstraints(t *testing.T) {
	db := openTestDB(t)
	seedUnit(t, db)

	_, err := db.Exec(`UPDATE units SET status = 'blocked' WHERE id = 'u1'`)
	assert.Error(t, err, "unknown status should be rejected")

	_, err = db.Exec(`UPDATE units SET progress = 101 WHERE id = 'u1'`)
	assert.Error(t, err, "progress above 100 should be rejected")

	_, err = db.Exec(`UPDATE units SET status = 'in_progress', progress = 50 WHERE id = 'u1'`)
	assert.NoError(t, err)
}

func TestMigrate_UnitStagePairUnique(t *testing.T) {
	db := openTestDB(t)
	seedUnit(t, db)

	insert := `INSERT INTO unit_stages (id, unit_id, stage_id, created_at, updated_at)
		VALUES (?, 'u1', 's1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`
	_, err := db.Exec(insert, "us1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "us2")
	assert.Error(t, err, "second instance of the same (unit, stage) pair should be rejected")
}

func TestMigrate_PhotoMetadataColumns(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(unit_stage_photos)`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var cid, notNull, pk int
		var name, typ string
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		found[name] = true
	}
	require.NoError(t, rows.Err())
	assert.True(t, found["content_type"])
	assert.True(t, found["size"])
}

func TestMigrate_ReplayLeavesRowsUntouched(t *testing.T) {
	db := openTestDB(t)
	seedUnit(t, db)

	_, err := db.Exec(`INSERT INTO stages (id, project_id, name, order_index, created_at, updated_at)
		VALUES ('s1', 'p1', 'Alvenaria', 4, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO unit_stages (id, unit_id, stage_id, order_index, created_at, updated_at)
		VALUES ('us1', 'u1', 's1', 0, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var order int
	require.NoError(t, db.QueryRow(`SELECT order_index FROM unit_stages WHERE id = 'us1'`).Scan(&order))
	assert.Equal(t, 0, order)
}
