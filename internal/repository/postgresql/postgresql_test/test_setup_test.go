package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS staff (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	department       TEXT NOT NULL DEFAULT '',
	position         TEXT NOT NULL DEFAULT '',
	staff_type       TEXT NOT NULL DEFAULT 'Unknown',
	join_date        DATE,
	leave_count_date DATE,
	active           BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS attendance_logs (
	id        TEXT PRIMARY KEY,
	staff_id  TEXT NOT NULL,
	timestamp BIGINT NOT NULL,
	work_code INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance_corrections (
	id                  TEXT PRIMARY KEY,
	staff_id            TEXT NOT NULL,
	date                DATE NOT NULL,
	correction_type     TEXT NOT NULL,
	requested_time      TEXT NOT NULL,
	requested_work_code INTEGER,
	reason              TEXT NOT NULL DEFAULT '',
	original_punch_id   TEXT,
	status              TEXT NOT NULL DEFAULT 'pending',
	reviewed_by         TEXT,
	reviewed_at         TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS leave_records (
	staff_id TEXT NOT NULL,
	date     DATE NOT NULL,
	category TEXT NOT NULL,
	status   TEXT NOT NULL DEFAULT 'approved'
);

CREATE TABLE IF NOT EXISTS processed_attendance (
	staff_id             TEXT NOT NULL,
	date                 DATE NOT NULL,
	day                  TEXT NOT NULL,
	scheduled_in         TEXT NOT NULL,
	first_check_in       TEXT NOT NULL,
	last_check_out       TEXT NOT NULL,
	breaks               JSONB NOT NULL DEFAULT '[]',
	missing_check_in     BOOLEAN NOT NULL,
	missing_check_out    BOOLEAN NOT NULL,
	is_weekend           BOOLEAN NOT NULL,
	is_holiday           BOOLEAN NOT NULL,
	late_minutes         INTEGER NOT NULL,
	late_fine            DOUBLE PRECISION NOT NULL,
	break_minutes        INTEGER NOT NULL,
	excess_break_minutes INTEGER NOT NULL,
	break_fine           DOUBLE PRECISION NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (staff_id, date)
);
`

// TestDatabaseSetup holds the connection used by the repository integration tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and creates the schema.
// The test is skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		t.Fatalf("failed to create schema: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to truncate tables: %v", err)
	}

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from every table
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"staff",
		"attendance_logs",
		"attendance_corrections",
		"leave_records",
		"processed_attendance",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
