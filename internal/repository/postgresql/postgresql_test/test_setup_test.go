package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/pph21-engine/internal/pkg/database"
)

// TestDatabaseSetup holds the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.DefaultPoolConfig())
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.createTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to create tables: %v", err)
	}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to truncate tables: %v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

func (t *TestDatabaseSetup) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tax_settings (
			id BIGSERIAL PRIMARY KEY,
			document JSONB NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS taxpayer_profiles (
			employee_id TEXT PRIMARY KEY,
			tax_status TEXT,
			npwp TEXT,
			override_method TEXT,
			is_female_joint_filer BOOLEAN NOT NULL DEFAULT FALSE,
			employment_category TEXT,
			health_insurance_enrolled BOOLEAN NOT NULL DEFAULT FALSE,
			employment_insurance_enrolled BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS monthly_tax_details (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id TEXT NOT NULL,
			year INT NOT NULL,
			month INT NOT NULL,
			gross_pay NUMERIC(18,2) NOT NULL DEFAULT 0,
			bpjs_deductions NUMERIC(18,2) NOT NULL DEFAULT 0,
			tax_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
			is_using_ter BOOLEAN NOT NULL DEFAULT FALSE,
			ter_rate NUMERIC(6,2) NOT NULL DEFAULT 0,
			ter_category TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (employee_id, year, month)
		)`,
	}
	for _, stmt := range statements {
		if _, err := t.DB.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// TruncateAllTables removes all rows from the tax tables
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"tax_settings",
		"taxpayer_profiles",
		"monthly_tax_details",
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
