package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"namcportal/internal/repository/postgres"
)

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\""); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Members + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			company TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			specialties TEXT[] NOT NULL DEFAULT '{}',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			certifications JSONB,
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			hubspot_contact_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Tools + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			daily_rate NUMERIC(10,2) NOT NULL DEFAULT 0,
			condition TEXT NOT NULL DEFAULT 'good',
			quantity INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Reservations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tool_id UUID NOT NULL REFERENCES ` + tables.Tools + `(id),
			member_id UUID NOT NULL REFERENCES ` + tables.Members + `(id),
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			late_fee NUMERIC(10,2) NOT NULL DEFAULT 0,
			checked_out_at TIMESTAMPTZ,
			returned_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (end_date >= start_date)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			client TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			budget_min NUMERIC(14,2),
			budget_max NUMERIC(14,2),
			bid_deadline TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'draft',
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Bids + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id),
			member_id UUID NOT NULL REFERENCES ` + tables.Members + `(id),
			amount NUMERIC(14,2) NOT NULL,
			timeline_days INTEGER NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
			confidence DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'submitted',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Budgets + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			member_id UUID NOT NULL REFERENCES ` + tables.Members + `(id),
			project_id UUID REFERENCES ` + tables.Projects + `(id),
			name TEXT NOT NULL,
			period TEXT NOT NULL,
			total_amount NUMERIC(14,2) NOT NULL,
			allocations JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Expenses + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			budget_id UUID NOT NULL REFERENCES ` + tables.Budgets + `(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			incurred_on DATE NOT NULL,
			memo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Events + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			member_id UUID NOT NULL REFERENCES ` + tables.Members + `(id),
			kind TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Scores + ` (
			member_id UUID PRIMARY KEY REFERENCES ` + tables.Members + `(id),
			score DOUBLE PRECISION NOT NULL,
			tier TEXT NOT NULL,
			event_count INTEGER NOT NULL DEFAULT 0,
			window_days INTEGER NOT NULL,
			computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Campaigns + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			start_date DATE,
			end_date DATE,
			target_tiers TEXT[] NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'draft',
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Notifications + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			member_id UUID NOT NULL REFERENCES ` + tables.Members + `(id),
			channel TEXT NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			payload JSONB,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_error TEXT,
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.SyncStates + ` (
			member_id UUID PRIMARY KEY REFERENCES ` + tables.Members + `(id),
			contact_id TEXT,
			dirty BOOLEAN NOT NULL DEFAULT TRUE,
			last_synced_at TIMESTAMPTZ,
			last_error TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Create indexes
	indexes := []string{
		// One live profile per account
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `members_user_id ON ` + tables.Members + `(user_id) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `members_email ON ` + tables.Members + `(email)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `reservations_tool_dates ON ` + tables.Reservations + `(tool_id, start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `reservations_member ON ` + tables.Reservations + `(member_id)`,
		// One live bid per member per project; withdrawing frees the slot
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `bids_project_member ON ` + tables.Bids + `(project_id, member_id) WHERE status <> 'withdrawn'`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `bids_member ON ` + tables.Bids + `(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `expenses_budget ON ` + tables.Expenses + `(budget_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `events_member_occurred ON ` + tables.Events + `(member_id, occurred_at)`,
		// Dispatcher poll path
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notifications_due ON ` + tables.Notifications + `(status, next_attempt_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notifications_member ON ` + tables.Notifications + `(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `sync_states_dirty ON ` + tables.SyncStates + `(dirty) WHERE dirty`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.SyncStates,
		tables.Notifications,
		tables.Campaigns,
		tables.Scores,
		tables.Events,
		tables.Expenses,
		tables.Budgets,
		tables.Bids,
		tables.Projects,
		tables.Reservations,
		tables.Tools,
		tables.Members,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}
