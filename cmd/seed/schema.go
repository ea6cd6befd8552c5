package main

// Statements run in order inside one transaction. Foreign keys require the
// parent tables to come first.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		is_leader BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS sessions_single_leader
		ON sessions (is_leader) WHERE is_leader`,
	`CREATE TABLE IF NOT EXISTS warehouse_master (
		warehouse_name TEXT PRIMARY KEY,
		region TEXT,
		main_channel TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS channel_master (
		channel TEXT PRIMARY KEY,
		display_name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS psi_base (
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		sku_code TEXT NOT NULL,
		sku_name TEXT,
		warehouse_name TEXT NOT NULL,
		channel TEXT NOT NULL,
		date DATE NOT NULL,
		stock_at_anchor NUMERIC NOT NULL DEFAULT 0,
		inbound_qty NUMERIC NOT NULL DEFAULT 0,
		outbound_qty NUMERIC NOT NULL DEFAULT 0,
		stock_closing NUMERIC NOT NULL DEFAULT 0,
		stdstock NUMERIC NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, sku_code, warehouse_name, channel, date)
	)`,
	`CREATE INDEX IF NOT EXISTS psi_base_session_date
		ON psi_base (session_id, date)`,
	`CREATE TABLE IF NOT EXISTS channel_transfers (
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		sku_code TEXT NOT NULL,
		warehouse_name TEXT NOT NULL,
		transfer_date DATE NOT NULL,
		from_channel TEXT NOT NULL,
		to_channel TEXT NOT NULL,
		qty NUMERIC NOT NULL,
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (session_id, sku_code, warehouse_name, transfer_date, from_channel, to_channel)
	)`,
	`CREATE TABLE IF NOT EXISTS transfer_plans (
		plan_id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transfer_plan_lines (
		line_id UUID PRIMARY KEY,
		plan_id UUID NOT NULL REFERENCES transfer_plans(plan_id) ON DELETE CASCADE,
		sku_code TEXT NOT NULL,
		from_warehouse TEXT NOT NULL,
		from_channel TEXT NOT NULL,
		to_warehouse TEXT NOT NULL,
		to_channel TEXT NOT NULL,
		qty NUMERIC NOT NULL,
		is_manual BOOLEAN NOT NULL DEFAULT FALSE,
		reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS transfer_plan_lines_plan
		ON transfer_plan_lines (plan_id)`,
	`CREATE TABLE IF NOT EXISTS reallocation_policy (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		take_from_other_main BOOLEAN NOT NULL DEFAULT FALSE,
		rounding_mode TEXT NOT NULL DEFAULT 'floor',
		allow_overfill BOOLEAN NOT NULL DEFAULT FALSE,
		fair_share_mode TEXT NOT NULL DEFAULT 'off',
		deficit_basis TEXT NOT NULL DEFAULT 'closing',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by TEXT
	)`,
	`INSERT INTO reallocation_policy (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
}
