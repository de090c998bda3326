package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(128) NOT NULL UNIQUE,
		role VARCHAR(64) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS departments (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(128) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS persons (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		department_id BIGINT REFERENCES departments(id)
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id),
		project_code VARCHAR(64) NOT NULL,
		contract_number VARCHAR(128) NOT NULL,
		name VARCHAR(255) NOT NULL,
		client_manager VARCHAR(128) NOT NULL DEFAULT '',
		client_contact VARCHAR(128) NOT NULL DEFAULT '',
		our_manager VARCHAR(128) NOT NULL DEFAULT '',
		planned_delivery_date DATE,
		created_by_id BIGINT REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_project_code ON contracts (project_code);`,
	`CREATE TABLE IF NOT EXISTS sales_infos (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		quote_amount NUMERIC(18,2),
		quote_date DATE,
		deal_date DATE,
		sales_person_id BIGINT REFERENCES persons(id),
		remarks TEXT
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_sales_infos_contract_id ON sales_infos (contract_id);`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		department_id BIGINT REFERENCES departments(id),
		person_id BIGINT REFERENCES persons(id),
		title VARCHAR(255) NOT NULL,
		start_date DATE,
		end_date DATE,
		status VARCHAR(64) NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_contract_id ON tasks (contract_id);`,
	`CREATE TABLE IF NOT EXISTS procurement_items (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		item_name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		unit VARCHAR(32) NOT NULL DEFAULT '',
		expected_date DATE,
		status VARCHAR(64) NOT NULL DEFAULT '',
		person_id BIGINT REFERENCES persons(id),
		remarks TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_procurement_items_contract_id ON procurement_items (contract_id);`,
	`CREATE TABLE IF NOT EXISTS acceptances (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		stage_name VARCHAR(255) NOT NULL,
		person_id BIGINT REFERENCES persons(id),
		date DATE NOT NULL,
		status VARCHAR(64) NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_acceptances_contract_id ON acceptances (contract_id);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		amount NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
		date DATE NOT NULL,
		method VARCHAR(64) NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_contract_id ON payments (contract_id);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		invoice_number VARCHAR(128) NOT NULL DEFAULT '',
		amount NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
		date DATE NOT NULL,
		remarks TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_contract_id ON invoices (contract_id);`,
	`CREATE TABLE IF NOT EXISTS refunds (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		amount NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
		date DATE NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_refunds_contract_id ON refunds (contract_id);`,
	`CREATE TABLE IF NOT EXISTS feedbacks (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		content TEXT NOT NULL,
		handler_id BIGINT REFERENCES persons(id),
		result TEXT NOT NULL DEFAULT '',
		is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
		feedback_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completion_time TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_feedbacks_contract_id ON feedbacks (contract_id);`,
	`CREATE TABLE IF NOT EXISTS project_department_leaders (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		department_id BIGINT NOT NULL REFERENCES departments(id),
		person_id BIGINT NOT NULL REFERENCES persons(id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_leaders_contract_dept_person
		ON project_department_leaders (contract_id, department_id, person_id);`,
	`CREATE TABLE IF NOT EXISTS project_files (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		uploader_id BIGINT NOT NULL REFERENCES users(id),
		file_type VARCHAR(32) NOT NULL,
		version VARCHAR(32) NOT NULL DEFAULT 'V1',
		author VARCHAR(128) NOT NULL DEFAULT '',
		original_filename VARCHAR(512) NOT NULL,
		stored_filename VARCHAR(512) NOT NULL,
		content_type VARCHAR(128) NOT NULL DEFAULT '',
		file_size BIGINT NOT NULL DEFAULT 0,
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		owner_role VARCHAR(64) NOT NULL DEFAULT '',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_project_files_contract_id ON project_files (contract_id);`,
	`CREATE TABLE IF NOT EXISTS operation_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT,
		action VARCHAR(128) NOT NULL,
		target_type VARCHAR(64),
		target_id BIGINT,
		message TEXT,
		extra_data TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_operation_logs_target ON operation_logs (target_type, target_id);`,
	`CREATE INDEX IF NOT EXISTS idx_operation_logs_created_at ON operation_logs (created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
