package db

import (
	"context"
	"fmt"
)

// schemaStatements creates the tables this service reads and writes
func (s *Store) schemaStatements() []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, quoteIdent(s.schema)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id               text PRIMARY KEY,
			business_name    text NOT NULL,
			owner_name       text,
			email            text,
			phone_number     text,
			business_address text
		)`, s.table(s.tables.BusinessEntities)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id                 text PRIMARY KEY,
			name               text NOT NULL,
			phone_number       text,
			business_entity_id text NOT NULL
		)`, s.table(s.tables.Customers)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id              text PRIMARY KEY,
			product_name    text NOT NULL,
			price_per_unit  numeric(12, 2),
			tax_percentages jsonb,
			shopkeeper_id   text NOT NULL
		)`, s.table(s.tables.Products)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id           uuid PRIMARY KEY,
			invoice_name text NOT NULL UNIQUE,
			user_id      text NOT NULL,
			is_deleted   boolean NOT NULL DEFAULT false,
			document     jsonb NOT NULL,
			created_at   timestamptz NOT NULL DEFAULT now(),
			updated_at   timestamptz NOT NULL DEFAULT now()
		)`, s.table(s.tables.Invoices)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC)`,
			quoteIdent(s.tables.Invoices+"_created_at_idx"), s.table(s.tables.Invoices)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (user_id, created_at DESC)`,
			quoteIdent(s.tables.Invoices+"_user_id_idx"), s.table(s.tables.Invoices)),
	}
}

// EnsureSchema creates any missing tables and indexes
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.schemaStatements() {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
