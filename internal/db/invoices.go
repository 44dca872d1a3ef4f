package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// SaveInvoice inserts invoice as one row and returns its id.
// A taken invoice number fails with models.ErrDuplicateInvoiceNumber.
func (s *Store) SaveInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	doc, err := json.Marshal(inv)
	if err != nil {
		return "", fmt.Errorf("encode invoice: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, invoice_name, user_id, is_deleted, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
	`, s.table(s.tables.Invoices))

	id := uuid.New()
	_, err = s.q.Exec(ctx, query,
		id.String(), inv.InvoiceName, inv.UserID, inv.IsDeleted, string(doc), inv.CreatedAt, inv.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("%w: %s", models.ErrDuplicateInvoiceNumber, inv.InvoiceName)
	}
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// LatestInvoiceName returns the invoice name of the most recently created invoice,
// or "" when there are none. Names created at the same instant compare by length
// first so INV-1000000 ranks above INV-999999.
func (s *Store) LatestInvoiceName(ctx context.Context) (string, error) {
	query := fmt.Sprintf(`
		SELECT invoice_name
		FROM %s
		ORDER BY created_at DESC, length(invoice_name) DESC, invoice_name DESC
		LIMIT 1
	`, s.table(s.tables.Invoices))

	var name string
	err := s.q.QueryRow(ctx, query).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// ListInvoices returns the newest invoices created by userID, newest first
func (s *Store) ListInvoices(ctx context.Context, userID string, limit int) ([]models.StoredInvoice, error) {
	query := fmt.Sprintf(`
		SELECT id::text, document
		FROM %s
		WHERE user_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC
		LIMIT $2
	`, s.table(s.tables.Invoices))

	rows, err := s.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.StoredInvoice{}
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		inv, err := decodeInvoice(doc)
		if err != nil {
			return nil, fmt.Errorf("invoice %s: %w", id, err)
		}
		invoices = append(invoices, models.StoredInvoice{ID: id, Invoice: inv})
	}
	return invoices, rows.Err()
}

// GetInvoiceByName retrieves a single invoice by its invoice number
func (s *Store) GetInvoiceByName(ctx context.Context, name string) (*models.StoredInvoice, error) {
	query := fmt.Sprintf(`
		SELECT id::text, document
		FROM %s
		WHERE invoice_name = $1
	`, s.table(s.tables.Invoices))

	var (
		id  string
		doc []byte
	)
	err := s.q.QueryRow(ctx, query, name).Scan(&id, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	inv, err := decodeInvoice(doc)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", id, err)
	}
	return &models.StoredInvoice{ID: id, Invoice: inv}, nil
}

// SoftDeleteInvoice marks an invoice deleted. The row and its number are kept so
// numbering never reuses it.
func (s *Store) SoftDeleteInvoice(ctx context.Context, name string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = true,
		    updated_at = $2,
		    document = jsonb_set(jsonb_set(document, '{isDeleted}', 'true'), '{updatedAt}', to_jsonb($2::timestamptz))
		WHERE invoice_name = $1 AND NOT is_deleted
	`, s.table(s.tables.Invoices))

	tag, err := s.q.Exec(ctx, query, name, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func decodeInvoice(doc []byte) (*models.Invoice, error) {
	var inv models.Invoice
	if err := json.Unmarshal(doc, &inv); err != nil {
		return nil, fmt.Errorf("decode invoice document: %w", err)
	}
	return &inv, nil
}
