package db

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStats summarises one user's invoices
type InvoiceStats struct {
	Month         string          `json:"month"`
	TotalInvoices int             `json:"total_invoices"`
	MonthInvoices int             `json:"month_invoices"`
	Deleted       int             `json:"deleted"`
	MonthPayable  decimal.Decimal `json:"month_payable"`
}

// GetInvoiceStats returns counts for userID and the amount payable this month
func (s *Store) GetInvoiceStats(ctx context.Context, userID string, now time.Time) (*InvoiceStats, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE NOT is_deleted),
			COUNT(*) FILTER (WHERE NOT is_deleted AND DATE_TRUNC('month', created_at) = DATE_TRUNC('month', $2::timestamptz)),
			COUNT(*) FILTER (WHERE is_deleted),
			COALESCE(SUM((document->>'totalAmountPayable')::numeric)
				FILTER (WHERE NOT is_deleted AND DATE_TRUNC('month', created_at) = DATE_TRUNC('month', $2::timestamptz)), 0)::text
		FROM %s
		WHERE user_id = $1
	`, s.table(s.tables.Invoices))

	stats := &InvoiceStats{Month: now.Format("2006-01")}
	var payable string
	err := s.q.QueryRow(ctx, query, userID, now).Scan(
		&stats.TotalInvoices,
		&stats.MonthInvoices,
		&stats.Deleted,
		&payable,
	)
	if err != nil {
		return nil, err
	}

	stats.MonthPayable, err = decimal.NewFromString(payable)
	if err != nil {
		return nil, fmt.Errorf("invalid payable sum %q: %w", payable, err)
	}
	return stats, nil
}
