package services

import (
	"context"
	"errors"
	"time"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// BillerFinder reads the issuing business. Returns models.ErrNotFound when absent.
type BillerFinder interface {
	GetBusinessEntity(ctx context.Context, id string) (*models.BusinessEntity, error)
}

// InvoiceNumberReader reads the invoice name of the most recently created invoice,
// or "" when there is none.
type InvoiceNumberReader interface {
	LatestInvoiceName(ctx context.Context) (string, error)
}

// InvoiceWriter persists one invoice atomically and returns its identifier.
// A taken invoice number is reported as models.ErrDuplicateInvoiceNumber.
type InvoiceWriter interface {
	SaveInvoice(ctx context.Context, invoice *models.Invoice) (string, error)
}

// Store is the request-scoped data access the pipeline needs
type Store interface {
	CustomerFinder
	ProductFinder
	BillerFinder
	InvoiceNumberReader
	InvoiceWriter
}

// WithTimeout bounds every call on store by d. A call that runs past its deadline
// fails with ErrTimeout.
func WithTimeout(store Store, d time.Duration) Store {
	if d <= 0 {
		return store
	}
	return &timeoutStore{next: store, timeout: d}
}

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

func (s *timeoutStore) FindCustomers(ctx context.Context, businessID, nameQuery string) ([]models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	customers, err := s.next.FindCustomers(ctx, businessID, nameQuery)
	return customers, mapDeadline(ctx, err)
}

func (s *timeoutStore) FindProducts(ctx context.Context, shopkeeperID, nameQuery string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	products, err := s.next.FindProducts(ctx, shopkeeperID, nameQuery)
	return products, mapDeadline(ctx, err)
}

func (s *timeoutStore) ListProducts(ctx context.Context, shopkeeperID string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	products, err := s.next.ListProducts(ctx, shopkeeperID)
	return products, mapDeadline(ctx, err)
}

func (s *timeoutStore) GetBusinessEntity(ctx context.Context, id string) (*models.BusinessEntity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	entity, err := s.next.GetBusinessEntity(ctx, id)
	return entity, mapDeadline(ctx, err)
}

func (s *timeoutStore) LatestInvoiceName(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	name, err := s.next.LatestInvoiceName(ctx)
	return name, mapDeadline(ctx, err)
}

func (s *timeoutStore) SaveInvoice(ctx context.Context, invoice *models.Invoice) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	id, err := s.next.SaveInvoice(ctx, invoice)
	return id, mapDeadline(ctx, err)
}

// mapDeadline turns a deadline overrun into ErrTimeout, keeping the original cause
func mapDeadline(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
