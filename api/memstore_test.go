package api

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/db"
	"github.com/challanai/invoice-chat-service/internal/models"
)

// memStore is an in-memory InvoiceStore for handler tests
type memStore struct {
	mu sync.Mutex

	customers []models.Customer
	products  []models.Product
	billers   map[string]*models.BusinessEntity
	invoices  []models.StoredInvoice

	saveErr error
	// block makes every read wait for the context to end
	block bool
}

func (s *memStore) wait(ctx context.Context) error {
	if !s.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *memStore) FindCustomers(ctx context.Context, businessID, nameQuery string) ([]models.Customer, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Customer
	for _, c := range s.customers {
		if c.BusinessEntityID == businessID && strings.Contains(strings.ToLower(c.Name), strings.ToLower(nameQuery)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) FindProducts(_ context.Context, shopkeeperID, nameQuery string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if p.ShopkeeperID == shopkeeperID && strings.Contains(strings.ToLower(p.ProductName), strings.ToLower(nameQuery)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) ListProducts(_ context.Context, shopkeeperID string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if p.ShopkeeperID == shopkeeperID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) GetBusinessEntity(_ context.Context, id string) (*models.BusinessEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.billers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b, nil
}

func (s *memStore) LatestInvoiceName(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.invoices) == 0 {
		return "", nil
	}
	return s.invoices[len(s.invoices)-1].Invoice.InvoiceName, nil
}

func (s *memStore) SaveInvoice(_ context.Context, inv *models.Invoice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	for _, existing := range s.invoices {
		if existing.Invoice.InvoiceName == inv.InvoiceName {
			return "", models.ErrDuplicateInvoiceNumber
		}
	}
	stored := *inv
	id := uuid.NewString()
	s.invoices = append(s.invoices, models.StoredInvoice{ID: id, Invoice: &stored})
	return id, nil
}

func (s *memStore) ListInvoices(_ context.Context, userID string, limit int) ([]models.StoredInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.StoredInvoice{}
	for i := len(s.invoices) - 1; i >= 0 && len(out) < limit; i-- {
		inv := s.invoices[i]
		if inv.Invoice.UserID == userID && !inv.Invoice.IsDeleted {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *memStore) GetInvoiceByName(_ context.Context, name string) (*models.StoredInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].Invoice.InvoiceName == name {
			stored := s.invoices[i]
			return &stored, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) SoftDeleteInvoice(_ context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		inv := s.invoices[i].Invoice
		if inv.InvoiceName == name && !inv.IsDeleted {
			inv.IsDeleted = true
			inv.UpdatedAt = at
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memStore) GetInvoiceStats(_ context.Context, userID string, now time.Time) (*db.InvoiceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &db.InvoiceStats{Month: now.Format("2006-01"), MonthPayable: decimal.Zero}
	for _, stored := range s.invoices {
		inv := stored.Invoice
		if inv.UserID != userID {
			continue
		}
		if inv.IsDeleted {
			stats.Deleted++
			continue
		}
		stats.TotalInvoices++
		if inv.CreatedAt.Format("2006-01") == stats.Month {
			stats.MonthInvoices++
			stats.MonthPayable = stats.MonthPayable.Add(inv.TotalAmountPayable)
		}
	}
	return stats, nil
}

func strPtr(s string) *string { return &s }

func product(id, name, price, cgst, sgst string) models.Product {
	return models.Product{
		ID:           id,
		ProductName:  name,
		PricePerUnit: decimal.NewNullDecimal(decimal.RequireFromString(price)),
		TaxPercentages: map[string]decimal.Decimal{
			models.TaxCGST: decimal.RequireFromString(cgst),
			models.TaxSGST: decimal.RequireFromString(sgst),
		},
		ShopkeeperID: "user-1",
	}
}

func pharmacyStore() *memStore {
	return &memStore{
		customers: []models.Customer{
			{ID: "c1", Name: "Hrishita Patil", PhoneNumber: strPtr("9820000001"), BusinessEntityID: "biz-1"},
			{ID: "c2", Name: "Rahul Mehta", PhoneNumber: strPtr("9820000002"), BusinessEntityID: "biz-1"},
			{ID: "c3", Name: "Rahul Sharma", PhoneNumber: strPtr("9820000003"), BusinessEntityID: "biz-1"},
		},
		products: []models.Product{
			product("p1", "Augmentin", "10.00", "5", "5"),
			product("p2", "Crocin", "20.00", "6", "6"),
		},
		billers: map[string]*models.BusinessEntity{
			"biz-1": {ID: "biz-1", BusinessName: "Anand Pharmacy", OwnerName: "Anand Bora", PhoneNumber: "02212345678"},
		},
	}
}
