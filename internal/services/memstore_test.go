package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// memStore is an in-memory Store for tests
type memStore struct {
	mu sync.Mutex

	customers []models.Customer
	products  []models.Product
	billers   map[string]*models.BusinessEntity
	invoices  []*models.Invoice

	// staleLatest is returned (and consumed) by LatestInvoiceName before the real value
	staleLatest []string
	saveErr     error

	latestCalls int
	saveCalls   int
}

func newMemStore() *memStore {
	return &memStore{billers: map[string]*models.BusinessEntity{}}
}

func (s *memStore) FindCustomers(_ context.Context, businessID, nameQuery string) ([]models.Customer, error) {
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
	s.latestCalls++
	if len(s.staleLatest) > 0 {
		name := s.staleLatest[0]
		s.staleLatest = s.staleLatest[1:]
		return name, nil
	}
	// newest by CreatedAt; same instant ranks by numeric suffix
	var latest *models.Invoice
	for _, inv := range s.invoices {
		if latest == nil || inv.CreatedAt.After(latest.CreatedAt) ||
			(inv.CreatedAt.Equal(latest.CreatedAt) && suffix(inv.InvoiceName) > suffix(latest.InvoiceName)) {
			latest = inv
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.InvoiceName, nil
}

func suffix(name string) int {
	n, _ := NextInvoiceNumber(name)
	return n
}

func (s *memStore) SaveInvoice(_ context.Context, invoice *models.Invoice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return "", s.saveErr
	}
	for _, existing := range s.invoices {
		if existing.InvoiceName == invoice.InvoiceName {
			return "", models.ErrDuplicateInvoiceNumber
		}
	}
	stored := *invoice
	s.invoices = append(s.invoices, &stored)
	return uuid.NewString(), nil
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

// pharmacyStore seeds the records used across the pipeline tests
func pharmacyStore() *memStore {
	s := newMemStore()
	s.customers = []models.Customer{
		{ID: "c1", Name: "Hrishita Patil", PhoneNumber: strPtr("9820000001"), BusinessEntityID: "biz-1"},
		{ID: "c2", Name: "Rahul Mehta", PhoneNumber: strPtr("9820000002"), BusinessEntityID: "biz-1"},
		{ID: "c3", Name: "Rahul Sharma", PhoneNumber: strPtr("9820000003"), BusinessEntityID: "biz-1"},
		{ID: "c4", Name: "Neha", BusinessEntityID: "biz-1"},
		{ID: "c5", Name: "Hrishita Rao", PhoneNumber: strPtr("9820000005"), BusinessEntityID: "biz-2"},
	}
	s.products = []models.Product{
		product("p1", "Augmentin", "10.00", "5", "5"),
		product("p2", "Crocin", "20.00", "6", "6"),
		product("p3", "Dolo 650", "30.50", "6", "6"),
	}
	s.billers["biz-1"] = &models.BusinessEntity{
		ID:              "biz-1",
		BusinessName:    "Anand Pharmacy",
		Email:           "billing@anand.example",
		PhoneNumber:     "02212345678",
		BusinessAddress: "12 MG Road, Pune",
	}
	return s
}
