package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// AssemblyStore is what the assembler reads while building an invoice
type AssemblyStore interface {
	BillerFinder
	InvoiceNumberReader
}

// AssembleInput carries the resolved parts of one invoice
type AssembleInput struct {
	Customer   *models.Customer
	Products   []ProductMatch
	Quantities string
	StoreName  string
	BillerID   string
	UserID     string
}

// Assembler builds invoices from resolved records
type Assembler struct {
	discountRate  decimal.Decimal
	defaultOwner  string
	schemaVersion int
	now           func() time.Time
}

// NewAssembler creates an assembler for the given invoicing policy
func NewAssembler(cfg models.InvoiceConfig) *Assembler {
	return &Assembler{
		discountRate:  decimal.NewFromFloat(cfg.DiscountRate),
		defaultOwner:  cfg.DefaultOwnerName,
		schemaVersion: cfg.SchemaVersion,
		now:           time.Now,
	}
}

// WithClock replaces the clock used for issue and creation timestamps
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Assemble builds a complete invoice, numbered after the latest stored one.
// Nothing is written; the caller persists the result.
func (a *Assembler) Assemble(ctx context.Context, store AssemblyStore, in AssembleInput) (*models.Invoice, error) {
	if in.Customer == nil {
		return nil, fmt.Errorf("assemble: no customer")
	}

	quantities, err := ParseQuantities(in.Quantities)
	if err != nil {
		return nil, err
	}
	if len(quantities) != len(in.Products) {
		return nil, &MalformedQuantityError{
			Position: -1,
			Raw:      in.Quantities,
			Reason:   fmt.Sprintf("got %d quantities for %d products", len(quantities), len(in.Products)),
		}
	}

	biller, err := store.GetBusinessEntity(ctx, in.BillerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBillerNotFound, in.BillerID)
		}
		return nil, fmt.Errorf("get biller: %w", err)
	}

	if in.Customer.PhoneNumber == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingCustomerPhone, in.Customer.Name)
	}

	entries := make([]models.LineItem, 0, len(in.Products))
	finalAmount := decimal.Zero
	for i, match := range in.Products {
		if !match.Found() {
			continue
		}
		line, err := ComputeLine(match.Product, quantities[i])
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i+1, match.Query, err)
		}
		entries = append(entries, line)
		finalAmount = finalAmount.Add(line.LineTotal())
	}
	if len(entries) == 0 {
		return nil, ErrNoLineItems
	}

	invoiceName, err := a.AllocateNumber(ctx, store)
	if err != nil {
		return nil, err
	}

	discountAmount := round2(finalAmount.Mul(a.discountRate).Div(hundred))
	now := a.now()

	return &models.Invoice{
		UserID:             in.UserID,
		BusinessName:       in.StoreName,
		CustomerName:       in.Customer.Name,
		CustomerPhone:      *in.Customer.PhoneNumber,
		IssueDate:          now,
		InvoiceName:        invoiceName,
		Entries:            entries,
		TotalCost:          round2(finalAmount),
		Discount:           models.Discount{Rate: a.discountRate, Amount: discountAmount},
		TotalAmountPayable: round2(finalAmount.Sub(discountAmount)),
		IsDeleted:          false,
		BillerDetails:      a.billerDetails(biller),
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            a.schemaVersion,
	}, nil
}

// AllocateNumber returns the invoice name following the latest stored one
func (a *Assembler) AllocateNumber(ctx context.Context, reader InvoiceNumberReader) (string, error) {
	last, err := reader.LatestInvoiceName(ctx)
	if err != nil {
		return "", fmt.Errorf("read latest invoice number: %w", err)
	}
	n, err := NextInvoiceNumber(last)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(n), nil
}

// Renumber gives invoice a new number and stamps it with the current time, so
// creation order keeps following number order
func (a *Assembler) Renumber(invoice *models.Invoice, name string) {
	now := a.now()
	invoice.InvoiceName = name
	invoice.IssueDate = now
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
}

func (a *Assembler) billerDetails(b *models.BusinessEntity) models.BillerDetails {
	owner := b.OwnerName
	if owner == "" {
		owner = a.defaultOwner
	}
	return models.BillerDetails{
		BusinessName: b.BusinessName,
		OwnerName:    owner,
		Email:        b.Email,
		Phone:        b.PhoneNumber,
		Address:      b.BusinessAddress,
	}
}
