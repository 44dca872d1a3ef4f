package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challanai/invoice-chat-service/internal/models"
)

func assembled(t *testing.T, discount float64) *models.Invoice {
	t.Helper()
	store := pharmacyStore()
	inv, err := testAssembler(discount).Assemble(context.Background(), store, AssembleInput{
		Customer:   hrishita(store),
		Products:   resolvedMatches(store, "p1", "p2"),
		Quantities: "2,3",
		BillerID:   "biz-1",
	})
	require.NoError(t, err)
	return inv
}

func codes(result *ValidationResult) []string {
	var out []string
	for _, e := range result.Errors {
		out = append(out, e.Code)
	}
	return out
}

func TestInvoiceValidator_AssembledInvoiceIsValid(t *testing.T) {
	for _, discount := range []float64{0, 5, 12.5} {
		result := NewInvoiceValidator().Validate(assembled(t, discount))
		assert.True(t, result.Valid, "discount %v: %v", discount, codes(result))
		assert.False(t, result.NeedsReview)
	}
}

func TestInvoiceValidator_Computed(t *testing.T) {
	result := NewInvoiceValidator().Validate(assembled(t, 5))

	assert.Equal(t, "89.20", fixed(result.Computed.TotalCost))
	assert.Equal(t, "4.46", fixed(result.Computed.DiscountAmount))
	assert.Equal(t, "84.74", fixed(result.Computed.TotalAmountPayable))
}

func TestInvoiceValidator_Mismatches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Invoice)
		code   string
	}{
		{"tax amount", func(inv *models.Invoice) { inv.Entries[0].Tax.CGST.Amount = decimal.RequireFromString("1.10") }, "tax_mismatch"},
		{"total cost", func(inv *models.Invoice) { inv.TotalCost = decimal.RequireFromString("90.00") }, "total_cost_mismatch"},
		{"discount", func(inv *models.Invoice) { inv.Discount.Amount = decimal.RequireFromString("1.00") }, "discount_mismatch"},
		{"payable", func(inv *models.Invoice) { inv.TotalAmountPayable = decimal.RequireFromString("80.00") }, "payable_mismatch"},
		{"empty", func(inv *models.Invoice) { inv.Entries = nil }, "empty_invoice"},
		{"invoice name", func(inv *models.Invoice) { inv.InvoiceName = "42" }, "invoice_name_invalid_format"},
		{"quantity", func(inv *models.Invoice) { inv.Entries[1].ProductQuantity = 0 }, "invalid_quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := assembled(t, 5)
			tt.mutate(inv)

			result := NewInvoiceValidator().Validate(inv)
			assert.False(t, result.Valid)
			assert.Contains(t, codes(result), tt.code)
		})
	}
}

func TestInvoiceValidator_Warnings(t *testing.T) {
	inv := assembled(t, 0)
	inv.IsDeleted = true
	inv.CustomerPhone = ""

	result := NewInvoiceValidator().Validate(inv)
	assert.True(t, result.Valid)
	assert.True(t, result.NeedsReview)
	assert.Len(t, result.Warnings, 2)
}
