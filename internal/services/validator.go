package services

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field    string          `json:"field"`
	Code     string          `json:"code"`
	Expected decimal.Decimal `json:"expected,omitempty"`
	Actual   decimal.Decimal `json:"actual,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// ValidationWarning represents a non-critical issue
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ComputedValues holds the totals recomputed from the entries
type ComputedValues struct {
	TotalCost          decimal.Decimal `json:"total_cost"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TotalAmountPayable decimal.Decimal `json:"total_amount_payable"`
}

// ValidationResult is the response from validation
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	NeedsReview bool                `json:"needs_review"`
	Errors      []ValidationError   `json:"errors"`
	Warnings    []ValidationWarning `json:"warnings"`
	Computed    ComputedValues      `json:"computed"`
}

var invoiceNamePattern = regexp.MustCompile(`^INV-[0-9]{6,}$`)

// InvoiceValidator cross-checks the amounts of an assembled invoice
type InvoiceValidator struct{}

// NewInvoiceValidator creates a new validator
func NewInvoiceValidator() *InvoiceValidator {
	return &InvoiceValidator{}
}

// Validate recomputes every line and total of inv and reports mismatches
func (v *InvoiceValidator) Validate(inv *models.Invoice) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	// 1. Lines
	total := v.validateEntries(inv, result)

	// 2. Totals
	discount := round2(total.Mul(inv.Discount.Rate).Div(hundred))
	payable := round2(total.Sub(discount))
	result.Computed = ComputedValues{
		TotalCost:          round2(total),
		DiscountAmount:     discount,
		TotalAmountPayable: payable,
	}
	v.validateTotals(inv, result)

	// 3. Header fields
	v.validateHeader(inv, result)

	result.Valid = len(result.Errors) == 0
	result.NeedsReview = len(result.Warnings) > 0

	return result
}

// validateEntries checks each line's tax amounts and returns the sum of line totals
func (v *InvoiceValidator) validateEntries(inv *models.Invoice, result *ValidationResult) decimal.Decimal {
	if len(inv.Entries) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "entries",
			Code:    "empty_invoice",
			Message: "invoice has no entries",
		})
		return decimal.Zero
	}

	total := decimal.Zero
	for i, e := range inv.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.ProductQuantity <= 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".productQuantity",
				Code:    "invalid_quantity",
				Message: "quantity must be positive",
			})
		}

		subtotal := e.Subtotal()
		for _, component := range []struct {
			name   string
			detail models.TaxDetail
		}{
			{models.TaxCGST, e.Tax.CGST},
			{models.TaxSGST, e.Tax.SGST},
		} {
			expected := round2(subtotal.Mul(component.detail.Rate).Div(hundred))
			if !expected.Equal(component.detail.Amount) {
				result.Errors = append(result.Errors, ValidationError{
					Field:    field + ".tax." + component.name,
					Code:     "tax_mismatch",
					Expected: expected,
					Actual:   component.detail.Amount,
					Message:  component.name + " amount does not match its rate",
				})
			}
			if component.detail.Rate.IsNegative() {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Field:   field + ".tax." + component.name,
					Code:    "negative_tax_rate",
					Message: "tax rate is negative",
				})
			}
		}
		total = total.Add(e.LineTotal())
	}
	return total
}

// validateTotals compares the stored totals with the recomputed ones
func (v *InvoiceValidator) validateTotals(inv *models.Invoice, result *ValidationResult) {
	c := result.Computed
	if !c.TotalCost.Equal(inv.TotalCost) {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "totalCost",
			Code:     "total_cost_mismatch",
			Expected: c.TotalCost,
			Actual:   inv.TotalCost,
			Message:  "total cost does not match the sum of line totals",
		})
	}
	if !c.DiscountAmount.Equal(inv.Discount.Amount) {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "discount.amount",
			Code:     "discount_mismatch",
			Expected: c.DiscountAmount,
			Actual:   inv.Discount.Amount,
			Message:  "discount amount does not match its rate",
		})
	}
	if !c.TotalAmountPayable.Equal(inv.TotalAmountPayable) {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "totalAmountPayable",
			Code:     "payable_mismatch",
			Expected: c.TotalAmountPayable,
			Actual:   inv.TotalAmountPayable,
			Message:  "payable amount does not match total minus discount",
		})
	}
	if inv.Discount.Amount.GreaterThan(inv.TotalCost) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "discount.amount",
			Code:    "discount_exceeds_total",
			Message: "discount exceeds the total cost",
		})
	}
}

// validateHeader checks the invoice number and customer fields
func (v *InvoiceValidator) validateHeader(inv *models.Invoice, result *ValidationResult) {
	if !invoiceNamePattern.MatchString(inv.InvoiceName) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "invoiceName",
			Code:    "invoice_name_invalid_format",
			Message: "invoice name must look like INV-000001",
		})
	}
	if inv.CustomerPhone == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "customerPhone",
			Code:    "empty_customer_phone",
			Message: "customer phone is empty",
		})
	}
	if inv.IsDeleted {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "isDeleted",
			Code:    "created_deleted",
			Message: "invoice is marked deleted at creation",
		})
	}
}
