package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challanai/invoice-chat-service/internal/models"
)

func TestInvoicePDF(t *testing.T) {
	d := decimal.RequireFromString
	inv := &models.Invoice{
		BusinessName:  "Anand Pharmacy",
		CustomerName:  "Hrishita Patil",
		CustomerPhone: "9820000001",
		IssueDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		InvoiceName:   "INV-000001",
		Entries: []models.LineItem{{
			ProductID:       "p1",
			ProductName:     "Augmentin",
			ProductCost:     d("10"),
			ProductQuantity: 2,
			Tax: models.Tax{
				CGST: models.TaxDetail{Rate: d("5"), Amount: d("1")},
				SGST: models.TaxDetail{Rate: d("5"), Amount: d("1")},
			},
		}},
		TotalCost:          d("22"),
		Discount:           models.Discount{Rate: d("0"), Amount: d("0")},
		TotalAmountPayable: d("22"),
		BillerDetails: models.BillerDetails{
			BusinessName: "Anand Pharmacy",
			OwnerName:    "Anand Bora",
			Address:      "12 MG Road, Pune",
		},
	}

	out, err := InvoicePDF(inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}
