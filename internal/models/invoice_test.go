package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceDocumentLayout(t *testing.T) {
	inv := Invoice{
		InvoiceName:        "INV-000001",
		TotalAmountPayable: decimal.RequireFromString("89.20"),
		Version:            4,
		Entries: []LineItem{{
			ProductID:       "p1",
			ProductCost:     decimal.NewFromInt(10),
			ProductQuantity: 2,
		}},
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{
		"userId", "businessName", "customerName", "customerPhone", "issueDate", "invoiceName",
		"entries", "totalCost", "discount", "totalAmountPayable", "isDeleted", "billerDetails",
		"createdAt", "updatedAt", "_v",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, 89.2, doc["totalAmountPayable"])
	assert.Equal(t, false, doc["isDeleted"])
	assert.Equal(t, float64(4), doc["_v"])

	entry := doc["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "p1", entry["productId"])
	assert.Contains(t, entry["tax"], "cgst")
}

func TestLineItemTotals(t *testing.T) {
	line := LineItem{
		ProductCost:     decimal.RequireFromString("20.00"),
		ProductQuantity: 3,
		Tax: Tax{
			CGST: TaxDetail{Rate: decimal.NewFromInt(6), Amount: decimal.RequireFromString("3.60")},
			SGST: TaxDetail{Rate: decimal.NewFromInt(6), Amount: decimal.RequireFromString("3.60")},
		},
	}
	assert.Equal(t, "60.00", line.Subtotal().StringFixed(2))
	assert.Equal(t, "67.20", line.LineTotal().StringFixed(2))
}

func TestSelectionFromExtraction(t *testing.T) {
	override := &DatabaseOverride{URI: "postgres://x"}
	sel := SelectionFromExtraction(
		&Extraction{Store: "Anand Pharmacy", CustomerName: "Hrishita", ProductNames: "Crocin", Quantities: "3", UnitType: "strip"},
		&TextRequest{BusinessID: "biz-1", UserID: "user-1", DBConfig: override},
	)
	assert.Equal(t, "Hrishita", sel.CustomerName)
	assert.Equal(t, "biz-1", sel.BusinessID)
	assert.Equal(t, "user-1", sel.UserID)
	assert.Same(t, override, sel.DBConfig)
}
