package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxDetail is one tax component applied to a line
type TaxDetail struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// Tax holds the two tax components of a line
type Tax struct {
	SGST TaxDetail `json:"sgst"`
	CGST TaxDetail `json:"cgst"`
}

// LineItem is an invoice entry. Embedded in Invoice, never stored on its own.
type LineItem struct {
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductCost     decimal.Decimal `json:"productCost"`
	ProductQuantity int             `json:"productQuantity"`
	TaxIncluded     bool            `json:"taxIncluded"`
	Tax             Tax             `json:"tax"`
}

// Subtotal is quantity times unit cost, rounded to 2 places
func (l LineItem) Subtotal() decimal.Decimal {
	return l.ProductCost.Mul(decimal.NewFromInt(int64(l.ProductQuantity))).Round(2)
}

// LineTotal is the subtotal plus both tax amounts
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Subtotal().Add(l.Tax.CGST.Amount).Add(l.Tax.SGST.Amount)
}

// Discount applied to the invoice total
type Discount struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// BillerDetails is a snapshot of the issuing business at creation time
type BillerDetails struct {
	BusinessName string `json:"businessName"`
	OwnerName    string `json:"ownerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// Invoice is the persisted aggregate (stored as a "challan" document).
// The JSON layout is read by other systems; do not rename fields.
type Invoice struct {
	UserID             string          `json:"userId"`
	BusinessName       string          `json:"businessName"`
	CustomerName       string          `json:"customerName"`
	CustomerPhone      string          `json:"customerPhone"`
	IssueDate          time.Time       `json:"issueDate"`
	InvoiceName        string          `json:"invoiceName"`
	Entries            []LineItem      `json:"entries"`
	TotalCost          decimal.Decimal `json:"totalCost"`
	Discount           Discount        `json:"discount"`
	TotalAmountPayable decimal.Decimal `json:"totalAmountPayable"`
	IsDeleted          bool            `json:"isDeleted"`
	BillerDetails      BillerDetails   `json:"billerDetails"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Version            int             `json:"_v"`
}

// StoredInvoice is an invoice together with its store-assigned identifier
type StoredInvoice struct {
	ID      string   `json:"id"`
	Invoice *Invoice `json:"invoice"`
}
