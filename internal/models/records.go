package models

import (
	"github.com/shopspring/decimal"
)

// Tax component keys used in Product.TaxPercentages
const (
	TaxCGST = "cgst"
	TaxSGST = "sgst"
)

// Customer is an end customer of a business. Read-only here.
type Customer struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	BusinessEntityID string  `json:"business_entity_id"`
}

// Product is a sellable item partitioned by shopkeeper. Read-only here.
type Product struct {
	ID             string                     `json:"id"`
	ProductName    string                     `json:"productName"`
	PricePerUnit   decimal.NullDecimal        `json:"pricePerUnit"`
	TaxPercentages map[string]decimal.Decimal `json:"taxPercentages"`
	ShopkeeperID   string                     `json:"shopkeeperId"`
}

// TaxRate returns the percentage for a tax component and whether it is present
func (p *Product) TaxRate(component string) (decimal.Decimal, bool) {
	if p.TaxPercentages == nil {
		return decimal.Zero, false
	}
	rate, ok := p.TaxPercentages[component]
	return rate, ok
}

// BusinessEntity is the biller issuing invoices
type BusinessEntity struct {
	ID              string `json:"id"`
	BusinessName    string `json:"business_name"`
	OwnerName       string `json:"owner_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	BusinessAddress string `json:"business_address"`
}
