package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// round2 rounds to 2 decimal places, half away from zero
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeLine prices quantity units of product with the product's current tax rates.
// Each amount is rounded on its own; the line total is their plain sum.
func ComputeLine(product *models.Product, quantity int) (models.LineItem, error) {
	if quantity <= 0 {
		return models.LineItem{}, &MalformedQuantityError{
			Position: -1,
			Raw:      fmt.Sprint(quantity),
			Reason:   "quantity must be a positive integer",
		}
	}
	if product == nil || !product.PricePerUnit.Valid {
		return models.LineItem{}, fmt.Errorf("%w: no price", ErrIncompleteProduct)
	}
	cgstRate, ok := product.TaxRate(models.TaxCGST)
	if !ok {
		return models.LineItem{}, fmt.Errorf("%w: %s has no cgst", ErrIncompleteProduct, product.ProductName)
	}
	sgstRate, ok := product.TaxRate(models.TaxSGST)
	if !ok {
		return models.LineItem{}, fmt.Errorf("%w: %s has no sgst", ErrIncompleteProduct, product.ProductName)
	}

	price := product.PricePerUnit.Decimal
	subtotal := round2(price.Mul(decimal.NewFromInt(int64(quantity))))

	return models.LineItem{
		ProductID:       product.ID,
		ProductName:     product.ProductName,
		ProductCost:     price,
		ProductQuantity: quantity,
		TaxIncluded:     false,
		Tax: models.Tax{
			CGST: models.TaxDetail{Rate: cgstRate, Amount: round2(subtotal.Mul(cgstRate).Div(hundred))},
			SGST: models.TaxDetail{Rate: sgstRate, Amount: round2(subtotal.Mul(sgstRate).Div(hundred))},
		},
	}, nil
}
