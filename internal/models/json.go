package models

import "github.com/shopspring/decimal"

func init() {
	// Stored invoice documents carry amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}
