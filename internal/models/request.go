package models

// Extraction is the structured billing request returned by the LLM
type Extraction struct {
	Store        string `json:"store"`
	CustomerName string `json:"customer_name"`
	ProductNames string `json:"product_names"` // comma separated
	Quantities   string `json:"quantities"`    // comma separated
	UnitType     string `json:"unit_type"`
}

// TextRequest is a free-text billing request
type TextRequest struct {
	UserInput  string            `json:"user_input"`
	BusinessID string            `json:"business_id"`
	UserID     string            `json:"user_id"`
	DBConfig   *DatabaseOverride `json:"db_config,omitempty"`
}

// Selection is an already disambiguated billing request
type Selection struct {
	Store        string            `json:"store"`
	CustomerName string            `json:"customer_name"`
	ProductNames string            `json:"product_names"`
	Quantities   string            `json:"quantities"`
	UnitType     string            `json:"unit_type,omitempty"`
	BusinessID   string            `json:"business_id"`
	UserID       string            `json:"user_id"`
	DBConfig     *DatabaseOverride `json:"db_config,omitempty"`
}

// SelectionFromExtraction carries the request context over to extracted fields
func SelectionFromExtraction(ex *Extraction, req *TextRequest) *Selection {
	return &Selection{
		Store:        ex.Store,
		CustomerName: ex.CustomerName,
		ProductNames: ex.ProductNames,
		Quantities:   ex.Quantities,
		UnitType:     ex.UnitType,
		BusinessID:   req.BusinessID,
		UserID:       req.UserID,
		DBConfig:     req.DBConfig,
	}
}
