package api

import (
	"errors"
	"net/http"

	"github.com/challanai/invoice-chat-service/internal/db"
	"github.com/challanai/invoice-chat-service/internal/models"
	"github.com/challanai/invoice-chat-service/internal/services"
)

// Response statuses
const (
	StatusCreated       = "created"
	StatusClarification = "clarification"
	StatusError         = "error"
)

// retryAfterSeconds is suggested to clients after a timeout
const retryAfterSeconds = "5"

// MissingProduct names the product query that matched nothing
type MissingProduct struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// InvoiceResponse is the envelope of both invoicing endpoints. Every response
// echoes the submitted fields so the client can re-prompt without losing them.
type InvoiceResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`

	Store        string `json:"store"`
	CustomerName string `json:"customer_name"`
	ProductNames string `json:"product_names"`
	Quantities   string `json:"quantities"`
	UnitType     string `json:"unit_type,omitempty"`
	BusinessID   string `json:"business_id"`
	UserID       string `json:"user_id"`

	CustomerMatches []string        `json:"customer_matches,omitempty"`
	MissingProduct  *MissingProduct `json:"missing_product,omitempty"`
	Reply           string          `json:"reply,omitempty"`

	InvoiceID string          `json:"invoice_id,omitempty"`
	Invoice   *models.Invoice `json:"invoice,omitempty"`
}

func echo(sel *models.Selection) InvoiceResponse {
	if sel == nil {
		return InvoiceResponse{}
	}
	return InvoiceResponse{
		Store:        sel.Store,
		CustomerName: sel.CustomerName,
		ProductNames: sel.ProductNames,
		Quantities:   sel.Quantities,
		UnitType:     sel.UnitType,
		BusinessID:   sel.BusinessID,
		UserID:       sel.UserID,
	}
}

func outcomeResponse(out *services.Outcome) InvoiceResponse {
	resp := echo(out.Selection)
	resp.Message = out.Message

	switch out.Kind {
	case services.OutcomeCreated:
		resp.Success = true
		resp.Status = StatusCreated
		resp.InvoiceID = out.InvoiceID
		resp.Invoice = out.Invoice
	default:
		resp.Status = StatusClarification
		resp.Reason = out.Reason
		resp.CustomerMatches = out.CustomerMatches
		resp.Reply = out.Reply
		if out.Reason == services.ReasonProductNotFound {
			resp.MissingProduct = &MissingProduct{Index: out.MissingIndex, Name: out.MissingName}
		}
	}
	return resp
}

// classify maps a pipeline error to an HTTP status and a reason code
func classify(err error) (int, string) {
	var mq *services.MalformedQuantityError
	var pe *services.PersistenceError
	switch {
	case errors.Is(err, services.ErrTimeout):
		return http.StatusServiceUnavailable, "timeout"
	case errors.As(err, &mq):
		return http.StatusUnprocessableEntity, "malformed_quantity"
	case errors.Is(err, services.ErrBillerNotFound):
		return http.StatusUnprocessableEntity, "biller_not_found"
	case errors.Is(err, services.ErrMissingCustomerPhone):
		return http.StatusUnprocessableEntity, "missing_customer_phone"
	case errors.Is(err, services.ErrIncompleteProduct):
		return http.StatusUnprocessableEntity, "incomplete_product"
	case errors.Is(err, services.ErrNoLineItems):
		return http.StatusUnprocessableEntity, "no_line_items"
	case errors.Is(err, services.ErrInconsistentInvoice):
		return http.StatusUnprocessableEntity, "inconsistent_invoice"
	case errors.As(err, &pe):
		return http.StatusInternalServerError, "persistence_failed"
	case errors.Is(err, db.ErrOverrideNotAllowed):
		return http.StatusForbidden, "db_config_not_allowed"
	case errors.Is(err, db.ErrInvalidOverride):
		return http.StatusBadRequest, "invalid_db_config"
	case errors.Is(err, db.ErrNoDatabase):
		return http.StatusServiceUnavailable, "database_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// sendFailure writes a failed invoicing response carrying the submitted fields
func sendFailure(w http.ResponseWriter, sel *models.Selection, err error) {
	var reqErr *services.RequestError
	if errors.As(err, &reqErr) && reqErr.Selection != nil {
		sel = reqErr.Selection
	}

	status, reason := classify(err)
	resp := echo(sel)
	resp.Status = StatusError
	resp.Reason = reason
	resp.Message = err.Error()
	if status == http.StatusServiceUnavailable && reason == "timeout" {
		resp.Retryable = true
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeJSON(w, status, resp)
}

// sendBadRequest rejects a malformed request, echoing what was understood
func sendBadRequest(w http.ResponseWriter, sel *models.Selection, message string) {
	resp := echo(sel)
	resp.Status = StatusError
	resp.Reason = "bad_request"
	resp.Message = message
	writeJSON(w, http.StatusBadRequest, resp)
}
