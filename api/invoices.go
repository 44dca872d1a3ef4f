package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/internal/models"
	"github.com/challanai/invoice-chat-service/internal/render"
	"github.com/challanai/invoice-chat-service/internal/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// chatRequest is the body of the free-text endpoint
type chatRequest struct {
	UserInput  string `json:"user_input"`
	BusinessID string `json:"business_id"`
	UserID     string `json:"user_id"`

	DBConfig    *models.DatabaseOverride `json:"db_config"`
	MongoConfig *models.DatabaseOverride `json:"mongo_config"`
}

// selectionRequest is the body of the disambiguated-selection endpoint
type selectionRequest struct {
	Store        string `json:"store"`
	CustomerName string `json:"customer_name"`
	ProductNames string `json:"product_names"`
	Quantities   string `json:"quantities"`
	UnitType     string `json:"unit_type"`
	BusinessID   string `json:"business_id"`
	UserID       string `json:"user_id"`
	LegacyUserID string `json:"User_id"`

	DBConfig    *models.DatabaseOverride `json:"db_config"`
	MongoConfig *models.DatabaseOverride `json:"mongo_config"`
}

func pickOverride(dbConfig, mongoConfig *models.DatabaseOverride) *models.DatabaseOverride {
	if dbConfig != nil {
		return dbConfig
	}
	return mongoConfig
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// GenerateInvoice extracts a billing request from free text and invoices it
func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := decodeBody(w, r, &body); err != nil {
		sendBadRequest(w, nil, "invalid request body")
		return
	}

	req := &models.TextRequest{
		UserInput:  strings.TrimSpace(body.UserInput),
		BusinessID: body.BusinessID,
		UserID:     body.UserID,
		DBConfig:   pickOverride(body.DBConfig, body.MongoConfig),
	}
	sel := &models.Selection{BusinessID: req.BusinessID, UserID: req.UserID}
	if req.UserInput == "" || req.BusinessID == "" || req.UserID == "" {
		sendBadRequest(w, sel, "user_input, business_id and user_id are required")
		return
	}

	ctx := r.Context()
	store, err := h.openStore(ctx, req.DBConfig)
	if err != nil {
		sendFailure(w, sel, err)
		return
	}

	out, err := h.service.CreateFromText(ctx, store, req)
	if err != nil {
		sendFailure(w, sel, err)
		return
	}
	h.sendOutcome(w, out)
}

// SelectedCustomer invokes the pipeline with an already disambiguated selection
func (h *Handler) SelectedCustomer(w http.ResponseWriter, r *http.Request) {
	var body selectionRequest
	if err := decodeBody(w, r, &body); err != nil {
		sendBadRequest(w, nil, "invalid request body")
		return
	}

	userID := body.UserID
	if userID == "" {
		userID = body.LegacyUserID
	}
	sel := &models.Selection{
		Store:        body.Store,
		CustomerName: body.CustomerName,
		ProductNames: body.ProductNames,
		Quantities:   body.Quantities,
		UnitType:     body.UnitType,
		BusinessID:   body.BusinessID,
		UserID:       userID,
		DBConfig:     pickOverride(body.DBConfig, body.MongoConfig),
	}
	if sel.CustomerName == "" || sel.ProductNames == "" || sel.Quantities == "" || sel.BusinessID == "" || sel.UserID == "" {
		sendBadRequest(w, sel, "customer_name, product_names, quantities, business_id and user_id are required")
		return
	}

	ctx := r.Context()
	store, err := h.openStore(ctx, sel.DBConfig)
	if err != nil {
		sendFailure(w, sel, err)
		return
	}

	out, err := h.service.CreateFromSelection(ctx, store, sel)
	if err != nil {
		sendFailure(w, sel, err)
		return
	}
	h.sendOutcome(w, out)
}

func (h *Handler) sendOutcome(w http.ResponseWriter, out *services.Outcome) {
	writeJSON(w, http.StatusOK, outcomeResponse(out))
}

// GetInvoices returns the newest invoices of a user
func (h *Handler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		sendError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			sendError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	ctx := r.Context()
	store, err := h.openStore(ctx, nil)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	invoices, err := store.ListInvoices(ctx, userID, limit)
	if err != nil {
		h.log.Error("failed to list invoices", zap.String("user_id", userID), zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to get invoices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"invoices": invoices,
		"count":    len(invoices),
	})
}

// GetInvoice returns a single invoice by its number
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	stored, ok := h.lookupInvoice(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      stored.ID,
		"invoice": stored.Invoice,
	})
}

// DeleteInvoice soft-deletes an invoice; its number stays taken
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["invoiceName"]

	store, err := h.openStore(ctx, nil)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	if err := store.SoftDeleteInvoice(ctx, name, h.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			sendError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.log.Error("failed to delete invoice", zap.String("invoice", name), zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to delete invoice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "invoice deleted",
	})
}

// GetInvoicePDF returns a download link to the archived PDF when business_id is
// given and archiving is enabled; otherwise it renders the PDF inline
func (h *Handler) GetInvoicePDF(w http.ResponseWriter, r *http.Request) {
	stored, ok := h.lookupInvoice(w, r)
	if !ok {
		return
	}

	if businessID := r.URL.Query().Get("business_id"); businessID != "" && h.archive != nil {
		url, err := h.archive.PresignedPDF(r.Context(), businessID, stored.Invoice)
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"url":     url,
			})
			return
		}
		h.log.Warn("presign failed, rendering inline", zap.String("invoice", stored.Invoice.InvoiceName), zap.Error(err))
	}

	pdf, err := render.InvoicePDF(stored.Invoice)
	if err != nil {
		h.log.Error("failed to render invoice", zap.String("invoice", stored.Invoice.InvoiceName), zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to render invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+stored.Invoice.InvoiceName+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// GetStats returns invoice counts for a user
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		sendError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ctx := r.Context()
	store, err := h.openStore(ctx, nil)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	stats, err := store.GetInvoiceStats(ctx, userID, h.now())
	if err != nil {
		h.log.Error("failed to get stats", zap.String("user_id", userID), zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func (h *Handler) lookupInvoice(w http.ResponseWriter, r *http.Request) (*models.StoredInvoice, bool) {
	ctx := r.Context()
	name := mux.Vars(r)["invoiceName"]

	store, err := h.openStore(ctx, nil)
	if err != nil {
		h.sendStoreError(w, err)
		return nil, false
	}

	stored, err := store.GetInvoiceByName(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			sendError(w, http.StatusNotFound, "invoice not found")
			return nil, false
		}
		h.log.Error("failed to get invoice", zap.String("invoice", name), zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to get invoice")
		return nil, false
	}
	return stored, true
}

func (h *Handler) sendStoreError(w http.ResponseWriter, err error) {
	status, _ := classify(err)
	h.log.Error("database not available", zap.Error(err))
	sendError(w, status, "database not available")
}
