package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/internal/db"
	"github.com/challanai/invoice-chat-service/internal/models"
	"github.com/challanai/invoice-chat-service/internal/services"
)

const (
	MaxBodySize = 1 << 20 // 1MB
	Version     = "1.0.0"
)

// InvoiceStore is the request-scoped store the handlers work against
type InvoiceStore interface {
	services.Store
	ListInvoices(ctx context.Context, userID string, limit int) ([]models.StoredInvoice, error)
	GetInvoiceByName(ctx context.Context, name string) (*models.StoredInvoice, error)
	SoftDeleteInvoice(ctx context.Context, name string, at time.Time) error
	GetInvoiceStats(ctx context.Context, userID string, now time.Time) (*db.InvoiceStats, error)
}

// OpenStoreFunc returns the store for a request. override is the request's db_config, if any.
type OpenStoreFunc func(ctx context.Context, override *models.DatabaseOverride) (InvoiceStore, error)

// PDFLinker hands out download links for archived invoice PDFs
type PDFLinker interface {
	PresignedPDF(ctx context.Context, businessID string, inv *models.Invoice) (string, error)
}

// Pinger is a dependency reported by the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires a Handler
type Options struct {
	Config    *models.Config
	Service   *services.Service
	OpenStore OpenStoreFunc
	Archive   PDFLinker
	Checks    map[string]Pinger
	Metrics   http.Handler
	Logger    *zap.Logger
}

// Handler handles HTTP requests for chat invoicing
type Handler struct {
	config    *models.Config
	service   *services.Service
	openStore OpenStoreFunc
	archive   PDFLinker
	checks    map[string]Pinger
	metrics   http.Handler
	log       *zap.Logger
	limiter   *BusinessRateLimiter
	now       func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		config:    opts.Config,
		service:   opts.Service,
		openStore: opts.OpenStore,
		archive:   opts.Archive,
		checks:    opts.Checks,
		metrics:   opts.Metrics,
		log:       log,
		now:       time.Now,
	}
	if rl := opts.Config.RateLimit; rl.RequestsPerSecond > 0 {
		h.limiter = NewBusinessRateLimiter(rl.RequestsPerSecond, rl.Burst)
	}
	return h
}

// Close stops background work started by the handler
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, Logging(h.log), Recovery(h.log))

	api := router.NewRoute().Subrouter()
	if h.limiter != nil {
		api.Use(h.limiter.Middleware)
	}

	// Main endpoints
	api.HandleFunc("/generate_invoice", h.GenerateInvoice).Methods("POST")
	api.HandleFunc("/selected_customer", h.SelectedCustomer).Methods("POST")

	// Same endpoints under /api
	api.HandleFunc("/api/invoices/chat", h.GenerateInvoice).Methods("POST")
	api.HandleFunc("/api/invoices/selection", h.SelectedCustomer).Methods("POST")

	// Invoice reads
	api.HandleFunc("/api/invoices", h.GetInvoices).Methods("GET")
	api.HandleFunc("/api/invoices/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/api/invoices/{invoiceName}", h.GetInvoice).Methods("GET")
	api.HandleFunc("/api/invoices/{invoiceName}", h.DeleteInvoice).Methods("DELETE")
	api.HandleFunc("/api/invoices/{invoiceName}/pdf", h.GetInvoicePDF).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")
	if h.metrics != nil {
		router.Handle("/metrics", h.metrics).Methods("GET")
	}

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status       string                   `json:"status"`
	Version      string                   `json:"version"`
	Timestamp    string                   `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	Memory       MemoryStats              `json:"memory"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	AI           map[string]string        `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health reports process stats and the state of every dependency
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Dependencies: map[string]ServiceStatus{},
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
			"matchPolicy":     h.config.Matching.Policy,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	for name, dep := range h.checks {
		if err := dep.Ping(ctx); err != nil {
			response.Dependencies[name] = ServiceStatus{Available: false, Error: err.Error()}
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Dependencies[name] = ServiceStatus{Available: true}
	}

	writeJSON(w, status, response)
}

// writeJSON sends v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendError sends an error response
func sendError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
