package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/internal/ai"
	"github.com/challanai/invoice-chat-service/internal/metrics"
	"github.com/challanai/invoice-chat-service/internal/models"
)

// OutcomeKind tags an Outcome
type OutcomeKind string

const (
	OutcomeCreated       OutcomeKind = "created"
	OutcomeClarification OutcomeKind = "clarification"
)

// Clarification reasons
const (
	ReasonCustomerNotFound  = "customer_not_found"
	ReasonCustomerAmbiguous = "customer_ambiguous"
	ReasonProductNotFound   = "product_not_found"
	ReasonExtractionFailed  = "extraction_failed"
)

// Outcome is either a created invoice or a request for clarification. Clarifications
// carry the submitted fields so the client can resubmit a disambiguated selection.
type Outcome struct {
	Kind      OutcomeKind
	Reason    string
	Message   string
	Selection *models.Selection

	// customer_ambiguous
	CustomerMatches []string

	// product_not_found
	MissingIndex int
	MissingName  string

	// extraction_failed
	Reply string

	InvoiceID string
	Invoice   *models.Invoice
}

// TextExtractor turns free text into a structured billing request
type TextExtractor interface {
	Extract(ctx context.Context, text string) (*models.Extraction, error)
	ProviderName() string
}

// Archiver keeps a rendered copy of a persisted invoice
type Archiver interface {
	Archive(ctx context.Context, businessID string, invoice *models.Invoice) error
}

// ServiceOptions configures a Service
type ServiceOptions struct {
	Resolver  *Resolver
	Assembler *Assembler
	Validator *InvoiceValidator
	Extractor TextExtractor
	Archiver  Archiver
	Metrics   *metrics.Recorder
	Logger    *zap.Logger

	DBTimeout        time.Duration
	LLMTimeout       time.Duration
	MaxNumberRetries int
}

// Service runs the chat-to-invoice pipeline
type Service struct {
	resolver   *Resolver
	assembler  *Assembler
	validator  *InvoiceValidator
	extractor  TextExtractor
	archiver   Archiver
	metrics    *metrics.Recorder
	log        *zap.Logger
	dbTimeout  time.Duration
	llmTimeout time.Duration
	maxRetries int
}

// NewService creates the invoicing pipeline
func NewService(opts ServiceOptions) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewInvoiceValidator()
	}
	return &Service{
		resolver:   opts.Resolver,
		assembler:  opts.Assembler,
		validator:  validator,
		extractor:  opts.Extractor,
		archiver:   opts.Archiver,
		metrics:    opts.Metrics,
		log:        log,
		dbTimeout:  opts.DBTimeout,
		llmTimeout: opts.LLMTimeout,
		maxRetries: opts.MaxNumberRetries,
	}
}

// CreateFromText extracts a billing request from free text and invoices it
func (s *Service) CreateFromText(ctx context.Context, store Store, req *models.TextRequest) (*Outcome, error) {
	echo := &models.Selection{BusinessID: req.BusinessID, UserID: req.UserID, DBConfig: req.DBConfig}
	if s.extractor == nil {
		return nil, s.fail(echo, "extraction", errors.New("no language model configured"))
	}

	extraction, err := s.extract(ctx, req.UserInput)
	if err != nil {
		var exErr *ai.ExtractionError
		if errors.As(err, &exErr) {
			s.metrics.Clarification(ReasonExtractionFailed)
			s.log.Info("extraction needs clarification",
				zap.String("business_id", req.BusinessID),
				zap.Error(exErr.Err),
			)
			return &Outcome{
				Kind:      OutcomeClarification,
				Reason:    ReasonExtractionFailed,
				Message:   "Could not understand the request. Please mention the customer, products and quantities.",
				Selection: echo,
				Reply:     exErr.Reply,
			}, nil
		}
		return nil, s.fail(echo, "extraction", err)
	}

	return s.CreateFromSelection(ctx, store, models.SelectionFromExtraction(extraction, req))
}

func (s *Service) extract(ctx context.Context, text string) (*models.Extraction, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	start := time.Now()
	extraction, err := s.extractor.Extract(ctx, text)
	s.metrics.ExtractionDuration(s.extractor.ProviderName(), time.Since(start))

	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return nil, errors.Join(ErrTimeout, err)
	}
	return extraction, err
}

// CreateFromSelection resolves, prices, numbers and persists one invoice
func (s *Service) CreateFromSelection(ctx context.Context, store Store, sel *models.Selection) (*Outcome, error) {
	store = WithTimeout(store, s.dbTimeout)
	log := s.log.With(
		zap.String("business_id", sel.BusinessID),
		zap.String("user_id", sel.UserID),
	)

	// 1. Customer
	resolution, err := s.resolver.ResolveCustomer(ctx, store, sel.CustomerName, sel.BusinessID)
	if err != nil {
		return nil, s.fail(sel, "resolve", err)
	}
	switch resolution.Kind {
	case CustomerNotFound:
		s.metrics.Clarification(ReasonCustomerNotFound)
		return &Outcome{
			Kind:      OutcomeClarification,
			Reason:    ReasonCustomerNotFound,
			Message:   fmt.Sprintf("No customer found matching %q.", sel.CustomerName),
			Selection: sel,
		}, nil
	case CustomerAmbiguous:
		s.metrics.Clarification(ReasonCustomerAmbiguous)
		return &Outcome{
			Kind:            OutcomeClarification,
			Reason:          ReasonCustomerAmbiguous,
			Message:         "Multiple customers found. Please select one.",
			Selection:       sel,
			CustomerMatches: resolution.Matches,
		}, nil
	}

	// 2. Products
	products, err := s.resolver.ResolveProducts(ctx, store, sel.ProductNames, sel.UserID)
	if err != nil {
		return nil, s.fail(sel, "resolve", err)
	}
	if missing, ok := FirstMissing(products); ok {
		s.metrics.Clarification(ReasonProductNotFound)
		return &Outcome{
			Kind:         OutcomeClarification,
			Reason:       ReasonProductNotFound,
			Message:      fmt.Sprintf("No product found matching %q.", missing.Query),
			Selection:    sel,
			MissingIndex: missing.Index,
			MissingName:  missing.Query,
		}, nil
	}

	// 3. Assemble
	invoice, err := s.assembler.Assemble(ctx, store, AssembleInput{
		Customer:   resolution.Customer,
		Products:   products,
		Quantities: sel.Quantities,
		StoreName:  sel.Store,
		BillerID:   sel.BusinessID,
		UserID:     sel.UserID,
	})
	if err != nil {
		return nil, s.fail(sel, "assemble", err)
	}

	if result := s.validator.Validate(invoice); !result.Valid {
		log.Error("assembled invoice failed validation",
			zap.String("invoice", invoice.InvoiceName),
			zap.Any("errors", result.Errors),
		)
		return nil, s.fail(sel, "validate", fmt.Errorf("%w: %s", ErrInconsistentInvoice, result.Errors[0].Code))
	}

	// 4. Persist
	id, err := s.save(ctx, store, invoice)
	if err != nil {
		return nil, s.fail(sel, "persist", err)
	}

	s.metrics.InvoiceCreated()
	log.Info("invoice created",
		zap.String("id", id),
		zap.String("invoice", invoice.InvoiceName),
		zap.String("payable", invoice.TotalAmountPayable.StringFixed(2)),
	)

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, sel.BusinessID, invoice); err != nil {
			log.Warn("failed to archive invoice", zap.String("invoice", invoice.InvoiceName), zap.Error(err))
		}
	}

	return &Outcome{
		Kind: OutcomeCreated,
		Message: fmt.Sprintf("Invoice generated successfully for %s of Rs %s bill no %s",
			invoice.CustomerName, invoice.TotalAmountPayable.StringFixed(2), invoice.InvoiceName),
		Selection: sel,
		InvoiceID: id,
		Invoice:   invoice,
	}, nil
}

// save writes invoice, taking the next number again whenever the current one
// was claimed by a concurrent request
func (s *Service) save(ctx context.Context, store Store, invoice *models.Invoice) (string, error) {
	for attempt := 0; ; attempt++ {
		id, err := store.SaveInvoice(ctx, invoice)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, models.ErrDuplicateInvoiceNumber) || attempt >= s.maxRetries {
			return "", &PersistenceError{Cause: err}
		}

		s.metrics.NumberRetry()
		taken := invoice.InvoiceName
		name, err := s.assembler.AllocateNumber(ctx, store)
		if err != nil {
			return "", &PersistenceError{Cause: err}
		}
		if name == taken {
			// The conflicting row is not visible yet; step past it.
			n, err := NextInvoiceNumber(taken)
			if err != nil {
				return "", &PersistenceError{Cause: err}
			}
			name = FormatInvoiceNumber(n)
		}
		s.log.Warn("invoice number taken, retrying",
			zap.String("taken", taken),
			zap.String("next", name),
			zap.Int("attempt", attempt+1),
		)
		s.assembler.Renumber(invoice, name)
	}
}

func (s *Service) fail(sel *models.Selection, stage string, err error) error {
	s.metrics.Failure(failureKind(err, stage))
	s.log.Error("invoice request failed",
		zap.String("stage", stage),
		zap.String("business_id", sel.BusinessID),
		zap.Error(err),
	)
	return &RequestError{Selection: sel, Err: err}
}

func failureKind(err error, stage string) string {
	var mq *MalformedQuantityError
	var pe *PersistenceError
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &mq):
		return "malformed_quantity"
	case errors.Is(err, ErrBillerNotFound):
		return "biller_not_found"
	case errors.Is(err, ErrMissingCustomerPhone):
		return "missing_phone"
	case errors.Is(err, ErrInconsistentInvoice):
		return "inconsistent"
	case errors.As(err, &pe):
		return "persistence"
	}
	return stage
}
