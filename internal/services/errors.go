package services

import (
	"errors"
	"fmt"

	"github.com/challanai/invoice-chat-service/internal/models"
)

var (
	ErrBillerNotFound       = errors.New("biller not found")
	ErrMissingCustomerPhone = errors.New("customer has no phone number")
	ErrIncompleteProduct    = errors.New("product is missing pricing or tax fields")
	ErrNoLineItems          = errors.New("no line items to invoice")
	ErrInconsistentInvoice  = errors.New("invoice totals are inconsistent")
	ErrInvoiceNumberRange   = errors.New("invoice number suffix out of range")

	// ErrTimeout marks a store or model call that ran past its deadline. Retryable.
	ErrTimeout = errors.New("upstream call timed out")
)

// MalformedQuantityError reports a quantity that is not a positive integer
type MalformedQuantityError struct {
	Position int
	Raw      string
	Reason   string
}

func (e *MalformedQuantityError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("malformed quantities %q: %s", e.Raw, e.Reason)
	}
	return fmt.Sprintf("malformed quantity %q at position %d: %s", e.Raw, e.Position+1, e.Reason)
}

// PersistenceError wraps a failed invoice write
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save invoice: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// RequestError carries the fields the caller submitted (or the model extracted)
// alongside the failure so a client can re-prompt without losing context.
type RequestError struct {
	Selection *models.Selection
	Err       error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }
