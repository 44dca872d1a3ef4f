package models

import "errors"

// ErrNotFound is returned by stores when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicateInvoiceNumber is returned when an invoice number is already taken
var ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
