package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const invoicePrefix = "INV-"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// NextInvoiceNumber returns the number following the trailing numeric suffix of last.
// An empty or suffix-less name restarts the sequence at 1. A suffix too large to
// increment fails with ErrInvoiceNumberRange rather than restarting.
func NextInvoiceNumber(last string) (int, error) {
	m := trailingDigits.FindStringSubmatch(strings.TrimSpace(last))
	if m == nil {
		return 1, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == math.MaxInt {
		return 0, fmt.Errorf("%w: %s", ErrInvoiceNumberRange, last)
	}
	return n + 1, nil
}

// FormatInvoiceNumber renders n as INV-000042
func FormatInvoiceNumber(n int) string {
	return fmt.Sprintf("%s%06d", invoicePrefix, n)
}

// ParseQuantities parses a comma separated list of positive integers
func ParseQuantities(csv string) ([]int, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, &MalformedQuantityError{Position: -1, Raw: csv, Reason: "no quantities given"}
	}

	parts := strings.Split(csv, ",")
	quantities := make([]int, len(parts))
	for i, part := range parts {
		raw := strings.TrimSpace(part)
		q, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &MalformedQuantityError{Position: i, Raw: raw, Reason: "not an integer"}
		}
		if q <= 0 {
			return nil, &MalformedQuantityError{Position: i, Raw: raw, Reason: "must be positive"}
		}
		quantities[i] = q
	}
	return quantities, nil
}
