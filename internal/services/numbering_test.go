package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextInvoiceNumber(t *testing.T) {
	tests := []struct {
		last string
		want int
	}{
		{"", 1},
		{"INV-000041", 42},
		{"INV-999999", 1000000},
		{"INV-1000000", 1000001},
		{"legacy-7", 8},
		{"DRAFT", 1},
		{"INV-00012A", 1},
	}
	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			n, err := NextInvoiceNumber(tt.last)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNextInvoiceNumber_SuffixOutOfRange(t *testing.T) {
	for _, last := range []string{"INV-99999999999999999999", "INV-9223372036854775807"} {
		t.Run(last, func(t *testing.T) {
			_, err := NextInvoiceNumber(last)
			assert.ErrorIs(t, err, ErrInvoiceNumberRange)
		})
	}
}

func TestAllocateNumber_DoesNotRestartOnOverflow(t *testing.T) {
	store := newMemStore()
	store.staleLatest = []string{"INV-99999999999999999999"}

	_, err := testAssembler(0).AllocateNumber(context.Background(), store)
	assert.ErrorIs(t, err, ErrInvoiceNumberRange)
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-000001", FormatInvoiceNumber(1))
	assert.Equal(t, "INV-000042", FormatInvoiceNumber(42))
	assert.Equal(t, "INV-1234567", FormatInvoiceNumber(1234567))
}

func TestParseQuantities(t *testing.T) {
	q, err := ParseQuantities("2, 3 ,10")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 10}, q)

	for _, bad := range []string{"", "2,,3", "2,three", "2,-1", "0", "1.5"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseQuantities(bad)
			var mq *MalformedQuantityError
			assert.ErrorAs(t, err, &mq)
		})
	}
}

func TestParseQuantities_ReportsPosition(t *testing.T) {
	_, err := ParseQuantities("2,x")
	var mq *MalformedQuantityError
	require.ErrorAs(t, err, &mq)
	assert.Equal(t, 1, mq.Position)
	assert.Equal(t, "x", mq.Raw)
	assert.Contains(t, mq.Error(), "position 2")
}
