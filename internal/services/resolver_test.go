package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/internal/models"
)

func fuzzyResolver() *Resolver {
	return NewResolver(models.MatchingConfig{
		Policy:    models.MatchFuzzy,
		Scorer:    models.ScorerLevenshtein,
		Threshold: 80,
	}, zap.NewNop())
}

func substringResolver() *Resolver {
	return NewResolver(models.MatchingConfig{Policy: models.MatchSubstring}, zap.NewNop())
}

func TestResolveCustomer(t *testing.T) {
	store := pharmacyStore()
	r := fuzzyResolver()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		res, err := r.ResolveCustomer(ctx, store, "hrishita", "biz-1")
		require.NoError(t, err)
		assert.Equal(t, CustomerFound, res.Kind)
		assert.Equal(t, "c1", res.Customer.ID)
	})

	t.Run("ambiguous", func(t *testing.T) {
		res, err := r.ResolveCustomer(ctx, store, "Rahul", "biz-1")
		require.NoError(t, err)
		assert.Equal(t, CustomerAmbiguous, res.Kind)
		assert.Equal(t, []string{"Rahul Mehta", "Rahul Sharma"}, res.Matches)
		assert.Nil(t, res.Customer)
	})

	t.Run("not found", func(t *testing.T) {
		res, err := r.ResolveCustomer(ctx, store, "Zoya", "biz-1")
		require.NoError(t, err)
		assert.Equal(t, CustomerNotFound, res.Kind)
	})

	t.Run("scoped to business", func(t *testing.T) {
		res, err := r.ResolveCustomer(ctx, store, "Hrishita Rao", "biz-1")
		require.NoError(t, err)
		assert.Equal(t, CustomerNotFound, res.Kind)
	})

	t.Run("blank query", func(t *testing.T) {
		res, err := r.ResolveCustomer(ctx, store, "  ", "biz-1")
		require.NoError(t, err)
		assert.Equal(t, CustomerNotFound, res.Kind)
	})
}

func TestResolveProducts_Fuzzy(t *testing.T) {
	store := pharmacyStore()

	matches, err := fuzzyResolver().ResolveProducts(context.Background(), store, "Augmentn, Paracetamol ,crocin", "user-1")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.True(t, matches[0].Found())
	assert.Equal(t, "p1", matches[0].Product.ID)

	assert.False(t, matches[1].Found())
	assert.Equal(t, 1, matches[1].Index)
	assert.Equal(t, "Paracetamol", matches[1].Query)

	assert.True(t, matches[2].Found())
	assert.Equal(t, "p2", matches[2].Product.ID)

	missing, ok := FirstMissing(matches)
	require.True(t, ok)
	assert.Equal(t, 1, missing.Index)
}

func TestResolveProducts_FuzzyScopedToShopkeeper(t *testing.T) {
	store := pharmacyStore()

	matches, err := fuzzyResolver().ResolveProducts(context.Background(), store, "Augmentin", "user-2")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Found())
}

func TestResolveProducts_Substring(t *testing.T) {
	store := pharmacyStore()
	store.products = append(store.products, product("p9", "Crocin Advance", "25.00", "6", "6"))

	matches, err := substringResolver().ResolveProducts(context.Background(), store, "croc,dolo,Augmentn", "user-1")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// first row wins
	assert.Equal(t, "p2", matches[0].Product.ID)
	assert.Equal(t, "p3", matches[1].Product.ID)
	// no typo tolerance
	assert.False(t, matches[2].Found())
}

func TestResolveProducts_EmptyNameIsNotFound(t *testing.T) {
	store := pharmacyStore()

	matches, err := fuzzyResolver().ResolveProducts(context.Background(), store, "Crocin,,Augmentin", "user-1")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.True(t, matches[0].Found())
	assert.False(t, matches[1].Found())
	assert.True(t, matches[2].Found())

	_, ok := FirstMissing([]ProductMatch{matches[0], matches[2]})
	assert.False(t, ok)
}
