package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// CustomerFinder looks up customers of a business by case-insensitive name substring
type CustomerFinder interface {
	FindCustomers(ctx context.Context, businessID, nameQuery string) ([]models.Customer, error)
}

// ProductFinder reads the products of a shopkeeper
type ProductFinder interface {
	// FindProducts returns products whose name contains nameQuery, case-insensitively
	FindProducts(ctx context.Context, shopkeeperID, nameQuery string) ([]models.Product, error)
	ListProducts(ctx context.Context, shopkeeperID string) ([]models.Product, error)
}

// ResolutionKind tags a CustomerResolution
type ResolutionKind int

const (
	CustomerFound ResolutionKind = iota + 1
	CustomerAmbiguous
	CustomerNotFound
)

func (k ResolutionKind) String() string {
	switch k {
	case CustomerFound:
		return "found"
	case CustomerAmbiguous:
		return "ambiguous"
	case CustomerNotFound:
		return "not_found"
	}
	return "unknown"
}

// CustomerResolution is Found(Customer), Ambiguous(Matches) or NotFound
type CustomerResolution struct {
	Kind     ResolutionKind
	Customer *models.Customer
	Matches  []string
}

// ProductMatch is the outcome for one requested product name.
// Product is nil when nothing matched.
type ProductMatch struct {
	Index   int
	Query   string
	Product *models.Product
	Score   float64
}

func (m ProductMatch) Found() bool { return m.Product != nil }

// Resolver resolves requested names against stored records
type Resolver struct {
	policy    string
	threshold float64
	scorer    Scorer
	log       *zap.Logger
}

// NewResolver creates a resolver for the configured matching policy
func NewResolver(cfg models.MatchingConfig, log *zap.Logger) *Resolver {
	policy := cfg.Policy
	if policy == "" {
		policy = models.MatchFuzzy
	}
	return &Resolver{
		policy:    policy,
		threshold: cfg.Threshold,
		scorer:    NewScorer(cfg.Scorer),
		log:       log,
	}
}

// ResolveCustomer matches nameQuery against the customers of businessID
func (r *Resolver) ResolveCustomer(ctx context.Context, finder CustomerFinder, nameQuery, businessID string) (*CustomerResolution, error) {
	nameQuery = strings.TrimSpace(nameQuery)
	if nameQuery == "" {
		return &CustomerResolution{Kind: CustomerNotFound}, nil
	}

	customers, err := finder.FindCustomers(ctx, businessID, nameQuery)
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}

	switch len(customers) {
	case 0:
		return &CustomerResolution{Kind: CustomerNotFound}, nil
	case 1:
		c := customers[0]
		return &CustomerResolution{Kind: CustomerFound, Customer: &c}, nil
	}

	names := make([]string, len(customers))
	for i, c := range customers {
		names[i] = c.Name
	}
	return &CustomerResolution{Kind: CustomerAmbiguous, Matches: names}, nil
}

// SplitNames splits a comma separated list, trimming each entry. Empty entries are kept
// so positions stay aligned with the caller's input.
func SplitNames(csv string) []string {
	parts := strings.Split(csv, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ResolveProducts resolves each name of namesCSV in order. The result has one entry
// per input name, at the same index.
func (r *Resolver) ResolveProducts(ctx context.Context, finder ProductFinder, namesCSV, shopkeeperID string) ([]ProductMatch, error) {
	names := SplitNames(namesCSV)
	if r.policy == models.MatchSubstring {
		return r.resolveSubstring(ctx, finder, names, shopkeeperID)
	}
	return r.resolveFuzzy(ctx, finder, names, shopkeeperID)
}

func (r *Resolver) resolveSubstring(ctx context.Context, finder ProductFinder, names []string, shopkeeperID string) ([]ProductMatch, error) {
	matches := make([]ProductMatch, len(names))
	for i, name := range names {
		matches[i] = ProductMatch{Index: i, Query: name}
		if name == "" {
			continue
		}

		products, err := finder.FindProducts(ctx, shopkeeperID, name)
		if err != nil {
			return nil, fmt.Errorf("find products %q: %w", name, err)
		}
		if len(products) == 0 {
			continue
		}
		if len(products) > 1 {
			// First row wins; no ambiguity signal for products.
			r.log.Debug("several products match, taking the first",
				zap.String("query", name),
				zap.Int("matches", len(products)),
				zap.String("taken", products[0].ProductName),
			)
		}
		p := products[0]
		matches[i].Product = &p
		matches[i].Score = 100
	}
	return matches, nil
}

func (r *Resolver) resolveFuzzy(ctx context.Context, finder ProductFinder, names []string, shopkeeperID string) ([]ProductMatch, error) {
	products, err := finder.ListProducts(ctx, shopkeeperID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	matches := make([]ProductMatch, len(names))
	for i, name := range names {
		matches[i] = ProductMatch{Index: i, Query: name}
		if name == "" {
			continue
		}

		bestIdx, bestScore := -1, -1.0
		for j := range products {
			if score := r.scorer(name, products[j].ProductName); score > bestScore {
				bestIdx, bestScore = j, score
			}
		}
		if bestIdx < 0 {
			continue
		}

		matches[i].Score = bestScore
		if bestScore >= r.threshold {
			p := products[bestIdx]
			matches[i].Product = &p
		} else {
			r.log.Debug("best product match below threshold",
				zap.String("query", name),
				zap.String("candidate", products[bestIdx].ProductName),
				zap.Float64("score", bestScore),
				zap.Float64("threshold", r.threshold),
			)
		}
	}
	return matches, nil
}

// FirstMissing returns the first unresolved product, if any
func FirstMissing(matches []ProductMatch) (ProductMatch, bool) {
	for _, m := range matches {
		if !m.Found() {
			return m, true
		}
	}
	return ProductMatch{}, false
}
