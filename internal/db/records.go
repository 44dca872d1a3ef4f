package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// FindCustomers returns customers of businessID whose name contains nameQuery
func (s *Store) FindCustomers(ctx context.Context, businessID, nameQuery string) ([]models.Customer, error) {
	query := fmt.Sprintf(`
		SELECT id::text, name, phone_number, business_entity_id::text
		FROM %s
		WHERE business_entity_id::text = $1 AND name ILIKE $2
		ORDER BY name, id
	`, s.table(s.tables.Customers))

	rows, err := s.q.Query(ctx, query, businessID, containsPattern(nameQuery))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.BusinessEntityID); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

const productColumns = `id::text, product_name, price_per_unit::text, tax_percentages, shopkeeper_id::text`

// FindProducts returns products of shopkeeperID whose name contains nameQuery
func (s *Store) FindProducts(ctx context.Context, shopkeeperID, nameQuery string) ([]models.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE shopkeeper_id::text = $1 AND product_name ILIKE $2
		ORDER BY id
	`, productColumns, s.table(s.tables.Products))

	rows, err := s.q.Query(ctx, query, shopkeeperID, containsPattern(nameQuery))
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// ListProducts returns every product of shopkeeperID
func (s *Store) ListProducts(ctx context.Context, shopkeeperID string) ([]models.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE shopkeeper_id::text = $1
		ORDER BY id
	`, productColumns, s.table(s.tables.Products))

	rows, err := s.q.Query(ctx, query, shopkeeperID)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			p     models.Product
			price *string
			taxes []byte
		)
		if err := rows.Scan(&p.ID, &p.ProductName, &price, &taxes, &p.ShopkeeperID); err != nil {
			return nil, err
		}
		if err := decodeProduct(&p, price, taxes); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// decodeProduct fills the price and tax fields from their column values. Missing
// values stay unset; the calculator rejects such products.
func decodeProduct(p *models.Product, price *string, taxes []byte) error {
	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("product %s: invalid price %q: %w", p.ID, *price, err)
		}
		p.PricePerUnit = decimal.NewNullDecimal(d)
	}
	if len(taxes) > 0 && string(taxes) != "null" {
		if err := json.Unmarshal(taxes, &p.TaxPercentages); err != nil {
			return fmt.Errorf("product %s: invalid tax_percentages: %w", p.ID, err)
		}
	}
	return nil
}

// GetBusinessEntity returns the biller with id, or models.ErrNotFound
func (s *Store) GetBusinessEntity(ctx context.Context, id string) (*models.BusinessEntity, error) {
	query := fmt.Sprintf(`
		SELECT id::text, business_name, COALESCE(owner_name, ''), COALESCE(email, ''),
		       COALESCE(phone_number, ''), COALESCE(business_address, '')
		FROM %s
		WHERE id::text = $1
	`, s.table(s.tables.BusinessEntities))

	var b models.BusinessEntity
	err := s.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.BusinessName, &b.OwnerName, &b.Email, &b.PhoneNumber, &b.BusinessAddress,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
