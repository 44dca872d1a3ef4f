package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// querier is the subset of *pgxpool.Pool the store uses
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads records and reads/writes invoices in one schema
type Store struct {
	q      querier
	schema string
	tables models.TableNames
}

// NewStore creates a store over q using schema and tables
func NewStore(q querier, schema string, tables models.TableNames) *Store {
	if schema == "" {
		schema = "public"
	}
	return &Store{q: q, schema: schema, tables: tables}
}

// table returns the quoted, schema-qualified name of table
func (s *Store) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// escapeLike escapes LIKE wildcards so s matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// containsPattern is an ILIKE pattern matching s anywhere
func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
