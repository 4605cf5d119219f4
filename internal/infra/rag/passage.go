package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

// Passage is the searchable text of one invoice.
type Passage struct {
	TenantID      tenant.ID
	InvoiceID     int64
	InvoiceNumber string
	Vendor        string
	InvoiceDate   string
	TotalAmount   float64
	Currency      string
	Content       string
}

// DocID returns the index identifier of the passage.
func (p Passage) DocID() string {
	return fmt.Sprintf("invoice:%d", p.InvoiceID)
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresPassageSource reads invoice passages from the record database.
type PostgresPassageSource struct {
	db rowQuerier
}

// NewPostgresPassageSource constructs the source. db is usually a *pgxpool.Pool.
func NewPostgresPassageSource(db rowQuerier) *PostgresPassageSource {
	return &PostgresPassageSource{db: db}
}

const passagesSQL = `
	SELECT inv.id, inv.user_id,
	       coalesce(inv.invoice_number, ''), coalesce(inv.vendor, ''),
	       coalesce(to_char(inv.invoice_date, 'YYYY-MM-DD'), ''),
	       coalesce(inv.total_amount, 0)::float8, coalesce(inv.currency, ''),
	       coalesce(inv.notes, ''),
	       coalesce(string_agg(it.description, '; ' ORDER BY it.id), '')
	FROM invoices inv
	LEFT JOIN items it ON it.invoice_id = inv.id
	GROUP BY inv.id
	ORDER BY inv.id`

// Passages returns one passage per invoice across all tenants.
func (s *PostgresPassageSource) Passages(ctx context.Context) ([]Passage, error) {
	rows, err := s.db.Query(ctx, passagesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Passage
	for rows.Next() {
		var (
			p      Passage
			userID int64
			notes  string
			items  string
		)
		if err := rows.Scan(&p.InvoiceID, &userID, &p.InvoiceNumber, &p.Vendor, &p.InvoiceDate,
			&p.TotalAmount, &p.Currency, &notes, &items); err != nil {
			return nil, err
		}
		p.TenantID = tenant.ID(userID)
		p.Content = composeContent(p, notes, items)
		out = append(out, p)
	}
	return out, rows.Err()
}

func composeContent(p Passage, notes, items string) string {
	parts := []string{
		"Invoice " + p.InvoiceNumber,
		"from " + p.Vendor,
	}
	if p.InvoiceDate != "" {
		parts = append(parts, "dated "+p.InvoiceDate)
	}
	if items != "" {
		parts = append(parts, "items: "+items)
	}
	if notes != "" {
		parts = append(parts, "notes: "+notes)
	}
	return strings.Join(parts, " ")
}
