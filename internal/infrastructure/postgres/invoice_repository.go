package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const lineColumns = `l.id, l.invoice_id, l.product_id, l.description, l.quantity, l.unit_price, l.tax_rate, l.subtotal`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, company_id, number, client_name, date, net_total, tax_total, grand_total, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CompanyID, invoice.Number, invoice.ClientName, invoice.Date,
		invoice.NetTotal, invoice.TaxTotal, invoice.GrandTotal, invoice.CreatedBy, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro de facture %s: %w", invoice.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea. product_id vacío se guarda como NULL.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, product_id, description, quantity, unit_price, tax_rate, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, nullIfEmpty(line.ProductID), line.Description,
		line.Quantity, line.UnitPrice, line.TaxRate, line.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `
		SELECT id, company_id, number, client_name, date, net_total, tax_total, grand_total, created_by, created_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.CompanyID, &inv.Number, &inv.ClientName, &inv.Date,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.CreatedBy, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetLinesByInvoiceID lista las líneas de una factura.
func (r *InvoiceRepo) GetLinesByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	return r.lines(ctx, `SELECT `+lineColumns+` FROM invoice_lines l WHERE l.invoice_id = $1 ORDER BY l.id`, invoiceID)
}

// ListLinesByProduct lista todas las líneas vinculadas al producto.
func (r *InvoiceRepo) ListLinesByProduct(ctx context.Context, productID string) ([]*entity.InvoiceLine, error) {
	return r.lines(ctx, `SELECT `+lineColumns+` FROM invoice_lines l WHERE l.product_id = $1`, productID)
}

// ListLinesByCompany lista las líneas de todas las facturas de la empresa.
func (r *InvoiceRepo) ListLinesByCompany(ctx context.Context, companyID string) ([]*entity.InvoiceLine, error) {
	return r.lines(ctx, `SELECT `+lineColumns+` FROM invoice_lines l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE i.company_id = $1`, companyID)
}

func (r *InvoiceRepo) lines(ctx context.Context, query string, args ...any) ([]*entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		var productID *string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &productID, &l.Description, &l.Quantity, &l.UnitPrice, &l.TaxRate, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		l.ProductID = stringOrEmpty(productID)
		list = append(list, &l)
	}
	return list, rows.Err()
}
