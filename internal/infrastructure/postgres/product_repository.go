package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, description, unit, price, tax_rate, initial_stock, stock, min_stock, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.SKU, p.Name, p.Description, p.Unit,
		p.Price, p.TaxRate, p.InitialStock, p.Stock, p.MinStock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetByCompanyAndSKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE company_id = $1 AND sku = $2`, companyID, sku)
}

// FindByCompanyAndName devuelve el producto más antiguo con ese nombre exacto.
func (r *ProductRepo) FindByCompanyAndName(ctx context.Context, companyID, name string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products
		WHERE company_id = $1 AND name = $2
		ORDER BY created_at, id LIMIT 1`, companyID, name)
}

// ListByCompany lista productos por empresa con paginación.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products
		WHERE company_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountByCompany cuenta los productos de la empresa.
func (r *ProductRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Update actualiza los datos de catálogo. initial_stock y stock no se tocan.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, unit = $4, price = $5, tax_rate = $6, min_stock = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, p.Unit, p.Price, p.TaxRate, p.MinStock, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock escribe el stock materializado.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`, productID, stock, time.Now())
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Unit,
		&p.Price, &p.TaxRate, &p.InitialStock, &p.Stock, &p.MinStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
