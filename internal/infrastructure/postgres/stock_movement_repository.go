package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, company_id, product_id, product_name, type, quantity, previous_stock, new_stock,
	reason, reference, user_id, user_name, date, adjustment_date_time, created_at`

// StockMovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if !entity.IsValidMovementType(m.Type) {
		return domain.ErrInvalidInput
	}
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.ProductID, m.ProductName, m.Type, m.Quantity, m.PreviousStock, m.NewStock,
		m.Reason, m.Reference, m.UserID, m.UserName, m.Date, m.AdjustmentDateTime, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista los movimientos del producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	where := []string{"product_id = $1"}
	args := []any{productID}
	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC`
	return r.list(ctx, query, args...)
}

// ListByCompany lista todos los movimientos de la empresa.
func (r *StockMovementRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE company_id = $1 ORDER BY date DESC, created_at DESC`, companyID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.ProductID, &m.ProductName, &m.Type, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&m.Reason, &m.Reference, &m.UserID, &m.UserName, &m.Date, &m.AdjustmentDateTime, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
