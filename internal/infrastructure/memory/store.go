// Package memory implementa los puertos de repositorio en memoria.
// Se usa en tests y en modo demo (sin DATABASE_URL).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/repository"
)

// Store guarda todas las entidades. Las transacciones se serializan con txMu y,
// si la función falla, el estado se restaura a la foto tomada al inicio.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	products     map[string]*entity.Product
	movements    []*entity.StockMovement
	invoices     map[string]*entity.Invoice
	invoiceLines []*entity.InvoiceLine
	users        map[string]*entity.User
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		invoices: make(map[string]*entity.Invoice),
		users:    make(map[string]*entity.User),
	}
}

// Products repositorio de productos.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Movements repositorio del libro de movimientos.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{s: s} }

// Invoices repositorio de facturas.
func (s *Store) Invoices() repository.InvoiceRepository { return &invoiceRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Run ejecuta fn como una transacción: todo o nada.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	if err := fn(s.Movements(), s.Products(), s.Invoices()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products     map[string]*entity.Product
	movements    []*entity.StockMovement
	invoices     map[string]*entity.Invoice
	invoiceLines []*entity.InvoiceLine
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		products:     make(map[string]*entity.Product, len(s.products)),
		movements:    append([]*entity.StockMovement(nil), s.movements...),
		invoices:     make(map[string]*entity.Invoice, len(s.invoices)),
		invoiceLines: append([]*entity.InvoiceLine(nil), s.invoiceLines...),
	}
	for k, p := range s.products {
		cp := *p
		snap.products[k] = &cp
	}
	for k, inv := range s.invoices {
		snap.invoices[k] = inv
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.movements = snap.movements
	s.invoices = snap.invoices
	s.invoiceLines = snap.invoiceLines
}

// --- productos ---

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.products {
		if other.CompanyID == p.CompanyID && other.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetForUpdate equivale a GetByID: la exclusión la da Run.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.CompanyID == companyID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) FindByCompanyAndName(_ context.Context, companyID, name string) (*entity.Product, error) {
	for _, p := range r.sorted(companyID) {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	all := r.sorted(companyID)
	if offset >= len(all) {
		return []*entity.Product{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *productRepo) CountByCompany(_ context.Context, companyID string) (int, error) {
	return len(r.sorted(companyID)), nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Unit = p.Unit
	cur.Price = p.Price
	cur.TaxRate = p.TaxRate
	cur.MinStock = p.MinStock
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *productRepo) UpdateStock(_ context.Context, productID string, stock decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Stock = stock
	cur.UpdatedAt = time.Now()
	return nil
}

// sorted devuelve copias de los productos de la empresa por fecha de creación (y nombre).
func (r *productRepo) sorted(companyID string) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if p.CompanyID == companyID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// --- movimientos ---

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if !entity.IsValidMovementType(m.Type) {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool {
		if m.ProductID != productID {
			return false
		}
		if from != nil && m.Date.Before(*from) {
			return false
		}
		if to != nil && m.Date.After(*to) {
			return false
		}
		return true
	}), nil
}

func (r *movementRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.CompanyID == companyID }), nil
}

// list filtra y ordena más recientes primero (Date, luego CreatedAt), como el repositorio SQL.
func (r *movementRepo) list(keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	r.s.mu.RLock()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// --- facturas ---

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.invoices {
		if other.CompanyID == inv.CompanyID && other.Number == inv.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r *invoiceRepo) CreateLine(_ context.Context, l *entity.InvoiceLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[l.InvoiceID]; !ok {
		return domain.ErrNotFound
	}
	cp := *l
	r.s.invoiceLines = append(r.s.invoiceLines, &cp)
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *invoiceRepo) GetLinesByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	return r.lines(func(l *entity.InvoiceLine) bool { return l.InvoiceID == invoiceID }), nil
}

func (r *invoiceRepo) ListLinesByProduct(_ context.Context, productID string) ([]*entity.InvoiceLine, error) {
	return r.lines(func(l *entity.InvoiceLine) bool { return l.ProductID == productID }), nil
}

func (r *invoiceRepo) ListLinesByCompany(_ context.Context, companyID string) ([]*entity.InvoiceLine, error) {
	r.s.mu.RLock()
	ids := make(map[string]bool)
	for id, inv := range r.s.invoices {
		if inv.CompanyID == companyID {
			ids[id] = true
		}
	}
	r.s.mu.RUnlock()
	return r.lines(func(l *entity.InvoiceLine) bool { return ids[l.InvoiceID] }), nil
}

func (r *invoiceRepo) lines(keep func(*entity.InvoiceLine) bool) []*entity.InvoiceLine {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.InvoiceLine, 0)
	for _, l := range r.s.invoiceLines {
		if keep(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out
}

// --- usuarios ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil || u == nil || u.CompanyID != companyID {
		return nil, err
	}
	return u, nil
}
