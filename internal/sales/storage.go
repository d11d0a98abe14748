package sales

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales_api/internal/catalog"
)

// SaleRepository persists Sale aggregates together with their items.
type SaleRepository interface {
	SequenceReserver

	// CreateSale returns ErrDuplicateSaleNumber when the number is taken.
	CreateSale(ctx context.Context, sale *Sale) error
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	// ListSales returns every sale, newest first.
	ListSales(ctx context.Context) ([]*Sale, error)
	UpdateSale(ctx context.Context, sale *Sale) error
	// CountSalesBetween counts sales whose sale date is in [from, to).
	CountSalesBetween(ctx context.Context, from, to time.Time) (int, error)
}

// Repositories is every collaborator an orchestration needs.
type Repositories interface {
	catalog.Storage
	SaleRepository
}

// Storage runs orchestrations. Everything done through the Repositories
// handed to fn inside InTx commits together or not at all, and concurrent
// transactions touching the same rows are serialized.
type Storage interface {
	Repositories
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// ErrEmptyID is returned when trying to store an entity with an empty ID.
var ErrEmptyID = errors.New("empty ID")

// LocalStorage provides an in-memory implementation of Storage. A single
// mutex serializes transactions; each transaction works on a copy of the data
// that replaces the live copy only when the transaction succeeds.
type LocalStorage struct {
	mu   sync.Mutex
	data *localData
}

// NewLocalStorage instantiates a new, empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		data: &localData{
			customers: map[uuid.UUID]catalog.Customer{},
			branches:  map[uuid.UUID]catalog.Branch{},
			products:  map[uuid.UUID]catalog.Product{},
			sales:     map[uuid.UUID]*Sale{},
			sequences: map[string]int{},
		},
	}
}

func (l *LocalStorage) InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := l.data.clone()
	if err := fn(ctx, staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.data = staged
	return nil
}

// locked runs fn against the live data outside of any transaction.
func (l *LocalStorage) locked(fn func(d *localData) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.data)
}

func (l *LocalStorage) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	return l.locked(func(d *localData) error { return d.CreateCustomer(ctx, c) })
}

func (l *LocalStorage) GetCustomer(ctx context.Context, id uuid.UUID) (c *catalog.Customer, err error) {
	err = l.locked(func(d *localData) error { c, err = d.GetCustomer(ctx, id); return err })
	return c, err
}

func (l *LocalStorage) ListCustomers(ctx context.Context) (cs []*catalog.Customer, err error) {
	err = l.locked(func(d *localData) error { cs, err = d.ListCustomers(ctx); return err })
	return cs, err
}

func (l *LocalStorage) UpdateCustomer(ctx context.Context, c *catalog.Customer) error {
	return l.locked(func(d *localData) error { return d.UpdateCustomer(ctx, c) })
}

func (l *LocalStorage) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error {
	return l.locked(func(d *localData) error { return d.SetCustomerActive(ctx, id, active) })
}

func (l *LocalStorage) CreateBranch(ctx context.Context, b *catalog.Branch) error {
	return l.locked(func(d *localData) error { return d.CreateBranch(ctx, b) })
}

func (l *LocalStorage) GetBranch(ctx context.Context, id uuid.UUID) (b *catalog.Branch, err error) {
	err = l.locked(func(d *localData) error { b, err = d.GetBranch(ctx, id); return err })
	return b, err
}

func (l *LocalStorage) ListBranches(ctx context.Context) (bs []*catalog.Branch, err error) {
	err = l.locked(func(d *localData) error { bs, err = d.ListBranches(ctx); return err })
	return bs, err
}

func (l *LocalStorage) UpdateBranch(ctx context.Context, b *catalog.Branch) error {
	return l.locked(func(d *localData) error { return d.UpdateBranch(ctx, b) })
}

func (l *LocalStorage) SetBranchActive(ctx context.Context, id uuid.UUID, active bool) error {
	return l.locked(func(d *localData) error { return d.SetBranchActive(ctx, id, active) })
}

func (l *LocalStorage) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return l.locked(func(d *localData) error { return d.CreateProduct(ctx, p) })
}

func (l *LocalStorage) GetProduct(ctx context.Context, id uuid.UUID) (p *catalog.Product, err error) {
	err = l.locked(func(d *localData) error { p, err = d.GetProduct(ctx, id); return err })
	return p, err
}

func (l *LocalStorage) ListProducts(ctx context.Context) (ps []*catalog.Product, err error) {
	err = l.locked(func(d *localData) error { ps, err = d.ListProducts(ctx); return err })
	return ps, err
}

func (l *LocalStorage) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return l.locked(func(d *localData) error { return d.UpdateProduct(ctx, p) })
}

func (l *LocalStorage) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	return l.locked(func(d *localData) error { return d.SetProductActive(ctx, id, active) })
}

func (l *LocalStorage) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return l.locked(func(d *localData) error { return d.IncrementStock(ctx, id, quantity) })
}

func (l *LocalStorage) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return l.locked(func(d *localData) error { return d.DecrementStock(ctx, id, quantity) })
}

func (l *LocalStorage) CreateSale(ctx context.Context, s *Sale) error {
	return l.locked(func(d *localData) error { return d.CreateSale(ctx, s) })
}

func (l *LocalStorage) GetSale(ctx context.Context, id uuid.UUID) (s *Sale, err error) {
	err = l.locked(func(d *localData) error { s, err = d.GetSale(ctx, id); return err })
	return s, err
}

func (l *LocalStorage) ListSales(ctx context.Context) (ss []*Sale, err error) {
	err = l.locked(func(d *localData) error { ss, err = d.ListSales(ctx); return err })
	return ss, err
}

func (l *LocalStorage) UpdateSale(ctx context.Context, s *Sale) error {
	return l.locked(func(d *localData) error { return d.UpdateSale(ctx, s) })
}

func (l *LocalStorage) CountSalesBetween(ctx context.Context, from, to time.Time) (n int, err error) {
	err = l.locked(func(d *localData) error { n, err = d.CountSalesBetween(ctx, from, to); return err })
	return n, err
}

func (l *LocalStorage) NextSaleSequence(ctx context.Context, day time.Time) (n int, err error) {
	err = l.locked(func(d *localData) error { n, err = d.NextSaleSequence(ctx, day); return err })
	return n, err
}

// localData holds values, never shared pointers, so a shallow copy of the
// maps is enough to stage a transaction.
type localData struct {
	customers map[uuid.UUID]catalog.Customer
	branches  map[uuid.UUID]catalog.Branch
	products  map[uuid.UUID]catalog.Product
	sales     map[uuid.UUID]*Sale
	sequences map[string]int
}

func (d *localData) clone() *localData {
	return &localData{
		customers: maps.Clone(d.customers),
		branches:  maps.Clone(d.branches),
		products:  maps.Clone(d.products),
		sales:     maps.Clone(d.sales),
		sequences: maps.Clone(d.sequences),
	}
}

func (d *localData) CreateCustomer(_ context.Context, c *catalog.Customer) error {
	if c.ID == uuid.Nil {
		return ErrEmptyID
	}
	if _, ok := d.customers[c.ID]; ok {
		return fmt.Errorf("customer %s: %w", c.ID, catalog.ErrAlreadyExists)
	}
	d.customers[c.ID] = *c
	return nil
}

func (d *localData) GetCustomer(_ context.Context, id uuid.UUID) (*catalog.Customer, error) {
	c, ok := d.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (d *localData) ListCustomers(_ context.Context) ([]*catalog.Customer, error) {
	out := make([]*catalog.Customer, 0, len(d.customers))
	for _, c := range d.customers {
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *catalog.Customer) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (d *localData) UpdateCustomer(_ context.Context, c *catalog.Customer) error {
	if _, ok := d.customers[c.ID]; !ok {
		return ErrNotFound
	}
	d.customers[c.ID] = *c
	return nil
}

func (d *localData) SetCustomerActive(_ context.Context, id uuid.UUID, active bool) error {
	c, ok := d.customers[id]
	if !ok {
		return ErrNotFound
	}
	c.SetActive(active)
	d.customers[id] = c
	return nil
}

func (d *localData) CreateBranch(_ context.Context, b *catalog.Branch) error {
	if b.ID == uuid.Nil {
		return ErrEmptyID
	}
	for _, existing := range d.branches {
		if existing.ID == b.ID || existing.Code == b.Code {
			return fmt.Errorf("branch %s: %w", b.Code, catalog.ErrAlreadyExists)
		}
	}
	d.branches[b.ID] = *b
	return nil
}

func (d *localData) GetBranch(_ context.Context, id uuid.UUID) (*catalog.Branch, error) {
	b, ok := d.branches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (d *localData) ListBranches(_ context.Context) ([]*catalog.Branch, error) {
	out := make([]*catalog.Branch, 0, len(d.branches))
	for _, b := range d.branches {
		out = append(out, &b)
	}
	slices.SortFunc(out, func(a, b *catalog.Branch) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

func (d *localData) UpdateBranch(_ context.Context, b *catalog.Branch) error {
	if _, ok := d.branches[b.ID]; !ok {
		return ErrNotFound
	}
	d.branches[b.ID] = *b
	return nil
}

func (d *localData) SetBranchActive(_ context.Context, id uuid.UUID, active bool) error {
	b, ok := d.branches[id]
	if !ok {
		return ErrNotFound
	}
	b.SetActive(active)
	d.branches[id] = b
	return nil
}

func (d *localData) CreateProduct(_ context.Context, p *catalog.Product) error {
	if p.ID == uuid.Nil {
		return ErrEmptyID
	}
	for _, existing := range d.products {
		if existing.ID == p.ID || existing.SKU == p.SKU {
			return fmt.Errorf("product %s: %w", p.SKU, catalog.ErrAlreadyExists)
		}
	}
	d.products[p.ID] = *p
	return nil
}

func (d *localData) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := d.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (d *localData) ListProducts(_ context.Context) ([]*catalog.Product, error) {
	out := make([]*catalog.Product, 0, len(d.products))
	for _, p := range d.products {
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *catalog.Product) int { return strings.Compare(a.SKU, b.SKU) })
	return out, nil
}

// UpdateProduct keeps the stored stock quantity; only the ledger methods move it.
func (d *localData) UpdateProduct(_ context.Context, p *catalog.Product) error {
	existing, ok := d.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *p
	updated.StockQuantity = existing.StockQuantity
	d.products[p.ID] = updated
	return nil
}

func (d *localData) SetProductActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := d.products[id]
	if !ok {
		return ErrNotFound
	}
	p.SetActive(active)
	d.products[id] = p
	return nil
}

func (d *localData) IncrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := d.products[id]
	if !ok {
		return ErrNotFound
	}
	if err := p.AddStock(quantity); err != nil {
		return err
	}
	d.products[id] = p
	return nil
}

func (d *localData) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := d.products[id]
	if !ok {
		return ErrNotFound
	}
	if err := p.RemoveStock(quantity); err != nil {
		return err
	}
	d.products[id] = p
	return nil
}

func (d *localData) CreateSale(_ context.Context, s *Sale) error {
	if s.ID == uuid.Nil {
		return ErrEmptyID
	}
	for _, existing := range d.sales {
		if existing.SaleNumber == s.SaleNumber {
			return fmt.Errorf("%w: %s", ErrDuplicateSaleNumber, s.SaleNumber)
		}
	}
	d.sales[s.ID] = s.Clone()
	return nil
}

func (d *localData) GetSale(_ context.Context, id uuid.UUID) (*Sale, error) {
	s, ok := d.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (d *localData) ListSales(_ context.Context) ([]*Sale, error) {
	out := make([]*Sale, 0, len(d.sales))
	for _, s := range d.sales {
		out = append(out, s.Clone())
	}
	slices.SortFunc(out, func(a, b *Sale) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.SaleNumber, a.SaleNumber)
	})
	return out, nil
}

func (d *localData) UpdateSale(_ context.Context, s *Sale) error {
	if _, ok := d.sales[s.ID]; !ok {
		return ErrNotFound
	}
	d.sales[s.ID] = s.Clone()
	return nil
}

func (d *localData) CountSalesBetween(_ context.Context, from, to time.Time) (int, error) {
	n := 0
	for _, s := range d.sales {
		if !s.SaleDate.Before(from) && s.SaleDate.Before(to) {
			n++
		}
	}
	return n, nil
}

// NextSaleSequence seeds a day's counter from the sales already recorded for
// that day and increments it on every call.
func (d *localData) NextSaleSequence(ctx context.Context, day time.Time) (int, error) {
	day = StartOfDay(day)
	key := day.Format("20060102")
	last, ok := d.sequences[key]
	if !ok {
		n, err := d.CountSalesBetween(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return 0, err
		}
		last = n
	}
	last++
	d.sequences[key] = last
	return last, nil
}
