package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a customer, branch or product does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique attribute (SKU, branch code) is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInactive is returned when a referenced entity exists but is disabled.
	ErrInactive = errors.New("entity is inactive")

	// ErrInsufficientStock is returned when a product cannot cover a decrement.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrValidation is returned when input is malformed.
	ErrValidation = errors.New("validation failed")
)

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customer *Customer) error
	SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error
}

type BranchRepository interface {
	CreateBranch(ctx context.Context, branch *Branch) error
	GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error)
	ListBranches(ctx context.Context) ([]*Branch, error)
	UpdateBranch(ctx context.Context, branch *Branch) error
	SetBranchActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ProductRepository persists products. The stock ledger only moves through
// IncrementStock and DecrementStock, which check and adjust it as one atomic
// step; DecrementStock returns ErrInsufficientStock instead of letting the
// quantity go negative. UpdateProduct leaves the stored quantity untouched.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	SetProductActive(ctx context.Context, id uuid.UUID, active bool) error
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// Storage groups every catalog repository.
type Storage interface {
	CustomerRepository
	BranchRepository
	ProductRepository
}
