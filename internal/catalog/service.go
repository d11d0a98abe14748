package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCustomerCommand carries the caller-settable customer fields.
type CreateCustomerCommand struct {
	Name     string `validate:"required,min=3,max=200"`
	Email    string `validate:"required,email,max=100"`
	Phone    string `validate:"omitempty,e164"`
	Document string `validate:"required,min=11,max=20"`
	Address  string `validate:"max=500"`
	City     string `validate:"max=100"`
	State    string `validate:"max=50"`
	ZipCode  string `validate:"max=10"`
}

// CreateBranchCommand carries the caller-settable branch fields.
type CreateBranchCommand struct {
	Name    string `validate:"required,min=3,max=200"`
	Code    string `validate:"required,min=2,max=50"`
	Address string `validate:"max=500"`
	City    string `validate:"max=100"`
	State   string `validate:"max=50"`
	ZipCode string `validate:"max=10"`
	Phone   string `validate:"omitempty,e164"`
}

// CreateProductCommand carries the caller-settable product fields.
type CreateProductCommand struct {
	Name          string          `validate:"required,min=3,max=200"`
	SKU           string          `validate:"required,min=3,max=50"`
	Description   string          `validate:"max=1000"`
	Category      string          `validate:"max=100"`
	Price         decimal.Decimal `validate:"-"`
	StockQuantity int             `validate:"gte=0"`
}

// Service manages customers, branches and products.
type Service struct {
	storage  Storage
	logger   *zap.Logger
	validate *validator.Validate
}

// NewService creates a new catalog Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:  storage,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) (*Customer, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now().UTC()
	customer := &Customer{
		ID:        uuid.New(),
		Name:      cmd.Name,
		Email:     cmd.Email,
		Phone:     cmd.Phone,
		Document:  cmd.Document,
		Address:   cmd.Address,
		City:      cmd.City,
		State:     cmd.State,
		ZipCode:   cmd.ZipCode,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateCustomer(ctx, customer); err != nil {
		s.logger.Error("failed to save customer", zap.String("customer_id", customer.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.storage.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.storage.ListCustomers(ctx)
}

// SetCustomerActive activates or deactivates a customer.
func (s *Service) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) (*Customer, error) {
	if err := s.storage.SetCustomerActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	customer, err := s.storage.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer status changed", zap.String("customer_id", id.String()), zap.Bool("active", active))
	return customer, nil
}

func (s *Service) CreateBranch(ctx context.Context, cmd CreateBranchCommand) (*Branch, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now().UTC()
	branch := &Branch{
		ID:        uuid.New(),
		Name:      cmd.Name,
		Code:      cmd.Code,
		Address:   cmd.Address,
		City:      cmd.City,
		State:     cmd.State,
		ZipCode:   cmd.ZipCode,
		Phone:     cmd.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateBranch(ctx, branch); err != nil {
		s.logger.Error("failed to save branch", zap.String("branch_code", branch.Code), zap.Error(err))
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	s.logger.Info("branch created", zap.String("branch_id", branch.ID.String()), zap.String("branch_code", branch.Code))
	return branch, nil
}

func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return s.storage.GetBranch(ctx, id)
}

func (s *Service) ListBranches(ctx context.Context) ([]*Branch, error) {
	return s.storage.ListBranches(ctx)
}

// SetBranchActive activates or deactivates a branch.
func (s *Service) SetBranchActive(ctx context.Context, id uuid.UUID, active bool) (*Branch, error) {
	if err := s.storage.SetBranchActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	branch, err := s.storage.GetBranch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("branch status changed", zap.String("branch_id", id.String()), zap.Bool("active", active))
	return branch, nil
}

func (s *Service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*Product, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if cmd.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be greater than or equal to 0", ErrValidation)
	}

	now := time.Now().UTC()
	product := &Product{
		ID:            uuid.New(),
		Name:          cmd.Name,
		SKU:           cmd.SKU,
		Description:   cmd.Description,
		Category:      cmd.Category,
		Price:         cmd.Price,
		StockQuantity: cmd.StockQuantity,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.storage.CreateProduct(ctx, product); err != nil {
		s.logger.Error("failed to save product", zap.String("sku", product.SKU), zap.Error(err))
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.Int("stock_quantity", product.StockQuantity))
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.storage.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.storage.ListProducts(ctx)
}

// SetProductActive activates or deactivates a product. Only the flag is
// written, so concurrent sales keep their stock adjustments.
func (s *Service) SetProductActive(ctx context.Context, id uuid.UUID, active bool) (*Product, error) {
	if err := s.storage.SetProductActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product status changed", zap.String("product_id", id.String()), zap.Bool("active", active))
	return product, nil
}

// Restock adds quantity units to a product's ledger.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: restock quantity must be greater than zero", ErrInvalidQuantity)
	}
	if err := s.storage.IncrementStock(ctx, id, quantity); err != nil {
		return nil, err
	}

	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product restocked",
		zap.String("product_id", id.String()),
		zap.Int("quantity", quantity),
		zap.Int("stock_quantity", product.StockQuantity))
	return product, nil
}
