package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sales_api/internal/catalog"
)

// CreateSaleCommand asks for a new sale. Unit prices always come from the
// product records.
type CreateSaleCommand struct {
	CustomerID uuid.UUID               `validate:"required"`
	BranchID   uuid.UUID               `validate:"required"`
	Items      []CreateSaleItemCommand `validate:"required,min=1,dive"`
}

type CreateSaleItemCommand struct {
	ProductID uuid.UUID `validate:"required"`
	Quantity  int
}

// Service provides the sale creation and cancellation workflows on a Storage backend.
type Service struct {
	storage   Storage
	publisher Publisher
	logger    *zap.Logger
	validate  *validator.Validate
}

// NewService creates a new Service. A nil publisher disables event delivery.
func NewService(storage Storage, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateSale assembles, prices and persists a sale, taking the sold units out
// of stock. Either the whole sale is recorded with every stock adjustment, or
// nothing is.
func (s *Service) CreateSale(ctx context.Context, cmd CreateSaleCommand) (*Sale, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := checkItems(cmd.Items); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.storage.InTx(ctx, func(ctx context.Context, repos Repositories) error {
		customer, err := activeCustomer(ctx, repos, cmd.CustomerID)
		if err != nil {
			return err
		}
		branch, err := activeBranch(ctx, repos, cmd.BranchID)
		if err != nil {
			return err
		}

		number, err := NextSaleNumber(ctx, repos, clock())
		if err != nil {
			return err
		}

		sale = NewSale(number,
			CustomerSnapshot{ID: customer.ID, Name: customer.Name, Email: customer.Email},
			BranchSnapshot{ID: branch.ID, Name: branch.Name, Code: branch.Code},
		)

		for _, req := range cmd.Items {
			if err := s.addItem(ctx, repos, sale, req); err != nil {
				return err
			}
		}

		if err := repos.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("failed to create sale", err,
			zap.String("customer_id", cmd.CustomerID.String()),
			zap.String("branch_id", cmd.BranchID.String()),
			zap.Int("items", len(cmd.Items)))
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
		zap.Int("items", sale.ItemCount()))
	s.publish(ctx, NewSaleCreated(sale))
	return sale, nil
}

func (s *Service) addItem(ctx context.Context, repos Repositories, sale *Sale, req CreateSaleItemCommand) error {
	product, err := repos.GetProduct(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("product %s: %w", req.ProductID, err)
	}
	if !product.IsActive {
		return fmt.Errorf("%w: product %s", ErrInactive, product.Name)
	}
	if !product.HasSufficientStock(req.Quantity) {
		return fmt.Errorf("%w: product %s has %d available, %d requested",
			ErrInsufficientStock, product.Name, product.StockQuantity, req.Quantity)
	}

	item, err := NewSaleItem(sale.ID, ProductRef{
		ID:        product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		UnitPrice: product.Price,
	}, req.Quantity)
	if err != nil {
		return err
	}
	if err := sale.AddItem(item); err != nil {
		return err
	}

	if err := repos.DecrementStock(ctx, product.ID, req.Quantity); err != nil {
		return fmt.Errorf("product %s: %w", product.Name, err)
	}
	return nil
}

// CancelSale cancels a sale and returns its units to stock in one transaction.
// Items whose product has since been deleted are skipped.
func (s *Service) CancelSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: sale id is required", ErrValidation)
	}

	var (
		sale    *Sale
		skipped []uuid.UUID
	)
	err := s.storage.InTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		sale, err = repos.GetSale(ctx, id)
		if err != nil {
			return fmt.Errorf("sale %s: %w", id, err)
		}
		if sale.IsCancelled {
			return ErrAlreadyCancelled
		}

		skipped = skipped[:0]
		for _, item := range sale.Items {
			err := repos.IncrementStock(ctx, item.ProductID, item.Quantity)
			if errors.Is(err, ErrNotFound) {
				skipped = append(skipped, item.ProductID)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to restore stock for product %s: %w", item.ProductID, err)
			}
		}

		if err := sale.Cancel(); err != nil {
			return err
		}
		if err := repos.UpdateSale(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("failed to cancel sale", err, zap.String("sale_id", id.String()))
		return nil, err
	}

	for _, productID := range skipped {
		s.logger.Warn("stock not restored, product no longer exists",
			zap.String("sale_id", sale.ID.String()),
			zap.String("product_id", productID.String()))
	}
	s.logger.Info("sale cancelled",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber))
	s.publish(ctx, NewSaleCancelled(sale, skipped))
	return sale, nil
}

func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	sale, err := s.storage.GetSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", id, err)
	}
	return sale, nil
}

func (s *Service) ListSales(ctx context.Context) ([]*Sale, error) {
	sales, err := s.storage.ListSales(ctx)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}
	return sales, nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", event.EventType()), zap.Error(err))
	}
}

// logFailure logs business rejections at Warn and anything unexpected at Error.
func (s *Service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isRejection(err) {
		s.logger.Warn(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

var rejections = []error{
	ErrValidation,
	ErrNotFound,
	ErrInactive,
	ErrInsufficientStock,
	ErrInvalidQuantity,
	ErrQuantityExceedsLimit,
	ErrDuplicateProduct,
	ErrAlreadyCancelled,
	ErrSaleCancelled,
}

func isRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// checkItems rejects repeated products and out-of-range quantities before
// anything is read or written.
func checkItems(items []CreateSaleItemCommand) error {
	seen := make(map[uuid.UUID]struct{}, len(items))
	var dups []string
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			dups = append(dups, item.ProductID.String())
			continue
		}
		seen[item.ProductID] = struct{}{}
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: %v; use the quantity to sell several units", ErrDuplicateProduct, dups)
	}

	for _, item := range items {
		if err := ValidateQuantity(item.Quantity); err != nil {
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func activeCustomer(ctx context.Context, repos catalog.CustomerRepository, id uuid.UUID) (*catalog.Customer, error) {
	customer, err := repos.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", id, err)
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: customer %s", ErrInactive, customer.Name)
	}
	return customer, nil
}

func activeBranch(ctx context.Context, repos catalog.BranchRepository, id uuid.UUID) (*catalog.Branch, error) {
	branch, err := repos.GetBranch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", id, err)
	}
	if !branch.IsActive {
		return nil, fmt.Errorf("%w: branch %s", ErrInactive, branch.Name)
	}
	return branch, nil
}
