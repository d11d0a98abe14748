package sales

import (
	"errors"
	"fmt"

	"sales_api/internal/catalog"
)

// Failures shared with the catalog are re-exported so callers only need to
// match against this package.
var (
	ErrValidation        = catalog.ErrValidation
	ErrNotFound          = catalog.ErrNotFound
	ErrInactive          = catalog.ErrInactive
	ErrInsufficientStock = catalog.ErrInsufficientStock
	ErrInvalidQuantity   = catalog.ErrInvalidQuantity
)

var (
	// ErrDuplicateProduct is returned when one sale request names a product twice.
	ErrDuplicateProduct = errors.New("duplicate product in sale")

	// ErrQuantityExceedsLimit is returned when an item asks for more than MaxQuantity units.
	ErrQuantityExceedsLimit = fmt.Errorf("quantity exceeds the limit of %d units per product", MaxQuantity)

	// ErrAlreadyCancelled is returned when cancelling a cancelled sale.
	ErrAlreadyCancelled = errors.New("sale is already cancelled")

	// ErrNotCancelled is returned when reactivating a sale that is not cancelled.
	ErrNotCancelled = errors.New("sale is not cancelled")

	// ErrSaleCancelled is returned when mutating the items of a cancelled sale.
	ErrSaleCancelled = errors.New("sale is cancelled")

	// ErrDuplicateSaleNumber is returned by storage when a sale number is already taken.
	ErrDuplicateSaleNumber = errors.New("sale number already exists")

	// ErrSaleSequenceExhausted is returned once a day has used every sale number.
	ErrSaleSequenceExhausted = errors.New("daily sale sequence exhausted")
)

// Manual discount rejections.
var (
	ErrNegativeDiscount        = fmt.Errorf("%w: discount cannot be negative", ErrValidation)
	ErrDiscountNotAllowed      = fmt.Errorf("%w: discounts require at least %d units", ErrValidation, DiscountFloor)
	ErrDiscountExceedsSubtotal = fmt.Errorf("%w: discount cannot be greater than subtotal", ErrValidation)
	ErrNegativeUnitPrice       = fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
)
