package sales

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity tiers.
const (
	MinQuantity   = 1
	MaxQuantity   = 20
	DiscountFloor = 4  // first quantity that earns a discount
	BulkThreshold = 10 // first quantity that earns the bulk rate
)

var (
	standardRate = decimal.RequireFromString("0.10")
	bulkRate     = decimal.RequireFromString("0.20")
)

// Pricing is the priced form of one sale line.
type Pricing struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ValidateQuantity reports whether quantity is within [MinQuantity, MaxQuantity].
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: got %d", ErrQuantityExceedsLimit, quantity)
	}
	return nil
}

// DiscountRate returns the tier rate for quantity.
func DiscountRate(quantity int) (decimal.Decimal, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return decimal.Zero, err
	}
	switch {
	case quantity >= BulkThreshold:
		return bulkRate, nil
	case quantity >= DiscountFloor:
		return standardRate, nil
	default:
		return decimal.Zero, nil
	}
}

// Price applies the automatic tier discount to quantity units of unitPrice.
func Price(quantity int, unitPrice decimal.Decimal) (Pricing, error) {
	rate, err := DiscountRate(quantity)
	if err != nil {
		return Pricing{}, err
	}
	if unitPrice.IsNegative() {
		return Pricing{}, ErrNegativeUnitPrice
	}

	subtotal := subtotal(quantity, unitPrice)
	discount := subtotal.Mul(rate)
	return Pricing{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

// PriceWithDiscount prices a line with a manually chosen discount. The
// discount must be non-negative, zero below DiscountFloor units and no larger
// than the subtotal.
func PriceWithDiscount(quantity int, unitPrice, discount decimal.Decimal) (Pricing, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return Pricing{}, err
	}
	if unitPrice.IsNegative() {
		return Pricing{}, ErrNegativeUnitPrice
	}
	if discount.IsNegative() {
		return Pricing{}, ErrNegativeDiscount
	}
	if quantity < DiscountFloor && discount.IsPositive() {
		return Pricing{}, ErrDiscountNotAllowed
	}

	subtotal := subtotal(quantity, unitPrice)
	if discount.GreaterThan(subtotal) {
		return Pricing{}, ErrDiscountExceedsSubtotal
	}
	return Pricing{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

func subtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
