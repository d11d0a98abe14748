package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRef is the point-in-time copy of a product captured by a sale item.
type ProductRef struct {
	ID        uuid.UUID
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
}

// SaleItem is one priced line of a Sale. It has no lifecycle outside its sale.
type SaleItem struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewSaleItem builds a line for quantity units of product with the automatic
// tier discount applied.
func NewSaleItem(saleID uuid.UUID, product ProductRef, quantity int) (*SaleItem, error) {
	if saleID == uuid.Nil {
		return nil, fmt.Errorf("%w: sale id is required", ErrValidation)
	}
	if product.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: product id is required", ErrValidation)
	}
	if strings.TrimSpace(product.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if strings.TrimSpace(product.SKU) == "" {
		return nil, fmt.Errorf("%w: product sku is required", ErrValidation)
	}

	pricing, err := Price(quantity, product.UnitPrice)
	if err != nil {
		return nil, err
	}

	now := clock()
	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductSKU:  product.SKU,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
		Discount:    pricing.Discount,
		TotalAmount: pricing.Total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Subtotal is quantity times unit price, before discount.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return subtotal(i.Quantity, i.UnitPrice)
}

// ApplyAutomaticDiscount resets the discount to the tier discount.
func (i *SaleItem) ApplyAutomaticDiscount() error {
	pricing, err := Price(i.Quantity, i.UnitPrice)
	if err != nil {
		return err
	}
	i.apply(pricing)
	return nil
}

// ApplyDiscount overrides the tier discount with a manual one.
func (i *SaleItem) ApplyDiscount(discount decimal.Decimal) error {
	pricing, err := PriceWithDiscount(i.Quantity, i.UnitPrice, discount)
	if err != nil {
		return err
	}
	i.apply(pricing)
	return nil
}

// UpdateQuantity changes the quantity and re-derives the tier discount. The
// owning sale must recalculate its totals afterwards.
func (i *SaleItem) UpdateQuantity(quantity int) error {
	pricing, err := Price(quantity, i.UnitPrice)
	if err != nil {
		return err
	}
	i.Quantity = quantity
	i.apply(pricing)
	return nil
}

// UpdateUnitPrice changes the unit price and re-derives the tier discount.
// The owning sale must recalculate its totals afterwards.
func (i *SaleItem) UpdateUnitPrice(unitPrice decimal.Decimal) error {
	pricing, err := Price(i.Quantity, unitPrice)
	if err != nil {
		return err
	}
	i.UnitPrice = unitPrice
	i.apply(pricing)
	return nil
}

// CalculateTotal re-derives TotalAmount from quantity, unit price and discount.
func (i *SaleItem) CalculateTotal() {
	i.TotalAmount = i.Subtotal().Sub(i.Discount)
}

func (i *SaleItem) apply(p Pricing) {
	i.Discount = p.Discount
	i.TotalAmount = p.Total
	i.UpdatedAt = clock()
}
