package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a buyer that can be referenced by sales.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Document  string    `json:"document"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Branch is a store location where sales happen.
type Branch struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a sellable item. StockQuantity is the product's stock ledger and
// never goes below zero.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AddStock puts quantity units back into the ledger.
func (p *Product) AddStock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: stock adjustment must be greater than zero", ErrInvalidQuantity)
	}
	p.StockQuantity += quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveStock takes quantity units out of the ledger, failing when not enough
// units are available.
func (p *Product) RemoveStock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: stock adjustment must be greater than zero", ErrInvalidQuantity)
	}
	if !p.HasSufficientStock(quantity) {
		return fmt.Errorf("%w: product %s has %d available, %d requested",
			ErrInsufficientStock, p.Name, p.StockQuantity, quantity)
	}
	p.StockQuantity -= quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Product) HasSufficientStock(quantity int) bool {
	return p.StockQuantity >= quantity
}

func (p *Product) SetActive(active bool) {
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
}

func (c *Customer) SetActive(active bool) {
	c.IsActive = active
	c.UpdatedAt = time.Now().UTC()
}

func (b *Branch) SetActive(active bool) {
	b.IsActive = active
	b.UpdatedAt = time.Now().UTC()
}
