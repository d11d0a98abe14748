package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventSaleCreated   = "sale.created"
	EventSaleCancelled = "sale.cancelled"
)

// Event is a notification emitted after a sale transaction commits.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// Publisher delivers events to external consumers. Delivery failures never
// undo the operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type EventItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type SaleCreated struct {
	SaleID      uuid.UUID        `json:"sale_id"`
	SaleNumber  string           `json:"sale_number"`
	Customer    CustomerSnapshot `json:"customer"`
	Branch      BranchSnapshot   `json:"branch"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	ItemCount   int              `json:"item_count"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []EventItem      `json:"items"`
}

func (e SaleCreated) EventType() string     { return EventSaleCreated }
func (e SaleCreated) OccurredAt() time.Time { return e.CreatedAt }

type SaleCancelled struct {
	SaleID           uuid.UUID        `json:"sale_id"`
	SaleNumber       string           `json:"sale_number"`
	Customer         CustomerSnapshot `json:"customer"`
	Branch           BranchSnapshot   `json:"branch"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	CancelledAt      time.Time        `json:"cancelled_at"`
	OriginalSaleDate time.Time        `json:"original_sale_date"`
	Items            []EventItem      `json:"items"`
	// SkippedProducts lists products that no longer existed, so their stock
	// was not restored.
	SkippedProducts []uuid.UUID `json:"skipped_products,omitempty"`
}

func (e SaleCancelled) EventType() string     { return EventSaleCancelled }
func (e SaleCancelled) OccurredAt() time.Time { return e.CancelledAt }

func NewSaleCreated(s *Sale) SaleCreated {
	return SaleCreated{
		SaleID:      s.ID,
		SaleNumber:  s.SaleNumber,
		Customer:    s.Customer,
		Branch:      s.Branch,
		TotalAmount: s.TotalAmount,
		ItemCount:   s.ItemCount(),
		CreatedAt:   s.CreatedAt,
		Items:       eventItems(s.Items),
	}
}

func NewSaleCancelled(s *Sale, skipped []uuid.UUID) SaleCancelled {
	e := SaleCancelled{
		SaleID:           s.ID,
		SaleNumber:       s.SaleNumber,
		Customer:         s.Customer,
		Branch:           s.Branch,
		TotalAmount:      s.TotalAmount,
		OriginalSaleDate: s.SaleDate,
		Items:            eventItems(s.Items),
		SkippedProducts:  skipped,
	}
	if s.CancelledAt != nil {
		e.CancelledAt = *s.CancelledAt
	}
	return e
}

func eventItems(items []*SaleItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for _, i := range items {
		out = append(out, EventItem{
			ProductID:   i.ProductID,
			ProductName: i.ProductName,
			ProductSKU:  i.ProductSKU,
			Quantity:    i.Quantity,
			UnitPrice:   i.UnitPrice,
			Discount:    i.Discount,
			TotalAmount: i.TotalAmount,
		})
	}
	return out
}
