package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// clock is the time source for every timestamp the aggregate sets.
var clock = func() time.Time { return time.Now().UTC() }

// CustomerSnapshot is the buyer as it looked when the sale was created.
type CustomerSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BranchSnapshot is the branch as it looked when the sale was created.
type BranchSnapshot struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// Sale is the aggregate root for a sales transaction. Items and TotalAmount
// are only changed through the methods below; TotalAmount always equals the
// sum of the item totals.
type Sale struct {
	ID          uuid.UUID        `json:"id"`
	SaleNumber  string           `json:"sale_number"`
	SaleDate    time.Time        `json:"sale_date"`
	Customer    CustomerSnapshot `json:"customer"`
	Branch      BranchSnapshot   `json:"branch"`
	Items       []*SaleItem      `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	IsCancelled bool             `json:"is_cancelled"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewSale creates an empty sale for the given buyer and branch.
func NewSale(number string, customer CustomerSnapshot, branch BranchSnapshot) *Sale {
	now := clock()
	return &Sale{
		ID:          uuid.New(),
		SaleNumber:  number,
		SaleDate:    now,
		Customer:    customer,
		Branch:      branch,
		Items:       []*SaleItem{},
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddItem appends item and recomputes the total.
func (s *Sale) AddItem(item *SaleItem) error {
	if s.IsCancelled {
		return fmt.Errorf("cannot add items: %w", ErrSaleCancelled)
	}
	if item == nil {
		return fmt.Errorf("%w: item is required", ErrValidation)
	}
	for _, existing := range s.Items {
		if existing.ProductID == item.ProductID {
			return fmt.Errorf("%w: product %s", ErrDuplicateProduct, item.ProductID)
		}
	}

	item.SaleID = s.ID
	s.Items = append(s.Items, item)
	s.CalculateTotal()
	s.UpdatedAt = clock()
	return nil
}

// RemoveItem drops the item with itemID. Unknown ids are ignored.
func (s *Sale) RemoveItem(itemID uuid.UUID) error {
	if s.IsCancelled {
		return fmt.Errorf("cannot remove items: %w", ErrSaleCancelled)
	}
	for idx, item := range s.Items {
		if item.ID != itemID {
			continue
		}
		s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
		s.CalculateTotal()
		s.UpdatedAt = clock()
		return nil
	}
	return nil
}

// Item returns the item with itemID, if present.
func (s *Sale) Item(itemID uuid.UUID) (*SaleItem, bool) {
	for _, item := range s.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return nil, false
}

// Cancel marks the sale as cancelled. Stock restitution is the caller's job.
func (s *Sale) Cancel() error {
	if s.IsCancelled {
		return ErrAlreadyCancelled
	}
	now := clock()
	s.IsCancelled = true
	s.CancelledAt = &now
	s.UpdatedAt = now
	return nil
}

// Reactivate undoes a cancellation.
func (s *Sale) Reactivate() error {
	if !s.IsCancelled {
		return ErrNotCancelled
	}
	s.IsCancelled = false
	s.CancelledAt = nil
	s.UpdatedAt = clock()
	return nil
}

// CalculateTotal resums the item totals.
func (s *Sale) CalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.TotalAmount)
	}
	s.TotalAmount = total
}

// RecalculateTotals re-derives every item total and then the sale total.
func (s *Sale) RecalculateTotals() {
	for _, item := range s.Items {
		item.CalculateTotal()
	}
	s.CalculateTotal()
	s.UpdatedAt = clock()
}

// ItemCount is the number of lines in the sale.
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// Clone returns a deep copy of the sale.
func (s *Sale) Clone() *Sale {
	cp := *s
	if s.CancelledAt != nil {
		at := *s.CancelledAt
		cp.CancelledAt = &at
	}
	cp.Items = make([]*SaleItem, len(s.Items))
	for i, item := range s.Items {
		it := *item
		cp.Items[i] = &it
	}
	return &cp
}
