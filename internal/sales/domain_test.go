package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSale() *Sale {
	return NewSale("SALE-20240101-0001",
		CustomerSnapshot{ID: uuid.New(), Name: "Ana Souza", Email: "ana@example.com"},
		BranchSnapshot{ID: uuid.New(), Name: "Downtown", Code: "DT-01"},
	)
}

func testItem(t *testing.T, s *Sale, price string, quantity int) *SaleItem {
	t.Helper()
	item, err := NewSaleItem(s.ID, ProductRef{
		ID:        uuid.New(),
		Name:      "Notebook",
		SKU:       "NB-" + uuid.NewString()[:8],
		UnitPrice: money(t, price),
	}, quantity)
	require.NoError(t, err)
	return item
}

func TestNewSaleItem(t *testing.T) {
	s := testSale()

	t.Run("applies tier discount", func(t *testing.T) {
		item := testItem(t, s, "100", 4)
		assertMoney(t, "40", item.Discount)
		assertMoney(t, "360", item.TotalAmount)
		assertMoney(t, "400", item.Subtotal())
		assert.Equal(t, s.ID, item.SaleID)
		assert.NotEqual(t, uuid.Nil, item.ID)
	})

	t.Run("requires product data", func(t *testing.T) {
		ref := ProductRef{ID: uuid.New(), Name: "Pen", SKU: "PEN-1", UnitPrice: money(t, "1")}

		_, err := NewSaleItem(uuid.Nil, ref, 1)
		assert.ErrorIs(t, err, ErrValidation)

		noID := ref
		noID.ID = uuid.Nil
		_, err = NewSaleItem(s.ID, noID, 1)
		assert.ErrorIs(t, err, ErrValidation)

		noName := ref
		noName.Name = "  "
		_, err = NewSaleItem(s.ID, noName, 1)
		assert.ErrorIs(t, err, ErrValidation)

		noSKU := ref
		noSKU.SKU = ""
		_, err = NewSaleItem(s.ID, noSKU, 1)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects quantity", func(t *testing.T) {
		ref := ProductRef{ID: uuid.New(), Name: "Pen", SKU: "PEN-1", UnitPrice: money(t, "1")}
		_, err := NewSaleItem(s.ID, ref, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, err = NewSaleItem(s.ID, ref, 21)
		assert.ErrorIs(t, err, ErrQuantityExceedsLimit)
	})
}

func TestSaleItem_Updates(t *testing.T) {
	s := testSale()
	item := testItem(t, s, "10", 3)
	assert.True(t, item.Discount.IsZero())

	require.NoError(t, item.UpdateQuantity(10))
	assert.Equal(t, 10, item.Quantity)
	assertMoney(t, "20", item.Discount)
	assertMoney(t, "80", item.TotalAmount)

	require.NoError(t, item.UpdateUnitPrice(money(t, "5")))
	assertMoney(t, "10", item.Discount)
	assertMoney(t, "40", item.TotalAmount)

	err := item.UpdateQuantity(21)
	assert.ErrorIs(t, err, ErrQuantityExceedsLimit)
	assert.Equal(t, 10, item.Quantity, "failed update leaves the item untouched")

	err = item.UpdateUnitPrice(money(t, "-5"))
	assert.ErrorIs(t, err, ErrNegativeUnitPrice)
	assertMoney(t, "5", item.UnitPrice)

	require.NoError(t, item.ApplyDiscount(money(t, "3")))
	assertMoney(t, "47", item.TotalAmount)
	require.NoError(t, item.ApplyAutomaticDiscount())
	assertMoney(t, "40", item.TotalAmount)
}

func TestSale_AddRemoveItems(t *testing.T) {
	s := testSale()
	a := testItem(t, s, "100", 4)
	b := testItem(t, s, "2.50", 2)

	require.NoError(t, s.AddItem(a))
	require.NoError(t, s.AddItem(b))
	assert.Equal(t, 2, s.ItemCount())
	assertMoney(t, "365", s.TotalAmount)

	got, ok := s.Item(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)

	require.NoError(t, s.RemoveItem(b.ID))
	assert.Equal(t, 1, s.ItemCount())
	assertMoney(t, "360", s.TotalAmount)

	require.NoError(t, s.RemoveItem(uuid.New()), "unknown item is ignored")
	assert.Equal(t, 1, s.ItemCount())

	require.NoError(t, s.RemoveItem(a.ID))
	assert.True(t, s.TotalAmount.IsZero())
}

func TestSale_AddItemRejectsDuplicateProduct(t *testing.T) {
	s := testSale()
	a := testItem(t, s, "10", 1)
	require.NoError(t, s.AddItem(a))

	dup := testItem(t, s, "10", 2)
	dup.ProductID = a.ProductID
	err := s.AddItem(dup)
	assert.ErrorIs(t, err, ErrDuplicateProduct)
	assert.Equal(t, 1, s.ItemCount())

	assert.ErrorIs(t, s.AddItem(nil), ErrValidation)
}

func TestSale_CancelAndReactivate(t *testing.T) {
	s := testSale()
	item := testItem(t, s, "10", 1)
	require.NoError(t, s.AddItem(item))

	assert.ErrorIs(t, s.Reactivate(), ErrNotCancelled)

	require.NoError(t, s.Cancel())
	assert.True(t, s.IsCancelled)
	require.NotNil(t, s.CancelledAt)

	assert.ErrorIs(t, s.Cancel(), ErrAlreadyCancelled)
	assert.ErrorIs(t, s.AddItem(testItem(t, s, "1", 1)), ErrSaleCancelled)
	assert.ErrorIs(t, s.RemoveItem(item.ID), ErrSaleCancelled)
	assert.Equal(t, 1, s.ItemCount())

	require.NoError(t, s.Reactivate())
	assert.False(t, s.IsCancelled)
	assert.Nil(t, s.CancelledAt)
	require.NoError(t, s.RemoveItem(item.ID))
}

func TestSale_RecalculateTotals(t *testing.T) {
	s := testSale()
	item := testItem(t, s, "10", 4)
	require.NoError(t, s.AddItem(item))

	require.NoError(t, item.UpdateQuantity(10))
	// the sale total is stale until recalculated
	assertMoney(t, "36", s.TotalAmount)

	s.RecalculateTotals()
	assertMoney(t, "80", s.TotalAmount)
}

func TestSale_CloneIsDeep(t *testing.T) {
	s := testSale()
	require.NoError(t, s.AddItem(testItem(t, s, "10", 1)))
	require.NoError(t, s.Cancel())

	cp := s.Clone()
	cp.Items[0].Quantity = 7
	*cp.CancelledAt = cp.CancelledAt.Add(time.Hour)

	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.NotEqual(t, *s.CancelledAt, *cp.CancelledAt)
}

func TestFormatSaleNumber(t *testing.T) {
	day := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "SALE-20240305-0007", FormatSaleNumber(day, 7))
	assert.Equal(t, "SALE-20240305-9999", FormatSaleNumber(day, MaxDailySequence))
}

type fixedSequence int

func (s fixedSequence) NextSaleSequence(context.Context, time.Time) (int, error) {
	return int(s), nil
}

func TestNextSaleNumber_DailyLimit(t *testing.T) {
	at := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

	n, err := NextSaleNumber(t.Context(), fixedSequence(MaxDailySequence), at)
	require.NoError(t, err)
	assert.Equal(t, "SALE-20240305-9999", n)

	_, err = NextSaleNumber(t.Context(), fixedSequence(MaxDailySequence+1), at)
	require.ErrorIs(t, err, ErrSaleSequenceExhausted)
}

func TestNextSaleNumber_SeedsFromExistingSales(t *testing.T) {
	ctx := t.Context()
	store := NewLocalStorage()
	at := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

	existing := testSale()
	existing.SaleDate = at.Add(-time.Hour)
	require.NoError(t, store.CreateSale(ctx, existing))

	n, err := NextSaleNumber(ctx, store, at)
	require.NoError(t, err)
	assert.Equal(t, "SALE-20240305-0002", n)

	n, err = NextSaleNumber(ctx, store, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "SALE-20240305-0003", n)

	n, err = NextSaleNumber(ctx, store, at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "SALE-20240306-0001", n)
}
