package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, money(t, want).Equal(got), "want %s, got %s", want, got)
}

func TestPrice_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		unitPrice string
		subtotal  string
		discount  string
		total     string
	}{
		{"single unit", 1, "100", "100", "0", "100"},
		{"below discount floor", 3, "100", "300", "0", "300"},
		{"discount floor", 4, "100", "400", "40", "360"},
		{"top of standard tier", 9, "10", "90", "9", "81"},
		{"bulk threshold", 10, "50", "500", "100", "400"},
		{"max quantity", 20, "9.99", "199.80", "39.96", "159.84"},
		{"free product", 5, "0", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Price(tt.quantity, money(t, tt.unitPrice))
			require.NoError(t, err)
			assertMoney(t, tt.subtotal, p.Subtotal)
			assertMoney(t, tt.discount, p.Discount)
			assertMoney(t, tt.total, p.Total)
		})
	}
}

func TestPrice_RejectsQuantityOutOfRange(t *testing.T) {
	tests := []struct {
		quantity int
		want     error
	}{
		{0, ErrInvalidQuantity},
		{-3, ErrInvalidQuantity},
		{21, ErrQuantityExceedsLimit},
		{100, ErrQuantityExceedsLimit},
	}

	for _, tt := range tests {
		_, err := Price(tt.quantity, money(t, "10"))
		assert.ErrorIs(t, err, tt.want, "quantity %d", tt.quantity)
	}
}

func TestPrice_RejectsNegativeUnitPrice(t *testing.T) {
	_, err := Price(2, money(t, "-1"))
	assert.ErrorIs(t, err, ErrNegativeUnitPrice)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDiscountRate(t *testing.T) {
	for q := MinQuantity; q <= MaxQuantity; q++ {
		rate, err := DiscountRate(q)
		require.NoError(t, err)

		switch {
		case q >= 10:
			assertMoney(t, "0.20", rate)
		case q >= 4:
			assertMoney(t, "0.10", rate)
		default:
			assert.True(t, rate.IsZero(), "quantity %d", q)
		}
	}
}

func TestPriceWithDiscount(t *testing.T) {
	t.Run("manual discount replaces tier discount", func(t *testing.T) {
		p, err := PriceWithDiscount(5, money(t, "10"), money(t, "7.50"))
		require.NoError(t, err)
		assertMoney(t, "50", p.Subtotal)
		assertMoney(t, "7.50", p.Discount)
		assertMoney(t, "42.50", p.Total)
	})

	t.Run("discount equal to subtotal", func(t *testing.T) {
		p, err := PriceWithDiscount(5, money(t, "10"), money(t, "50"))
		require.NoError(t, err)
		assert.True(t, p.Total.IsZero())
	})

	t.Run("zero discount below floor", func(t *testing.T) {
		p, err := PriceWithDiscount(3, money(t, "10"), decimal.Zero)
		require.NoError(t, err)
		assertMoney(t, "30", p.Total)
	})

	t.Run("positive discount below floor", func(t *testing.T) {
		_, err := PriceWithDiscount(3, money(t, "10"), money(t, "1"))
		assert.ErrorIs(t, err, ErrDiscountNotAllowed)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative discount", func(t *testing.T) {
		_, err := PriceWithDiscount(5, money(t, "10"), money(t, "-0.01"))
		assert.ErrorIs(t, err, ErrNegativeDiscount)
	})

	t.Run("discount above subtotal", func(t *testing.T) {
		_, err := PriceWithDiscount(5, money(t, "10"), money(t, "50.01"))
		assert.ErrorIs(t, err, ErrDiscountExceedsSubtotal)
	})

	t.Run("quantity still validated", func(t *testing.T) {
		_, err := PriceWithDiscount(21, money(t, "10"), decimal.Zero)
		assert.ErrorIs(t, err, ErrQuantityExceedsLimit)
	})
}
