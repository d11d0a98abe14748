package sales

import (
	"context"
	"fmt"
	"time"
)

const saleNumberPrefix = "SALE"

// MaxDailySequence is the last sequence that fits the four-digit suffix of a
// sale number.
const MaxDailySequence = 9999

// SequenceReserver hands out the next sale sequence for a calendar day. The
// reservation must be atomic: two callers for the same day never receive the
// same value.
type SequenceReserver interface {
	NextSaleSequence(ctx context.Context, day time.Time) (int, error)
}

// NextSaleNumber reserves a sequence for the UTC day of at and formats it as
// SALE-YYYYMMDD-NNNN. It fails with ErrSaleSequenceExhausted once the day has
// handed out MaxDailySequence numbers.
func NextSaleNumber(ctx context.Context, seq SequenceReserver, at time.Time) (string, error) {
	day := StartOfDay(at)
	n, err := seq.NextSaleSequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("failed to reserve sale sequence: %w", err)
	}
	if n < 1 || n > MaxDailySequence {
		return "", fmt.Errorf("%w: sequence %d for %s", ErrSaleSequenceExhausted, n, day.Format(time.DateOnly))
	}
	return FormatSaleNumber(day, n), nil
}

// FormatSaleNumber renders SALE-YYYYMMDD-NNNN for the UTC date of day, with the
// sequence zero-padded to four digits. Sequences above MaxDailySequence widen
// the suffix; NextSaleNumber never produces them.
func FormatSaleNumber(day time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", saleNumberPrefix, day.UTC().Format("20060102"), sequence)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
