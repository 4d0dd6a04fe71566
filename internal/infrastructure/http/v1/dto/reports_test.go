package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSalesSummaryQuery_Filter_EndBoundIsInclusive(t *testing.T) {
	q := SalesSummaryQuery{
		From: date(2026, time.August, 1),
		To:   date(2026, time.August, 31),
	}

	filter := q.Filter()

	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	assert.Equal(t, *q.From, *filter.From)

	// An order placed mid-morning on the last day of the range must
	// fall inside the bound the repository applies with <=.
	lastDayOrder := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	assert.False(t, filter.To.Before(lastDayOrder))
	// But nothing from the next day leaks in.
	assert.True(t, filter.To.Before(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSalesSummaryQuery_Filter_SameDayRangeCoversWholeDay(t *testing.T) {
	q := SalesSummaryQuery{
		From: date(2026, time.August, 31),
		To:   date(2026, time.August, 31),
	}

	filter := q.Filter()

	require.NotNil(t, filter.To)
	lateOrder := time.Date(2026, time.August, 31, 23, 45, 0, 0, time.UTC)
	assert.False(t, filter.From.After(lateOrder))
	assert.False(t, filter.To.Before(lateOrder))
}

func TestSalesSummaryQuery_Filter_NilBoundsPassThrough(t *testing.T) {
	filter := SalesSummaryQuery{}.Filter()

	assert.Nil(t, filter.From)
	assert.Nil(t, filter.To)
}

func TestOrderListQuery_Filter_EndBoundIsInclusive(t *testing.T) {
	q := OrderListQuery{
		From:   date(2026, time.August, 1),
		To:     date(2026, time.August, 31),
		Limit:  20,
		Offset: 40,
	}

	filter := q.Filter()

	require.NotNil(t, filter.To)
	lastDayOrder := time.Date(2026, time.August, 31, 18, 30, 0, 0, time.UTC)
	assert.False(t, filter.To.Before(lastDayOrder))
	assert.Equal(t, 20, filter.Limit)
	assert.Equal(t, 40, filter.Offset)
}
