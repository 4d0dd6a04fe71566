package dto

import (
	"time"

	"kitchenledger/internal/domain/reports"
)

// SalesSummaryQuery contains sales report query parameters. The date
// range is optional; when supplied it bounds the report.
type SalesSummaryQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Filter converts the query to a domain filter. The range is inclusive
// of both days, so the date-only end bound is pushed to the last
// instant of its day before it reaches the repository.
func (q SalesSummaryQuery) Filter() reports.SalesFilter {
	return reports.SalesFilter{
		From: q.From,
		To:   endOfDay(q.To),
	}
}

// endOfDay extends a date-only bound to the last instant of its day.
// A query like from=2026-08-01&to=2026-08-31 must include orders
// placed any time on the 31st.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	eod := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &eod
}
