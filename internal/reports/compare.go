package reports

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MetricDelta tracks one KPI across the current and previous windows.
type MetricDelta struct {
	Current   decimal.Decimal
	Previous  decimal.Decimal
	Delta     decimal.Decimal
	PctChange decimal.Decimal
}

// Comparative is the full period-over-period block of a report.
type Comparative struct {
	Window       Window
	Custom       bool
	Revenue      MetricDelta
	NetProfit    MetricDelta
	Transactions MetricDelta
	Margin       MetricDelta
	// Participation: what share of the current total the prior period
	// represented, for revenue and net profit.
	RevenueSharePct   decimal.Decimal
	NetProfitSharePct decimal.Decimal
}

// Comparator recomputes the KPI subset over the previous period and derives
// deltas. Stateless; invoked once per report request.
type Comparator struct {
	selector *Selector
	agg      Aggregator
	loc      *time.Location
}

// NewComparator wires the comparative engine.
func NewComparator(selector *Selector, agg Aggregator, loc *time.Location) *Comparator {
	return &Comparator{selector: selector, agg: agg, loc: loc}
}

// Compare resolves the previous window, re-runs the KPI aggregation over it
// with the same filters, and produces deltas against the current KPIs.
//
// An explicit override range replaces the automatic previous period for this
// call only; when either bound is unparsable or the range is inverted, the
// override is dropped and the automatic period applies.
func (c *Comparator) Compare(ctx context.Context, current KPIResult, window Window, filters Filters, overrideFrom, overrideTo string) (Comparative, error) {
	prev, custom := c.previousWindow(window, overrideFrom, overrideTo)

	prevSet, err := c.selector.Select(ctx, prev, filters)
	if err != nil {
		return Comparative{}, err
	}
	prevKPIs := c.agg.Aggregate(prevSet)

	cmp := Comparative{
		Window:       prev,
		Custom:       custom,
		Revenue:      newDelta(current.Revenue, prevKPIs.Revenue),
		NetProfit:    newDelta(current.NetProfit, prevKPIs.NetProfit),
		Transactions: newDelta(decimal.NewFromInt(current.Transactions), decimal.NewFromInt(prevKPIs.Transactions)),
		Margin:       newDelta(current.MarginPct, prevKPIs.MarginPct),
	}
	cmp.RevenueSharePct = participation(prevKPIs.Revenue, current.Revenue)
	cmp.NetProfitSharePct = participation(prevKPIs.NetProfit, current.NetProfit)
	return cmp, nil
}

func (c *Comparator) previousWindow(window Window, overrideFrom, overrideTo string) (Window, bool) {
	fromStr := strings.TrimSpace(overrideFrom)
	toStr := strings.TrimSpace(overrideTo)
	if fromStr != "" && toStr != "" {
		from, errFrom := time.ParseInLocation(dateLayout, fromStr, c.loc)
		to, errTo := time.ParseInLocation(dateLayout, toStr, c.loc)
		if errFrom == nil && errTo == nil && !from.After(to) {
			return Window{Start: from, End: to.AddDate(0, 0, 1).Add(-time.Microsecond)}, true
		}
	}
	return window.Previous(), false
}

// newDelta computes absolute and percentage change. A zero previous value
// with current activity signals 100% growth instead of dividing by zero.
func newDelta(current, previous decimal.Decimal) MetricDelta {
	d := MetricDelta{
		Current:  current,
		Previous: previous,
		Delta:    current.Sub(previous),
	}
	switch {
	case !previous.IsZero():
		d.PctChange = d.Delta.Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	case current.IsPositive():
		d.PctChange = decimal.NewFromInt(100)
	}
	return d
}

func participation(previous, current decimal.Decimal) decimal.Decimal {
	if current.IsZero() {
		return decimal.Decimal{}
	}
	return previous.Div(current).Mul(decimal.NewFromInt(100)).Round(2)
}
