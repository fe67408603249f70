package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() BreakdownBuilder {
	return NewBreakdownBuilder(NewAggregator(decimal.NewFromInt(19)), time.UTC)
}

func TestBuildDailySeriesIsSparseAndOrdered(t *testing.T) {
	b := newTestBuilder()
	set := twoProductSet()

	out := b.Build(set, nil)
	// Two active days out of the window; the quiet days are not emitted.
	require.Len(t, out.Daily, 2)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), out.Daily[0].Date)
	require.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), out.Daily[1].Date)
	require.Equal(t, "2000", out.Daily[0].Revenue.String())
	require.Equal(t, "5000", out.Daily[1].Revenue.String())

	// Day one: revenue 2000, cogs 1000, both tax-exclusive before subtracting.
	require.Equal(t, "840.33", out.Daily[0].NetProfit.StringFixed(2))
}

func TestBuildHourlyGridIsDense(t *testing.T) {
	b := newTestBuilder()
	out := b.Build(twoProductSet(), nil)

	require.Len(t, out.Hourly[:], HoursPerDay)
	for i, bucket := range out.Hourly {
		require.Equal(t, i, bucket.Hour)
	}
	require.EqualValues(t, 1, out.Hourly[10].Count)
	require.Equal(t, "2000", out.Hourly[10].Revenue.String())
	require.EqualValues(t, 1, out.Hourly[16].Count)
	require.EqualValues(t, 0, out.Hourly[3].Count)
}

func TestBuildHeatmapIsMondayFirst(t *testing.T) {
	b := newTestBuilder()
	out := b.Build(twoProductSet(), nil)

	// 2025-03-10 is a Monday, 2025-03-11 a Tuesday.
	require.EqualValues(t, 1, out.Heatmap[0][10].Count)
	require.EqualValues(t, 1, out.Heatmap[1][16].Count)
	require.EqualValues(t, 0, out.Heatmap[6][10].Count)
}

func TestBuildBranchesEnumeratesAllKnownBranches(t *testing.T) {
	b := newTestBuilder()
	store := twoProductStore()
	set := SaleSet{Window: testWindow(), Sales: store.sales, Lines: store.lines}

	out := b.Build(set, store.branches)
	// Two known branches plus the unassigned row for sale 2.
	require.Len(t, out.Branches, 3)

	require.EqualValues(t, 1, out.Branches[0].BranchID)
	require.Equal(t, "Centro", out.Branches[0].Name)
	require.Equal(t, "2000", out.Branches[0].Revenue.String())

	require.EqualValues(t, 2, out.Branches[1].BranchID)
	require.Equal(t, "Norte", out.Branches[1].Name)
	require.True(t, out.Branches[1].Revenue.IsZero(), "inactive branches still get a row")

	require.Equal(t, "Sin sucursal", out.Branches[2].Name)
	require.Equal(t, "5000", out.Branches[2].Revenue.String())
}

func TestBuildOmitsUnassignedRowWhenAllSalesHaveBranches(t *testing.T) {
	b := newTestBuilder()
	branchOne := int64(1)
	set := SaleSet{
		Window: testWindow(),
		Sales: []Sale{
			{ID: 1, OccurredAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), EmployeeID: 1, Employee: "ana", BranchID: &branchOne, Payment: PaymentCash, Total: money("2000")},
		},
	}

	out := b.Build(set, []Branch{{ID: 1, Name: "Centro"}})
	require.Len(t, out.Branches, 1)
	require.Equal(t, "Centro", out.Branches[0].Name)
}

func TestBuildPaymentBreakdown(t *testing.T) {
	b := newTestBuilder()
	out := b.Build(twoProductSet(), nil)

	require.Len(t, out.Payments, 2)
	require.Equal(t, PaymentCash, out.Payments[0].Method)
	require.EqualValues(t, 1, out.Payments[0].Count)
	require.Equal(t, "2000", out.Payments[0].Amount.String())
	require.Equal(t, PaymentDebit, out.Payments[1].Method)
	require.Equal(t, "5000", out.Payments[1].Amount.String())
}

func TestBuildWaveHasSixSegments(t *testing.T) {
	b := newTestBuilder()
	out := b.Build(twoProductSet(), nil)

	require.Len(t, out.Wave, 6)

	total := decimal.Decimal{}
	for _, point := range out.Wave {
		require.NotEmpty(t, point.Label)
		total = total.Add(point.Gain)
	}
	// Segment gains add up to the window's net profit.
	require.Equal(t, "3361.34", total.StringFixed(2))
}

func TestBuildWaveZeroSpanWindow(t *testing.T) {
	b := newTestBuilder()
	at := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	set := SaleSet{Window: Window{Start: at, End: at}}

	out := b.Build(set, nil)
	require.Len(t, out.Wave, 6)
	for _, point := range out.Wave {
		require.Equal(t, "2025-03-10", point.Label)
		require.True(t, point.Gain.IsZero())
	}
}
