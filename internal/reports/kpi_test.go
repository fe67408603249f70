package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testWindow() Window {
	return Window{
		Start: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 11, 23, 59, 59, 999999000, time.UTC),
	}
}

func twoProductSet() SaleSet {
	store := twoProductStore()
	return SaleSet{Window: testWindow(), Sales: store.sales, Lines: store.lines}
}

func TestAggregateScalarKPIs(t *testing.T) {
	agg := NewAggregator(decimal.NewFromInt(19))
	res := agg.Aggregate(twoProductSet())

	require.Equal(t, "7000", res.Revenue.String())
	require.Equal(t, "3000", res.COGS.String())
	require.Equal(t, "4000", res.GrossProfit.String())
	require.Equal(t, "57.14", res.MarginPct.StringFixed(2))
	require.EqualValues(t, 2, res.Transactions)
	require.EqualValues(t, 4, res.Units)
	require.Equal(t, "3500.00", res.AvgTicket.StringFixed(2))
	require.Equal(t, "2.00", res.AvgUnitsPerSale.StringFixed(2))

	// Tax-exclusive figures round half-up at two decimals per value.
	require.Equal(t, "5882.35", res.RevenueExclTax.StringFixed(2))
	require.Equal(t, "1117.65", res.TaxCollected.StringFixed(2))
	require.Equal(t, "3361.34", res.NetProfit.StringFixed(2))
}

func TestAggregateNetProfitUsesPerValueExclusion(t *testing.T) {
	agg := NewAggregator(decimal.NewFromInt(19))
	res := agg.Aggregate(twoProductSet())

	// Net profit derives from individually rounded tax-exclusive bases, not
	// from stripping tax off the gross figure afterwards.
	require.Equal(t, agg.ExclTax(res.Revenue).Sub(agg.ExclTax(res.COGS)).StringFixed(2), res.NetProfit.StringFixed(2))
}

func TestAggregateBestSellerTieGoesToLowestProductID(t *testing.T) {
	agg := NewAggregator(decimal.NewFromInt(19))
	res := agg.Aggregate(twoProductSet())

	// Products 1 and 2 both sold two units; the lower ID wins.
	require.EqualValues(t, 1, res.BestSeller.ProductID)
	require.Equal(t, "A", res.BestSeller.Name)
	require.EqualValues(t, 2, res.BestSeller.Quantity)
}

func TestAggregateEmptySet(t *testing.T) {
	agg := NewAggregator(decimal.NewFromInt(19))
	res := agg.Aggregate(SaleSet{Window: testWindow()})

	require.True(t, res.Revenue.IsZero())
	require.True(t, res.MarginPct.IsZero())
	require.True(t, res.AvgTicket.IsZero())
	require.EqualValues(t, 0, res.Transactions)
	require.Equal(t, "N/A", res.BestSeller.Name)
	require.EqualValues(t, 0, res.BestSeller.ProductID)
}

func TestExclTaxRoundsHalfUp(t *testing.T) {
	agg := NewAggregator(decimal.NewFromInt(19))

	// 100 / 1.19 = 84.0336... -> 84.03
	require.Equal(t, "84.03", agg.ExclTax(decimal.NewFromInt(100)).StringFixed(2))
	// 119 / 1.19 = 100 exactly
	require.Equal(t, "100.00", agg.ExclTax(decimal.NewFromInt(119)).StringFixed(2))
}
