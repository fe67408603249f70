package reports

import "github.com/shopspring/decimal"

// BestSeller identifies the product with the highest unit count in a window.
// Ties resolve to the lowest product ID so repeated runs agree.
type BestSeller struct {
	ProductID int64
	Name      string
	Quantity  int64
}

// KPIResult carries the scalar totals for one period.
type KPIResult struct {
	Revenue         decimal.Decimal
	RevenueExclTax  decimal.Decimal
	TaxCollected    decimal.Decimal
	COGS            decimal.Decimal
	GrossProfit     decimal.Decimal
	NetProfit       decimal.Decimal
	MarginPct       decimal.Decimal
	Transactions    int64
	Units           int64
	AvgTicket       decimal.Decimal
	AvgUnitsPerSale decimal.Decimal
	BestSeller      BestSeller
}

// Aggregator computes period KPIs. The tax rate is injected so the engine
// stays portable across tax regimes; prices and costs are tax-inclusive.
type Aggregator struct {
	taxDivisor decimal.Decimal
}

// NewAggregator builds an Aggregator for the given tax rate percentage
// (19 for the Chilean IVA).
func NewAggregator(taxRatePct decimal.Decimal) Aggregator {
	one := decimal.NewFromInt(1)
	return Aggregator{taxDivisor: one.Add(taxRatePct.Div(decimal.NewFromInt(100)))}
}

// ExclTax strips the tax component from a tax-inclusive amount, rounding
// half-up to two decimals. Net profit must be derived from per-value
// tax-exclusive bases, never by adjusting the gross figure afterwards; the
// rounding order is observable in report output.
func (a Aggregator) ExclTax(v decimal.Decimal) decimal.Decimal {
	return v.DivRound(a.taxDivisor, 2)
}

// Aggregate computes every scalar KPI over the set. Ratio denominators of
// zero produce zero results rather than errors.
func (a Aggregator) Aggregate(set SaleSet) KPIResult {
	res := KPIResult{
		Transactions: int64(len(set.Sales)),
		BestSeller:   BestSeller{Name: "N/A"},
	}

	for _, sale := range set.Sales {
		res.Revenue = res.Revenue.Add(sale.Total)
	}

	type productTally struct {
		name string
		qty  int64
	}
	tally := make(map[int64]*productTally)
	for _, line := range set.Lines {
		res.Units += line.Quantity
		res.COGS = res.COGS.Add(decimal.NewFromInt(line.Quantity).Mul(line.PurchasePrice))
		t, ok := tally[line.ProductID]
		if !ok {
			t = &productTally{name: line.ProductName}
			tally[line.ProductID] = t
		}
		t.qty += line.Quantity
	}

	res.GrossProfit = res.Revenue.Sub(res.COGS)
	if res.Revenue.IsPositive() {
		res.MarginPct = res.GrossProfit.Div(res.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	if res.Transactions > 0 {
		count := decimal.NewFromInt(res.Transactions)
		res.AvgTicket = res.Revenue.DivRound(count, 2)
		res.AvgUnitsPerSale = decimal.NewFromInt(res.Units).DivRound(count, 2)
	}

	for id, t := range tally {
		best := &res.BestSeller
		if t.qty > best.Quantity || (t.qty == best.Quantity && best.ProductID > 0 && id < best.ProductID) {
			*best = BestSeller{ProductID: id, Name: t.name, Quantity: t.qty}
		}
	}

	res.RevenueExclTax = a.ExclTax(res.Revenue)
	res.TaxCollected = res.Revenue.Sub(res.RevenueExclTax)
	res.NetProfit = res.RevenueExclTax.Sub(a.ExclTax(res.COGS))
	return res
}
