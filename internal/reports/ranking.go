package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ProductProfit is one row of the per-product profitability table, on
// tax-exclusive bases.
type ProductProfit struct {
	ProductID      int64
	Name           string
	Quantity       int64
	RevenueExclTax decimal.Decimal
	CostExclTax    decimal.Decimal
	NetProfit      decimal.Decimal
	ProfitPct      decimal.Decimal
}

// CashierRank is one row of the cashier ranking.
type CashierRank struct {
	EmployeeID int64
	Username   string
	Sales      int64
	Revenue    decimal.Decimal
	AvgTicket  decimal.Decimal
}

// Ranker computes the full profitability and cashier rankings. Top-N
// truncation belongs to the caller; the rankings themselves are never cut.
type Ranker struct {
	agg Aggregator
}

// NewRanker wires the ranker with the tax aggregator.
func NewRanker(agg Aggregator) Ranker {
	return Ranker{agg: agg}
}

// RankProducts groups line items by product and sorts by net profit
// descending. Ties resolve by ascending product ID.
func (r Ranker) RankProducts(set SaleSet) []ProductProfit {
	type tally struct {
		name    string
		qty     int64
		revenue decimal.Decimal
		cost    decimal.Decimal
	}
	byProduct := make(map[int64]*tally)
	for _, line := range set.Lines {
		t, ok := byProduct[line.ProductID]
		if !ok {
			t = &tally{name: line.ProductName}
			byProduct[line.ProductID] = t
		}
		qty := decimal.NewFromInt(line.Quantity)
		t.qty += line.Quantity
		t.revenue = t.revenue.Add(qty.Mul(line.UnitPrice))
		t.cost = t.cost.Add(qty.Mul(line.PurchasePrice))
	}

	rows := make([]ProductProfit, 0, len(byProduct))
	for id, t := range byProduct {
		row := ProductProfit{
			ProductID:      id,
			Name:           t.name,
			Quantity:       t.qty,
			RevenueExclTax: r.agg.ExclTax(t.revenue),
			CostExclTax:    r.agg.ExclTax(t.cost),
		}
		row.NetProfit = row.RevenueExclTax.Sub(row.CostExclTax)
		if row.RevenueExclTax.IsPositive() {
			row.ProfitPct = row.NetProfit.Div(row.RevenueExclTax).Mul(decimal.NewFromInt(100)).Round(2)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		cmp := rows[i].NetProfit.Cmp(rows[j].NetProfit)
		if cmp != 0 {
			return cmp > 0
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows
}

// sortByQuantity reorders profitability rows by units sold descending with
// the same product-ID tie-break, for the top-products view.
func sortByQuantity(rows []ProductProfit) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].ProductID < rows[j].ProductID
	})
}

// RankCashiers groups sales by employee and sorts by revenue descending.
// Ties resolve by ascending username.
func (r Ranker) RankCashiers(set SaleSet) []CashierRank {
	byEmployee := make(map[int64]*CashierRank)
	for _, sale := range set.Sales {
		row, ok := byEmployee[sale.EmployeeID]
		if !ok {
			row = &CashierRank{EmployeeID: sale.EmployeeID, Username: sale.Employee}
			byEmployee[sale.EmployeeID] = row
		}
		row.Sales++
		row.Revenue = row.Revenue.Add(sale.Total)
	}

	rows := make([]CashierRank, 0, len(byEmployee))
	for _, row := range byEmployee {
		if row.Sales > 0 {
			row.AvgTicket = row.Revenue.DivRound(decimal.NewFromInt(row.Sales), 2)
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		cmp := rows[i].Revenue.Cmp(rows[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return rows[i].Username < rows[j].Username
	})
	return rows
}
