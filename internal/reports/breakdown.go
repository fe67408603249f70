package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// HoursPerDay and DaysPerWeek fix the dense grid dimensions of the hourly
// distribution and the weekday heatmap.
const (
	HoursPerDay = 24
	DaysPerWeek = 7
)

// waveSegments is the number of equal sub-ranges the profit wave splits the
// window into.
const waveSegments = 6

// DailyPoint is one calendar day with at least one sale. Days without sales
// are not emitted; the charting layer draws the gaps itself.
type DailyPoint struct {
	Date      time.Time
	Revenue   decimal.Decimal
	NetProfit decimal.Decimal
}

// HourBucket aggregates sales landing in one hour of the day, 0..23.
type HourBucket struct {
	Hour    int
	Count   int64
	Revenue decimal.Decimal
}

// HeatCell is one weekday-by-hour cell. Weekday 0 is Monday.
type HeatCell struct {
	Count   int64
	Revenue decimal.Decimal
}

// BranchComparison holds per-branch revenue and net profit, including
// branches with no activity in the window.
type BranchComparison struct {
	BranchID  int64
	Name      string
	Revenue   decimal.Decimal
	NetProfit decimal.Decimal
}

// PaymentBreakdown sums sales per tender type.
type PaymentBreakdown struct {
	Method PaymentMethod
	Count  int64
	Amount decimal.Decimal
}

// WavePoint is one of six equal window segments with its net profit.
type WavePoint struct {
	Label string
	Gain  decimal.Decimal
}

// Breakdowns bundles every grouped view of one window.
type Breakdowns struct {
	Daily    []DailyPoint
	Hourly   [HoursPerDay]HourBucket
	Heatmap  [DaysPerWeek][HoursPerDay]HeatCell
	Branches []BranchComparison
	Payments []PaymentBreakdown
	Wave     []WavePoint
}

// BreakdownBuilder derives the dimensional groupings. All groupings read the
// same filtered set and none depends on another's output.
type BreakdownBuilder struct {
	agg Aggregator
	loc *time.Location
}

// NewBreakdownBuilder wires the builder with the tax aggregator and the
// reporting timezone used for calendar grouping.
func NewBreakdownBuilder(agg Aggregator, loc *time.Location) BreakdownBuilder {
	return BreakdownBuilder{agg: agg, loc: loc}
}

// Build computes every breakdown over the set. The branch enumeration lists
// every known branch even with zero sales; an extra unassigned row appears
// only when unassigned sales exist.
func (b BreakdownBuilder) Build(set SaleSet, branches []Branch) Breakdowns {
	out := Breakdowns{}

	saleDay := make(map[int64]time.Time, len(set.Sales))
	saleBranch := make(map[int64]int64, len(set.Sales))

	type moneyPair struct {
		revenue decimal.Decimal
		cogs    decimal.Decimal
	}
	byDay := make(map[time.Time]*moneyPair)
	byBranch := make(map[int64]*moneyPair)
	byPayment := make(map[PaymentMethod]*PaymentBreakdown)

	for i := range out.Hourly {
		out.Hourly[i].Hour = i
	}

	for _, sale := range set.Sales {
		local := sale.OccurredAt.In(b.loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, b.loc)
		saleDay[sale.ID] = day

		pair, ok := byDay[day]
		if !ok {
			pair = &moneyPair{}
			byDay[day] = pair
		}
		pair.revenue = pair.revenue.Add(sale.Total)

		hour := local.Hour()
		out.Hourly[hour].Count++
		out.Hourly[hour].Revenue = out.Hourly[hour].Revenue.Add(sale.Total)

		weekday := (int(local.Weekday()) + 6) % DaysPerWeek // Monday first
		cell := &out.Heatmap[weekday][hour]
		cell.Count++
		cell.Revenue = cell.Revenue.Add(sale.Total)

		branchID := int64(0)
		if sale.BranchID != nil {
			branchID = *sale.BranchID
		}
		saleBranch[sale.ID] = branchID
		bp, ok := byBranch[branchID]
		if !ok {
			bp = &moneyPair{}
			byBranch[branchID] = bp
		}
		bp.revenue = bp.revenue.Add(sale.Total)

		pm, ok := byPayment[sale.Payment]
		if !ok {
			pm = &PaymentBreakdown{Method: sale.Payment}
			byPayment[sale.Payment] = pm
		}
		pm.Count++
		pm.Amount = pm.Amount.Add(sale.Total)
	}

	for _, line := range set.Lines {
		cost := decimal.NewFromInt(line.Quantity).Mul(line.PurchasePrice)
		if day, ok := saleDay[line.SaleID]; ok {
			byDay[day].cogs = byDay[day].cogs.Add(cost)
		}
		if branchID, ok := saleBranch[line.SaleID]; ok {
			byBranch[branchID].cogs = byBranch[branchID].cogs.Add(cost)
		}
	}

	out.Daily = make([]DailyPoint, 0, len(byDay))
	for day, pair := range byDay {
		out.Daily = append(out.Daily, DailyPoint{
			Date:      day,
			Revenue:   pair.revenue,
			NetProfit: b.netProfit(pair.revenue, pair.cogs),
		})
	}
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].Date.Before(out.Daily[j].Date) })

	out.Branches = make([]BranchComparison, 0, len(branches)+1)
	for _, branch := range branches {
		row := BranchComparison{BranchID: branch.ID, Name: branch.Name}
		if pair, ok := byBranch[branch.ID]; ok {
			row.Revenue = pair.revenue
			row.NetProfit = b.netProfit(pair.revenue, pair.cogs)
		}
		out.Branches = append(out.Branches, row)
	}
	if pair, ok := byBranch[0]; ok {
		out.Branches = append(out.Branches, BranchComparison{
			Name:      "Sin sucursal",
			Revenue:   pair.revenue,
			NetProfit: b.netProfit(pair.revenue, pair.cogs),
		})
	}

	for _, method := range []PaymentMethod{PaymentCash, PaymentDebit, PaymentCredit, PaymentTransfer} {
		if pm, ok := byPayment[method]; ok {
			out.Payments = append(out.Payments, *pm)
		}
	}

	out.Wave = b.wave(set)
	return out
}

// netProfit applies the tax-exclusion-then-subtraction order per grouped
// value, mirroring the scalar KPI computation.
func (b BreakdownBuilder) netProfit(revenue, cogs decimal.Decimal) decimal.Decimal {
	return b.agg.ExclTax(revenue).Sub(b.agg.ExclTax(cogs))
}

// wave splits the window into six equal segments and reports the net profit
// earned in each, labelled by segment start date.
func (b BreakdownBuilder) wave(set SaleSet) []WavePoint {
	points := make([]WavePoint, waveSegments)
	span := set.Window.Duration()
	if span <= 0 {
		for i := range points {
			points[i].Label = set.Window.Start.In(b.loc).Format(dateLayout)
		}
		return points
	}
	segment := span / waveSegments

	starts := make([]time.Time, waveSegments)
	for i := range points {
		starts[i] = set.Window.Start.Add(time.Duration(i) * segment)
		points[i].Label = starts[i].In(b.loc).Format(dateLayout)
	}

	revenue := make([]decimal.Decimal, waveSegments)
	cogs := make([]decimal.Decimal, waveSegments)
	saleSegment := make(map[int64]int, len(set.Sales))
	for _, sale := range set.Sales {
		idx := int(sale.OccurredAt.Sub(set.Window.Start) / segment)
		if idx < 0 {
			idx = 0
		}
		if idx >= waveSegments {
			idx = waveSegments - 1
		}
		saleSegment[sale.ID] = idx
		revenue[idx] = revenue[idx].Add(sale.Total)
	}
	for _, line := range set.Lines {
		if idx, ok := saleSegment[line.SaleID]; ok {
			cogs[idx] = cogs[idx].Add(decimal.NewFromInt(line.Quantity).Mul(line.PurchasePrice))
		}
	}
	for i := range points {
		points[i].Gain = b.netProfit(revenue[i], cogs[i])
	}
	return points
}
