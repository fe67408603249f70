package reports

import (
	"time"

	"github.com/SaraMars666/MOV-OS/internal/clp"
)

// Payload is the machine-readable form of an AnalyticsResult: raw numerics
// for charting plus CLP-formatted strings for direct display. Field names
// match the dashboard contract.
type Payload struct {
	ReportID    string         `json:"report_id"`
	GeneratedAt time.Time      `json:"generado_en"`
	Range       RangeMeta      `json:"rango"`
	KPIs        KPIsVM         `json:"kpis"`
	Comparative CompareVM      `json:"comparativo"`
	CompareMeta MetaVM         `json:"comparativo_meta"`
	Series      SeriesVM       `json:"series"`
	Products    []ProductRowVM `json:"rentabilidad_productos"`
	Cashiers    []CashierRowVM `json:"ranking_cajeros"`
	TopProducts []TopProductVM `json:"top_selling_products"`
	Payments    []PaymentRowVM `json:"ventas_por_forma_pago"`
	Branches    []BranchRowVM  `json:"comparacion_sucursales"`
	Heatmap     [][]CellVM     `json:"heatmap"`
}

// RangeMeta echoes the resolved window back to the caller.
type RangeMeta struct {
	From string `json:"fecha_inicio"`
	To   string `json:"fecha_fin"`
}

// KPIsVM carries every scalar KPI in raw and formatted form.
type KPIsVM struct {
	Revenue           float64 `json:"ingreso_total"`
	RevenueCLP        string  `json:"ingreso_total_clp"`
	RevenueExclTax    float64 `json:"ingreso_neto"`
	RevenueExclTaxCLP string  `json:"ingreso_neto_clp"`
	TaxCollected      float64 `json:"iva_recaudado"`
	TaxCollectedCLP   string  `json:"iva_recaudado_clp"`
	COGS              float64 `json:"cmv"`
	COGSCLP           string  `json:"cmv_clp"`
	GrossProfit       float64 `json:"ganancia_bruta"`
	GrossProfitCLP    string  `json:"ganancia_bruta_clp"`
	NetProfit         float64 `json:"ganancia_neta"`
	NetProfitCLP      string  `json:"ganancia_neta_clp"`
	MarginPct         float64 `json:"margen"`
	MarginPctFmt      string  `json:"margen_fmt"`
	Transactions      int64   `json:"num_transacciones"`
	Units             int64   `json:"total_unidades"`
	AvgTicket         float64 `json:"ticket_promedio"`
	AvgTicketCLP      string  `json:"ticket_promedio_clp"`
	AvgUnitsPerSale   float64 `json:"unidades_promedio"`
	BestSeller        string  `json:"best_selling_product"`
	BestSellerQty     int64   `json:"best_selling_quantity"`
}

// DeltaVM is one metric of the comparative block.
type DeltaVM struct {
	Current  float64 `json:"actual"`
	Previous float64 `json:"anterior"`
	Delta    float64 `json:"delta"`
	Pct      float64 `json:"variacion_pct"`
}

// CompareVM holds the four compared metrics.
type CompareVM struct {
	Revenue      DeltaVM `json:"ingreso"`
	NetProfit    DeltaVM `json:"ganancia_neta"`
	Transactions DeltaVM `json:"transacciones"`
	Margin       DeltaVM `json:"margen"`
}

// MetaVM describes the comparison window and flattened deltas kept for the
// dashboard's data attributes.
type MetaVM struct {
	Custom            bool    `json:"comparativo_custom"`
	From              string  `json:"comparativo_inicio"`
	To                string  `json:"comparativo_fin"`
	RevenueDelta      float64 `json:"ingreso_delta"`
	NetProfitDelta    float64 `json:"ganancia_neta_delta"`
	TransactionsDelta float64 `json:"transacciones_delta"`
	MarginDelta       float64 `json:"margen_delta"`
	RevenueSharePct   float64 `json:"participacion_ingreso_pct"`
	NetProfitSharePct float64 `json:"participacion_ganancia_pct"`
}

// SeriesVM groups the chart-oriented sequences.
type SeriesVM struct {
	DailyLabels  []string  `json:"daily_labels"`
	DailyRevenue []float64 `json:"daily_revenue"`
	DailyProfit  []float64 `json:"daily_profit"`
	HourLabels   []int     `json:"hour_labels"`
	HourCounts   []int64   `json:"hour_counts"`
	HourRevenue  []float64 `json:"hour_revenue"`
	WaveLabels   []string  `json:"wave_labels"`
	WaveGains    []float64 `json:"wave_gains"`
}

// ProductRowVM is one profitability table row. Zero is a legitimate value
// for every numeric field (a break-even product, 0% on zero revenue), so
// none of them may be omitted.
type ProductRowVM struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Quantity int64   `json:"cantidad"`
	Amount   float64 `json:"monto"`
	AmountF  string  `json:"monto_clp"`
	Profit   float64 `json:"ganancia_neta_total"`
	ProfitF  string  `json:"ganancia_neta_clp"`
	Pct      float64 `json:"porcentaje"`
}

// CashierRowVM is one cashier ranking row.
type CashierRowVM struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Sales      int64   `json:"cantidad"`
	Amount     float64 `json:"monto"`
	AmountF    string  `json:"monto_clp"`
	AvgTicket  float64 `json:"ticket_promedio"`
	AvgTicketF string  `json:"ticket_promedio_clp"`
}

// TopProductVM is one row of the top-sellers ranking.
type TopProductVM struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Quantity int64   `json:"cantidad"`
	Amount   float64 `json:"monto"`
	AmountF  string  `json:"monto_clp"`
}

// PaymentRowVM is one payment-method breakdown row.
type PaymentRowVM struct {
	Label    string  `json:"label"`
	Quantity int64   `json:"cantidad"`
	Amount   float64 `json:"monto"`
	AmountF  string  `json:"monto_clp"`
}

// BranchRowVM is one branch comparison row. The unassigned row carries a
// zero ID.
type BranchRowVM struct {
	ID      int64   `json:"id"`
	Label   string  `json:"label"`
	Amount  float64 `json:"monto"`
	AmountF string  `json:"monto_clp"`
	Profit  float64 `json:"ganancia_neta_total"`
	ProfitF string  `json:"ganancia_neta_clp"`
}

// CellVM is one heatmap cell.
type CellVM struct {
	Count   int64   `json:"ventas"`
	Revenue float64 `json:"monto"`
}

// BuildPayload flattens an AnalyticsResult for the JSON endpoint. topN
// truncates only the top-products slice; the profitability and cashier
// tables stay complete.
func BuildPayload(res *AnalyticsResult, conv clp.Convention, topN int) Payload {
	p := Payload{
		ReportID:    res.ReportID.String(),
		GeneratedAt: res.GeneratedAt,
		Range: RangeMeta{
			From: res.Window.Start.Format(dateLayout),
			To:   res.Window.End.Format(dateLayout),
		},
	}

	k := res.KPIs
	p.KPIs = KPIsVM{
		Revenue:           k.Revenue.InexactFloat64(),
		RevenueCLP:        conv.Money(k.Revenue),
		RevenueExclTax:    k.RevenueExclTax.InexactFloat64(),
		RevenueExclTaxCLP: conv.Money(k.RevenueExclTax),
		TaxCollected:      k.TaxCollected.InexactFloat64(),
		TaxCollectedCLP:   conv.Money(k.TaxCollected),
		COGS:              k.COGS.InexactFloat64(),
		COGSCLP:           conv.Money(k.COGS),
		GrossProfit:       k.GrossProfit.InexactFloat64(),
		GrossProfitCLP:    conv.Money(k.GrossProfit),
		NetProfit:         k.NetProfit.InexactFloat64(),
		NetProfitCLP:      conv.Money(k.NetProfit),
		MarginPct:         k.MarginPct.InexactFloat64(),
		MarginPctFmt:      conv.Percent(k.MarginPct),
		Transactions:      k.Transactions,
		Units:             k.Units,
		AvgTicket:         k.AvgTicket.InexactFloat64(),
		AvgTicketCLP:      conv.Money(k.AvgTicket),
		AvgUnitsPerSale:   k.AvgUnitsPerSale.InexactFloat64(),
		BestSeller:        k.BestSeller.Name,
		BestSellerQty:     k.BestSeller.Quantity,
	}

	cmp := res.Comparative
	p.Comparative = CompareVM{
		Revenue:      deltaVM(cmp.Revenue),
		NetProfit:    deltaVM(cmp.NetProfit),
		Transactions: deltaVM(cmp.Transactions),
		Margin:       deltaVM(cmp.Margin),
	}
	p.CompareMeta = MetaVM{
		Custom:            cmp.Custom,
		From:              cmp.Window.Start.Format(dateLayout),
		To:                cmp.Window.End.Format(dateLayout),
		RevenueDelta:      cmp.Revenue.Delta.InexactFloat64(),
		NetProfitDelta:    cmp.NetProfit.Delta.InexactFloat64(),
		TransactionsDelta: cmp.Transactions.Delta.InexactFloat64(),
		MarginDelta:       cmp.Margin.Delta.InexactFloat64(),
		RevenueSharePct:   cmp.RevenueSharePct.InexactFloat64(),
		NetProfitSharePct: cmp.NetProfitSharePct.InexactFloat64(),
	}

	b := res.Breakdowns
	for _, day := range b.Daily {
		p.Series.DailyLabels = append(p.Series.DailyLabels, day.Date.Format(dateLayout))
		p.Series.DailyRevenue = append(p.Series.DailyRevenue, day.Revenue.InexactFloat64())
		p.Series.DailyProfit = append(p.Series.DailyProfit, day.NetProfit.InexactFloat64())
	}
	for _, bucket := range b.Hourly {
		p.Series.HourLabels = append(p.Series.HourLabels, bucket.Hour)
		p.Series.HourCounts = append(p.Series.HourCounts, bucket.Count)
		p.Series.HourRevenue = append(p.Series.HourRevenue, bucket.Revenue.InexactFloat64())
	}
	for _, point := range b.Wave {
		p.Series.WaveLabels = append(p.Series.WaveLabels, point.Label)
		p.Series.WaveGains = append(p.Series.WaveGains, point.Gain.InexactFloat64())
	}

	p.Heatmap = make([][]CellVM, DaysPerWeek)
	for wd := range b.Heatmap {
		row := make([]CellVM, HoursPerDay)
		for h, cell := range b.Heatmap[wd] {
			row[h] = CellVM{Count: cell.Count, Revenue: cell.Revenue.InexactFloat64()}
		}
		p.Heatmap[wd] = row
	}

	for _, branch := range b.Branches {
		p.Branches = append(p.Branches, BranchRowVM{
			ID:      branch.BranchID,
			Label:   branch.Name,
			Amount:  branch.Revenue.InexactFloat64(),
			AmountF: conv.Money(branch.Revenue),
			Profit:  branch.NetProfit.InexactFloat64(),
			ProfitF: conv.Money(branch.NetProfit),
		})
	}
	for _, pm := range b.Payments {
		p.Payments = append(p.Payments, PaymentRowVM{
			Label:    string(pm.Method),
			Quantity: pm.Count,
			Amount:   pm.Amount.InexactFloat64(),
			AmountF:  conv.Money(pm.Amount),
		})
	}

	for _, prod := range res.Profitability {
		p.Products = append(p.Products, ProductRowVM{
			ID:       prod.ProductID,
			Label:    prod.Name,
			Quantity: prod.Quantity,
			Amount:   prod.RevenueExclTax.InexactFloat64(),
			AmountF:  conv.Money(prod.RevenueExclTax),
			Profit:   prod.NetProfit.InexactFloat64(),
			ProfitF:  conv.Money(prod.NetProfit),
			Pct:      prod.ProfitPct.InexactFloat64(),
		})
	}
	for _, cashier := range res.Cashiers {
		p.Cashiers = append(p.Cashiers, CashierRowVM{
			ID:         cashier.EmployeeID,
			Label:      cashier.Username,
			Sales:      cashier.Sales,
			Amount:     cashier.Revenue.InexactFloat64(),
			AmountF:    conv.Money(cashier.Revenue),
			AvgTicket:  cashier.AvgTicket.InexactFloat64(),
			AvgTicketF: conv.Money(cashier.AvgTicket),
		})
	}

	p.TopProducts = topProducts(res.Profitability, conv, topN)
	return p
}

// topProducts ranks by quantity sold descending; ties keep the profitability
// order (product ID ascending).
func topProducts(products []ProductProfit, conv clp.Convention, topN int) []TopProductVM {
	if topN <= 0 {
		topN = 10
	}
	ranked := make([]ProductProfit, len(products))
	copy(ranked, products)
	sortByQuantity(ranked)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	rows := make([]TopProductVM, 0, len(ranked))
	for _, prod := range ranked {
		rows = append(rows, TopProductVM{
			ID:       prod.ProductID,
			Label:    prod.Name,
			Quantity: prod.Quantity,
			Amount:   prod.RevenueExclTax.InexactFloat64(),
			AmountF:  conv.Money(prod.RevenueExclTax),
		})
	}
	return rows
}

func deltaVM(d MetricDelta) DeltaVM {
	return DeltaVM{
		Current:  d.Current.InexactFloat64(),
		Previous: d.Previous.InexactFloat64(),
		Delta:    d.Delta.InexactFloat64(),
		Pct:      d.PctChange.InexactFloat64(),
	}
}
