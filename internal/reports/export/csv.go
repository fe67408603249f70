// Package export flattens AnalyticsResult sub-collections into CSV documents
// for the download endpoints.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/SaraMars666/MOV-OS/internal/reports"
)

// WriteProfitabilityCSV serialises the per-product profitability table.
func WriteProfitabilityCSV(w io.Writer, rows []reports.ProductProfit) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Producto", "Cantidad", "Ingreso Neto", "Costo Neto", "Ganancia Neta", "Ganancia %"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Name,
			strconv.FormatInt(row.Quantity, 10),
			pesos(row.RevenueExclTax),
			pesos(row.CostExclTax),
			pesos(row.NetProfit),
			row.ProfitPct.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCashierRankingCSV serialises the cashier ranking.
func WriteCashierRankingCSV(w io.Writer, rows []reports.CashierRank) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Cajero", "Ventas", "Ingreso Total", "Ticket Promedio"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Username,
			strconv.FormatInt(row.Sales, 10),
			pesos(row.Revenue),
			pesos(row.AvgTicket),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDailySeriesCSV serialises the daily revenue/profit series.
func WriteDailySeriesCSV(w io.Writer, points []reports.DailyPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Fecha", "Ingreso", "Ganancia Neta"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Date.Format("2006-01-02"),
			pesos(point.Revenue),
			pesos(point.NetProfit),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBranchComparisonCSV serialises the per-branch comparison.
func WriteBranchComparisonCSV(w io.Writer, rows []reports.BranchComparison) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Sucursal", "Ingreso", "Ganancia Neta"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Name,
			pesos(row.Revenue),
			pesos(row.NetProfit),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// pesos renders integer peso amounts; CLP has no decimal subunits.
func pesos(v decimal.Decimal) string {
	return v.Round(0).String()
}
