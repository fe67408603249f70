package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SaraMars666/MOV-OS/internal/reports"
)

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteProfitabilityCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []reports.ProductProfit{
		{
			ProductID:      1,
			Name:           "Cafe Grano 1kg",
			Quantity:       12,
			RevenueExclTax: decimal.RequireFromString("100840.34"),
			CostExclTax:    decimal.RequireFromString("50420.17"),
			NetProfit:      decimal.RequireFromString("50420.17"),
			ProfitPct:      decimal.RequireFromString("50"),
		},
	}
	require.NoError(t, WriteProfitabilityCSV(&buf, rows))

	records := parseCSV(t, &buf)
	require.Len(t, records, 2)
	require.Equal(t, []string{"Producto", "Cantidad", "Ingreso Neto", "Costo Neto", "Ganancia Neta", "Ganancia %"}, records[0])
	require.Equal(t, []string{"Cafe Grano 1kg", "12", "100840", "50420", "50420", "50.00"}, records[1])
}

func TestWriteCashierRankingCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []reports.CashierRank{
		{EmployeeID: 1, Username: "ana", Sales: 3, Revenue: decimal.RequireFromString("15000"), AvgTicket: decimal.RequireFromString("5000")},
	}
	require.NoError(t, WriteCashierRankingCSV(&buf, rows))

	records := parseCSV(t, &buf)
	require.Len(t, records, 2)
	require.Equal(t, []string{"Cajero", "Ventas", "Ingreso Total", "Ticket Promedio"}, records[0])
	require.Equal(t, []string{"ana", "3", "15000", "5000"}, records[1])
}

func TestWriteDailySeriesCSV(t *testing.T) {
	var buf bytes.Buffer
	points := []reports.DailyPoint{
		{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Revenue: decimal.RequireFromString("2000"), NetProfit: decimal.RequireFromString("840.33")},
	}
	require.NoError(t, WriteDailySeriesCSV(&buf, points))

	records := parseCSV(t, &buf)
	require.Len(t, records, 2)
	require.Equal(t, []string{"Fecha", "Ingreso", "Ganancia Neta"}, records[0])
	require.Equal(t, []string{"2025-03-10", "2000", "840"}, records[1])
}

func TestWriteBranchComparisonCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []reports.BranchComparison{
		{BranchID: 1, Name: "Centro", Revenue: decimal.RequireFromString("2000"), NetProfit: decimal.RequireFromString("840.33")},
		{Name: "Sin sucursal", Revenue: decimal.RequireFromString("5000"), NetProfit: decimal.RequireFromString("2521.01")},
	}
	require.NoError(t, WriteBranchComparisonCSV(&buf, rows))

	records := parseCSV(t, &buf)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Sucursal", "Ingreso", "Ganancia Neta"}, records[0])
	require.Equal(t, []string{"Centro", "2000", "840"}, records[1])
	require.Equal(t, []string{"Sin sucursal", "5000", "2521"}, records[2])
}

func TestEmptyTablesStillEmitHeaders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfitabilityCSV(&buf, nil))
	records := parseCSV(t, &buf)
	require.Len(t, records, 1)
}
