package reports

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/SaraMars666/MOV-OS/internal/clp"
)

func marshalRow(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &row))
	return row
}

func TestBuildPayloadKeepsZeroProfitKeys(t *testing.T) {
	res := &AnalyticsResult{
		ReportID: uuid.New(),
		Profitability: []ProductProfit{
			{ProductID: 1, Name: "BreakEven", Quantity: 2, RevenueExclTax: money("1000"), NetProfit: money("0"), ProfitPct: money("0")},
		},
	}

	payload := BuildPayload(res, clp.DefaultConvention(), 10)
	require.Len(t, payload.Products, 1)

	row := marshalRow(t, payload.Products[0])
	require.Contains(t, row, "ganancia_neta_total")
	require.Contains(t, row, "porcentaje")
	require.Equal(t, float64(0), row["ganancia_neta_total"])
	require.Equal(t, float64(0), row["porcentaje"])
	require.Equal(t, "$0", row["ganancia_neta_clp"])
}

func TestBuildPayloadCashierUsesAvgTicketKeys(t *testing.T) {
	res := &AnalyticsResult{
		ReportID: uuid.New(),
		Cashiers: []CashierRank{
			{EmployeeID: 4, Username: "ana", Sales: 2, Revenue: money("7000"), AvgTicket: money("3500")},
		},
	}

	payload := BuildPayload(res, clp.DefaultConvention(), 10)
	require.Len(t, payload.Cashiers, 1)

	row := marshalRow(t, payload.Cashiers[0])
	require.Equal(t, float64(3500), row["ticket_promedio"])
	require.Equal(t, "$3.500", row["ticket_promedio_clp"])
	require.NotContains(t, row, "ganancia_neta_total")
	require.NotContains(t, row, "ganancia_neta_clp")
}
