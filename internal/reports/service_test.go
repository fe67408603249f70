package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	sales      []Sale
	lines      []SaleLineItem
	branches   []Branch
	salesCalls int
	salesErr   error
}

func (f *fakeStore) WithSnapshot(ctx context.Context, fn func(Store) error) error {
	return fn(f)
}

func (f *fakeStore) SalesBetween(ctx context.Context, win Window, filters Filters) ([]Sale, error) {
	f.salesCalls++
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	out := make([]Sale, 0, len(f.sales))
	for _, sale := range f.sales {
		if sale.OccurredAt.Before(win.Start) || sale.OccurredAt.After(win.End) {
			continue
		}
		if filters.EmployeeID != nil && sale.EmployeeID != *filters.EmployeeID {
			continue
		}
		if filters.BranchID != nil && (sale.BranchID == nil || *sale.BranchID != *filters.BranchID) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

func (f *fakeStore) LineItemsForSales(ctx context.Context, saleIDs []int64) ([]SaleLineItem, error) {
	wanted := make(map[int64]bool, len(saleIDs))
	for _, id := range saleIDs {
		wanted[id] = true
	}
	out := make([]SaleLineItem, 0, len(f.lines))
	for _, line := range f.lines {
		if wanted[line.SaleID] {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakeStore) AllBranches(ctx context.Context) ([]Branch, error) {
	return f.branches, nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v int64) *int64 { return &v }

// twoProductStore returns a store with the canonical two-sale scenario:
// sale 1 (1x product A) on day one and sale 2 (1x A + 2x B) on day two.
func twoProductStore() *fakeStore {
	branchOne := int64(1)
	return &fakeStore{
		sales: []Sale{
			{ID: 1, OccurredAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), EmployeeID: 1, Employee: "ana", BranchID: &branchOne, Payment: PaymentCash, Total: money("2000")},
			{ID: 2, OccurredAt: time.Date(2025, 3, 11, 16, 30, 0, 0, time.UTC), EmployeeID: 2, Employee: "beto", BranchID: nil, Payment: PaymentDebit, Total: money("5000")},
		},
		lines: []SaleLineItem{
			{SaleID: 1, ProductID: 1, ProductName: "A", Quantity: 1, UnitPrice: money("2000"), PurchasePrice: money("1000")},
			{SaleID: 2, ProductID: 1, ProductName: "A", Quantity: 1, UnitPrice: money("2000"), PurchasePrice: money("1000")},
			{SaleID: 2, ProductID: 2, ProductName: "B", Quantity: 2, UnitPrice: money("1500"), PurchasePrice: money("500")},
		},
		branches: []Branch{{ID: 1, Name: "Centro"}, {ID: 2, Name: "Norte"}},
	}
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(store, NewCache(client, time.Minute), nil, ServiceConfig{Location: time.UTC})
	svc.WithNow(func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) })
	return svc
}

func TestComputeAnalyticsCaches(t *testing.T) {
	store := twoProductStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	req := ReportRequest{From: "2025-03-10", To: "2025-03-11"}
	first, err := svc.ComputeAnalytics(ctx, req)
	require.NoError(t, err)
	require.EqualValues(t, 2, first.KPIs.Transactions)
	require.Equal(t, "7000", first.KPIs.Revenue.String())
	callsAfterFirst := store.salesCalls

	second, err := svc.ComputeAnalytics(ctx, req)
	require.NoError(t, err)
	require.Equal(t, callsAfterFirst, store.salesCalls, "second call should be served from cache")
	require.Equal(t, first.ReportID, second.ReportID)

	// Bumping the version forces a recomputation.
	require.NoError(t, svc.Cache().Bump(ctx))
	third, err := svc.ComputeAnalytics(ctx, req)
	require.NoError(t, err)
	require.Greater(t, store.salesCalls, callsAfterFirst)
	require.NotEqual(t, first.ReportID, third.ReportID)
}

func TestComputeAnalyticsDefaultsWindow(t *testing.T) {
	store := twoProductStore()
	svc := newTestService(t, store)

	res, err := svc.ComputeAnalytics(context.Background(), ReportRequest{From: "garbage", To: "also-garbage"})
	require.NoError(t, err)
	// Both sales sit within the fallback last-30-days window.
	require.EqualValues(t, 2, res.KPIs.Transactions)
	require.Equal(t, time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC), res.Window.Start)
}

func TestComputeAnalyticsAppliesFilters(t *testing.T) {
	store := twoProductStore()
	svc := newTestService(t, store)

	res, err := svc.ComputeAnalytics(context.Background(), ReportRequest{
		From:    "2025-03-10",
		To:      "2025-03-11",
		Cashier: "2",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.KPIs.Transactions)
	require.Equal(t, "5000", res.KPIs.Revenue.String())

	res, err = svc.ComputeAnalytics(context.Background(), ReportRequest{
		From:    "2025-03-10",
		To:      "2025-03-11",
		Cashier: "todos",
		Branch:  "no-numerico",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.KPIs.Transactions, "sentinel and malformed filters mean unfiltered")
}

func TestComputeAnalyticsWithoutCache(t *testing.T) {
	store := twoProductStore()
	svc := NewService(store, nil, nil, ServiceConfig{Location: time.UTC})
	svc.WithNow(func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) })

	res, err := svc.ComputeAnalytics(context.Background(), ReportRequest{From: "2025-03-10", To: "2025-03-11"})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.KPIs.Transactions)
}
