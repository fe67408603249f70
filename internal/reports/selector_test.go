package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveWindowParsesBothBounds(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	win := ResolveWindow("2025-03-01", "2025-03-10", now, time.UTC)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), win.Start)
	// A date-only end bound covers the whole closing day.
	require.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999999000, time.UTC), win.End)
}

func TestResolveWindowFallsBackPerBound(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	win := ResolveWindow("not-a-date", "2025-03-10", now, time.UTC)
	require.Equal(t, now.AddDate(0, 0, -30), win.Start)
	require.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999999000, time.UTC), win.End)

	win = ResolveWindow("2025-03-01", "31/12/2025", now, time.UTC)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), win.Start)
	require.Equal(t, now, win.End)

	win = ResolveWindow("", "", now, time.UTC)
	require.Equal(t, now.AddDate(0, 0, -30), win.Start)
	require.Equal(t, now, win.End)
}

func TestWindowPrevious(t *testing.T) {
	win := Window{
		Start: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	prev := win.Previous()
	require.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), prev.Start)
	require.True(t, prev.End.Before(win.Start), "previous window must not overlap the current one")
	require.Equal(t, win.Start.Add(-time.Nanosecond), prev.End)
}

func TestParseFilter(t *testing.T) {
	cases := []struct {
		raw  string
		want *int64
	}{
		{"", nil},
		{"todos", nil},
		{"TODOS", nil},
		{"abc", nil},
		{"3.5", nil},
		{"7", ptr(7)},
		{" 12 ", ptr(12)},
		{"-1", ptr(-1)},
	}
	for _, tc := range cases {
		got := ParseFilter(tc.raw)
		if tc.want == nil {
			require.Nil(t, got, "raw=%q", tc.raw)
			continue
		}
		require.NotNil(t, got, "raw=%q", tc.raw)
		require.Equal(t, *tc.want, *got, "raw=%q", tc.raw)
	}
}

func TestSelectInvertedWindowIsEmpty(t *testing.T) {
	store := twoProductStore()
	sel := NewSelector(store)

	win := Window{
		Start: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	set, err := sel.Select(context.Background(), win, Filters{})
	require.NoError(t, err)
	require.True(t, set.Empty())
	require.Zero(t, store.salesCalls, "inverted windows short-circuit before storage")
}

func TestSelectLoadsLinesForMatchedSales(t *testing.T) {
	store := twoProductStore()
	sel := NewSelector(store)

	set, err := sel.Select(context.Background(), testWindow(), Filters{EmployeeID: ptr(2)})
	require.NoError(t, err)
	require.Len(t, set.Sales, 1)
	require.Len(t, set.Lines, 2)
	for _, line := range set.Lines {
		require.EqualValues(t, 2, line.SaleID)
	}
}
