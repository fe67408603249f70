package reports

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// FilterAll is the sentinel filter value meaning "no filter".
const FilterAll = "todos"

// defaultWindowDays is the fallback range when date parameters are absent or
// malformed. Garbage input degrades to a last-30-days unfiltered report
// instead of an error response.
const defaultWindowDays = 30

const dateLayout = "2006-01-02"

// Filters restricts a selection to one cashier and/or one branch.
type Filters struct {
	EmployeeID *int64
	BranchID   *int64
}

// ResolveWindow turns raw date strings into an inclusive window. A date-only
// end bound covers the entire last day (23:59:59.999999 local). Unparsable
// bounds fall back to the defaults independently of each other.
func ResolveWindow(fromStr, toStr string, now time.Time, loc *time.Location) Window {
	now = now.In(loc)

	start := now.AddDate(0, 0, -defaultWindowDays)
	if t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(fromStr), loc); err == nil {
		start = t
	}

	end := now
	if t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(toStr), loc); err == nil {
		end = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}

	return Window{Start: start, End: end}
}

// ParseFilter interprets an id filter parameter. Empty, "todos", and
// non-numeric values all mean "no filter".
func ParseFilter(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, FilterAll) {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// Selector resolves a window plus filters into the dataset every downstream
// aggregation stage reads.
type Selector struct {
	store Store
}

// NewSelector wires a Selector over the storage collaborator.
func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// Select loads the sales within the window and their line items. An inverted
// window yields an empty set rather than an error; callers that want
// validation must clamp before calling.
func (s *Selector) Select(ctx context.Context, win Window, filters Filters) (SaleSet, error) {
	set := SaleSet{Window: win}
	if win.Start.After(win.End) {
		return set, nil
	}

	sales, err := s.store.SalesBetween(ctx, win, filters)
	if err != nil {
		return SaleSet{}, err
	}
	set.Sales = sales
	if len(sales) == 0 {
		return set, nil
	}

	ids := make([]int64, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
	}
	lines, err := s.store.LineItemsForSales(ctx, ids)
	if err != nil {
		return SaleSet{}, err
	}
	set.Lines = lines
	return set, nil
}
