// Package reports implements the sales-analytics aggregation engine behind
// the advanced-reports dashboard and its JSON/CSV export endpoints.
package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the accepted tender types on a sale.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentDebit    PaymentMethod = "debito"
	PaymentCredit   PaymentMethod = "credito"
	PaymentTransfer PaymentMethod = "transferencia"
)

// Sale is a read-only view of a completed register transaction. Totals are
// tax-inclusive pesos; the timestamp is immutable once captured.
type Sale struct {
	ID         int64
	OccurredAt time.Time
	EmployeeID int64
	Employee   string
	BranchID   *int64
	Payment    PaymentMethod
	Total      decimal.Decimal
}

// SaleLineItem is one product line of a sale. UnitPrice is the historical
// price at the moment of sale, not the live product price.
type SaleLineItem struct {
	SaleID        int64
	ProductID     int64
	ProductName   string
	Quantity      int64
	UnitPrice     decimal.Decimal
	PurchasePrice decimal.Decimal
}

// Branch is a grouping key for per-branch comparisons. Sales without a branch
// assignment group under the zero-ID placeholder.
type Branch struct {
	ID   int64
	Name string
}

// CashSession mirrors a register open/close record for the history listing.
type CashSession struct {
	ID          int64
	Cashier     string
	Branch      string
	Status      string
	OpenedAt    time.Time
	ClosedAt    *time.Time
	InitialCash decimal.Decimal
	CashSales   decimal.Decimal
	ChangeGiven decimal.Decimal
	FinalCash   decimal.Decimal
	TotalSales  decimal.Decimal
}

// SaleSet is the filtered dataset one analytics computation runs over. Line
// items carry their product cost snapshot; a deleted product is represented
// with a placeholder name and zero purchase price.
type SaleSet struct {
	Window Window
	Sales  []Sale
	Lines  []SaleLineItem
}

// Empty reports whether the set holds no sales.
func (s SaleSet) Empty() bool { return len(s.Sales) == 0 }

// Window is an inclusive, timezone-aware time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Previous derives the immediately preceding window of identical duration,
// end-exclusive against Start so the two never overlap.
func (w Window) Previous() Window {
	d := w.Duration()
	return Window{Start: w.Start.Add(-d), End: w.Start.Add(-time.Nanosecond)}
}
