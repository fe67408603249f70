package reports

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/SaraMars666/MOV-OS/internal/shared"
)

const salesHistoryPerPage = 8

var sessionPerPageOptions = []int{5, 10, 15, 20}

// HistoryStore lists raw transactional records for the history screens.
type HistoryStore interface {
	SalesHistory(ctx context.Context, win Window, filters Filters, limit, offset int) ([]Sale, int, error)
	CashSessions(ctx context.Context, q SessionQuery, limit, offset int) ([]CashSession, int, error)
}

// SessionQuery filters the register-session history.
type SessionQuery struct {
	SessionID *int64
	Cashier   string
	From      *time.Time
	To        *time.Time
}

// HistoryRequest carries raw listing parameters. Parsing is permissive like
// the analytics request: bad values fall back to defaults.
type HistoryRequest struct {
	From      string
	To        string
	Cashier   string
	SessionID string
	Page      string
	PerPage   string
}

// SalesHistoryPage is one page of the sales listing.
type SalesHistoryPage struct {
	Sales      []Sale
	Pagination shared.Pagination
}

// CashSessionPage is one page of the register-session listing.
type CashSessionPage struct {
	Sessions   []CashSession
	Pagination shared.Pagination
}

// HistoryService serves the paginated report listings.
type HistoryService struct {
	store HistoryStore
	loc   *time.Location
	now   func() time.Time
}

// NewHistoryService wires the listing service.
func NewHistoryService(store HistoryStore, loc *time.Location) *HistoryService {
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{store: store, loc: loc, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *HistoryService) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// ListSales returns sales in the window ordered most recent first.
func (s *HistoryService) ListSales(ctx context.Context, req HistoryRequest) (SalesHistoryPage, error) {
	win := ResolveWindow(req.From, req.To, s.now(), s.loc)
	filters := Filters{EmployeeID: ParseFilter(req.Cashier)}
	page := parsePage(req.Page)

	sales, total, err := s.store.SalesHistory(ctx, win, filters, salesHistoryPerPage, (page-1)*salesHistoryPerPage)
	if err != nil {
		return SalesHistoryPage{}, err
	}
	return SalesHistoryPage{
		Sales:      sales,
		Pagination: shared.NewPagination(page, salesHistoryPerPage, total),
	}, nil
}

// ListCashSessions returns register sessions ordered by opening time
// descending. Closed sessions missing a counted closing amount get it derived
// from the opening float plus cash sales minus change handed out.
func (s *HistoryService) ListCashSessions(ctx context.Context, req HistoryRequest) (CashSessionPage, error) {
	q := SessionQuery{
		SessionID: ParseFilter(req.SessionID),
		Cashier:   strings.TrimSpace(req.Cashier),
	}
	if t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.From), s.loc); err == nil {
		q.From = &t
	}
	if t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.To), s.loc); err == nil {
		end := t.AddDate(0, 0, 1).Add(-time.Microsecond)
		q.To = &end
	}

	page := parsePage(req.Page)
	perPage := parsePerPage(req.PerPage)

	sessions, total, err := s.store.CashSessions(ctx, q, perPage, (page-1)*perPage)
	if err != nil {
		return CashSessionPage{}, err
	}
	for i := range sessions {
		sess := &sessions[i]
		if sess.Status == "cerrada" && sess.FinalCash.IsZero() {
			sess.FinalCash = sess.InitialCash.Add(sess.CashSales).Sub(sess.ChangeGiven)
		}
	}
	return CashSessionPage{
		Sessions:   sessions,
		Pagination: shared.NewPagination(page, perPage, total),
	}, nil
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parsePerPage(raw string) int {
	perPage, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 10
	}
	for _, opt := range sessionPerPageOptions {
		if perPage == opt {
			return perPage
		}
	}
	return 10
}
