package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the read-only storage collaborator the engine consumes. It never
// exposes writes; every query sees at least per-query consistency, and
// WithSnapshot upgrades a whole computation to one consistent snapshot.
type Store interface {
	WithSnapshot(ctx context.Context, fn func(Store) error) error
	SalesBetween(ctx context.Context, win Window, filters Filters) ([]Sale, error)
	LineItemsForSales(ctx context.Context, saleIDs []int64) ([]SaleLineItem, error)
	AllBranches(ctx context.Context) ([]Branch, error)
}

// ReportRequest carries the raw request parameters of one analytics call.
// Every field is permissive: malformed dates default to the last 30 days and
// malformed filters mean "unfiltered" (spec'd fallback-over-rejection).
type ReportRequest struct {
	From        string
	To          string
	Cashier     string
	Branch      string
	CompareFrom string
	CompareTo   string
}

// AnalyticsResult bundles everything the reporting consumers render: scalar
// KPIs, the four dimensional breakdowns, both rankings, and the comparative
// block. It is ephemeral; nothing here is persisted.
type AnalyticsResult struct {
	ReportID      uuid.UUID
	GeneratedAt   time.Time
	Window        Window
	Filters       Filters
	KPIs          KPIResult
	Breakdowns    Breakdowns
	Profitability []ProductProfit
	Cashiers      []CashierRank
	Comparative   Comparative
}

// ServiceConfig tunes the engine.
type ServiceConfig struct {
	// TaxRatePct is the IVA percentage embedded in all prices (19 in Chile).
	TaxRatePct decimal.Decimal
	// Location is the reporting timezone for calendar grouping.
	Location *time.Location
}

// Service coordinates the aggregation stages over one logical time window:
// selector, then KPI aggregation, dimensional breakdowns and rankings over
// the same filtered set, then the comparative engine on the shifted window.
type Service struct {
	store   Store
	cache   *Cache
	logger  *slog.Logger
	agg     Aggregator
	builder BreakdownBuilder
	ranker  Ranker
	loc     *time.Location
	now     func() time.Time
}

// NewService wires the analytics engine.
func NewService(store Store, cache *Cache, logger *slog.Logger, cfg ServiceConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	rate := cfg.TaxRatePct
	if rate.IsZero() {
		rate = decimal.NewFromInt(19)
	}
	agg := NewAggregator(rate)
	return &Service{
		store:   store,
		cache:   cache,
		logger:  logger,
		agg:     agg,
		builder: NewBreakdownBuilder(agg, loc),
		ranker:  NewRanker(agg),
		loc:     loc,
		now:     time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Cache exposes the cache helper for invalidation hooks.
func (s *Service) Cache() *Cache { return s.cache }

// Location exposes the reporting timezone.
func (s *Service) Location() *time.Location { return s.loc }

// ComputeAnalytics resolves the request into a window plus filters and runs
// the full aggregation pipeline, serving from the report cache when possible.
func (s *Service) ComputeAnalytics(ctx context.Context, req ReportRequest) (*AnalyticsResult, error) {
	win := ResolveWindow(req.From, req.To, s.now(), s.loc)
	filters := Filters{
		EmployeeID: ParseFilter(req.Cashier),
		BranchID:   ParseFilter(req.Branch),
	}

	loader := func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, win, filters, req)
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.(*AnalyticsResult), nil
	}

	key, err := s.cache.BuildKey(ctx, keyAnalytics(win, filters, req.CompareFrom, req.CompareTo)...)
	if err != nil {
		return nil, err
	}
	var result AnalyticsResult
	if err := s.cache.FetchJSON(ctx, key, &result, loader); err != nil {
		return nil, err
	}
	return &result, nil
}

// compute runs the pipeline inside one consistent read snapshot. The stages
// themselves are pure; they only read the selected set.
func (s *Service) compute(ctx context.Context, win Window, filters Filters, req ReportRequest) (*AnalyticsResult, error) {
	result := &AnalyticsResult{
		ReportID:    uuid.New(),
		GeneratedAt: s.now(),
		Window:      win,
		Filters:     filters,
	}

	err := s.store.WithSnapshot(ctx, func(store Store) error {
		selector := NewSelector(store)
		set, err := selector.Select(ctx, win, filters)
		if err != nil {
			return err
		}
		branches, err := store.AllBranches(ctx)
		if err != nil {
			return err
		}

		result.KPIs = s.agg.Aggregate(set)
		result.Breakdowns = s.builder.Build(set, branches)
		result.Profitability = s.ranker.RankProducts(set)
		result.Cashiers = s.ranker.RankCashiers(set)

		comparator := NewComparator(selector, s.agg, s.loc)
		cmp, err := comparator.Compare(ctx, result.KPIs, win, filters, req.CompareFrom, req.CompareTo)
		if err != nil {
			return err
		}
		result.Comparative = cmp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("analytics computed",
			slog.String("report_id", result.ReportID.String()),
			slog.Time("from", win.Start),
			slog.Time("to", win.End),
			slog.Int64("transactions", result.KPIs.Transactions),
		)
	}
	return result, nil
}
