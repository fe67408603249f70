// Package reporthttp exposes the advanced-reports JSON and CSV endpoints.
package reporthttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/SaraMars666/MOV-OS/internal/clp"
	"github.com/SaraMars666/MOV-OS/internal/platform/httpx"
	"github.com/SaraMars666/MOV-OS/internal/reports"
	"github.com/SaraMars666/MOV-OS/internal/reports/export"
	"github.com/SaraMars666/MOV-OS/internal/shared"
)

const requestTimeout = 5 * time.Second

const defaultTopN = 10

// AnalyticsService defines the report computation contract used by the handler.
type AnalyticsService interface {
	ComputeAnalytics(ctx context.Context, req reports.ReportRequest) (*reports.AnalyticsResult, error)
}

// HistoryService defines the listing contract for the history endpoints.
type HistoryService interface {
	ListSales(ctx context.Context, req reports.HistoryRequest) (reports.SalesHistoryPage, error)
	ListCashSessions(ctx context.Context, req reports.HistoryRequest) (reports.CashSessionPage, error)
}

// Handler coordinates HTTP requests for the reporting surface.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	history HistoryService
	conv    clp.Convention
	group   singleflight.Group
	csvPool sync.Pool
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService, history HistoryService, conv clp.Convention) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		history: history,
		conv:    conv,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// parseReportRequest lifts the raw query parameters. No validation happens
// here: the engine degrades malformed input to defaults by contract.
func parseReportRequest(r *http.Request) reports.ReportRequest {
	q := r.URL.Query()
	return reports.ReportRequest{
		From:        q.Get("fecha_inicio"),
		To:          q.Get("fecha_fin"),
		Cashier:     q.Get("empleado"),
		Branch:      q.Get("sucursal"),
		CompareFrom: q.Get("comparativo_inicio"),
		CompareTo:   q.Get("comparativo_fin"),
	}
}

func parseTopN(r *http.Request) int {
	topN, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("top")))
	if err != nil || topN <= 0 {
		return defaultTopN
	}
	return topN
}

// compute deduplicates concurrent identical report computations; results are
// shared across callers within one flight. Each caller still honors its own
// context, so a slow flight never pins a cancelled request.
func (h *Handler) compute(ctx context.Context, req reports.ReportRequest) (*reports.AnalyticsResult, error) {
	key := strings.Join([]string{req.From, req.To, req.Cashier, req.Branch, req.CompareFrom, req.CompareTo}, "|")
	resultChan := h.group.DoChan(key, func() (interface{}, error) {
		return h.service.ComputeAnalytics(ctx, req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*reports.AnalyticsResult), nil
	}
}

func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.compute(ctx, parseReportRequest(r))
	if err != nil {
		h.serverError(w, "compute analytics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, reports.BuildPayload(result, h.conv, parseTopN(r)))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request, name string, write func(*bytes.Buffer, *reports.AnalyticsResult) error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.compute(ctx, parseReportRequest(r))
	if err != nil {
		h.serverError(w, "compute analytics", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := write(buf, result); err != nil {
		h.serverError(w, "write "+name, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", name, result.Window.Start.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleProfitabilityCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "rentabilidad", func(buf *bytes.Buffer, res *reports.AnalyticsResult) error {
		return export.WriteProfitabilityCSV(buf, res.Profitability)
	})
}

func (h *Handler) handleCashierRankingCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "ranking_cajeros", func(buf *bytes.Buffer, res *reports.AnalyticsResult) error {
		return export.WriteCashierRankingCSV(buf, res.Cashiers)
	})
}

func (h *Handler) handleDailySeriesCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "serie_diaria", func(buf *bytes.Buffer, res *reports.AnalyticsResult) error {
		return export.WriteDailySeriesCSV(buf, res.Breakdowns.Daily)
	})
}

func (h *Handler) handleBranchComparisonCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "comparacion_sucursal", func(buf *bytes.Buffer, res *reports.AnalyticsResult) error {
		return export.WriteBranchComparisonCSV(buf, res.Breakdowns.Branches)
	})
}

type saleVM struct {
	ID       int64  `json:"id"`
	Date     string `json:"fecha"`
	Employee string `json:"empleado"`
	BranchID *int64 `json:"sucursal_id"`
	Payment  string `json:"forma_pago"`
	Total    string `json:"total_clp"`
}

type sessionVM struct {
	ID        int64  `json:"id"`
	Cashier   string `json:"cajero"`
	Branch    string `json:"sucursal"`
	Status    string `json:"estado"`
	OpenedAt  string `json:"apertura"`
	ClosedAt  string `json:"cierre,omitempty"`
	Initial   string `json:"efectivo_inicial"`
	CashSales string `json:"ventas_efectivo"`
	Final     string `json:"efectivo_final"`
	Total     string `json:"ventas_totales"`
}

type listResponse struct {
	Items      interface{}       `json:"items"`
	Pagination shared.Pagination `json:"paginacion"`
}

func (h *Handler) handleSalesHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	page, err := h.history.ListSales(ctx, reports.HistoryRequest{
		From:    q.Get("fecha_inicio"),
		To:      q.Get("fecha_fin"),
		Cashier: q.Get("empleado"),
		Page:    q.Get("page"),
	})
	if err != nil {
		h.serverError(w, "list sales history", err)
		return
	}

	items := make([]saleVM, 0, len(page.Sales))
	for _, sale := range page.Sales {
		items = append(items, saleVM{
			ID:       sale.ID,
			Date:     sale.OccurredAt.Format(time.RFC3339),
			Employee: sale.Employee,
			BranchID: sale.BranchID,
			Payment:  string(sale.Payment),
			Total:    h.conv.Money(sale.Total),
		})
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Pagination: page.Pagination})
}

func (h *Handler) handleCashHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	page, err := h.history.ListCashSessions(ctx, reports.HistoryRequest{
		From:      q.Get("fecha_inicio"),
		To:        q.Get("fecha_fin"),
		Cashier:   q.Get("cajero"),
		SessionID: q.Get("id_caja"),
		Page:      q.Get("page"),
		PerPage:   q.Get("per_page"),
	})
	if err != nil {
		h.serverError(w, "list cash history", err)
		return
	}

	items := make([]sessionVM, 0, len(page.Sessions))
	for _, sess := range page.Sessions {
		vm := sessionVM{
			ID:        sess.ID,
			Cashier:   sess.Cashier,
			Branch:    sess.Branch,
			Status:    sess.Status,
			OpenedAt:  sess.OpenedAt.Format(time.RFC3339),
			Initial:   h.conv.Money(sess.InitialCash),
			CashSales: h.conv.Money(sess.CashSales),
			Final:     h.conv.Money(sess.FinalCash),
			Total:     h.conv.Money(sess.TotalSales),
		}
		if sess.ClosedAt != nil {
			vm.ClosedAt = sess.ClosedAt.Format(time.RFC3339)
		}
		items = append(items, vm)
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Pagination: page.Pagination})
}

func (h *Handler) serverError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
