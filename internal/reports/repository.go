package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SaraMars666/MOV-OS/internal/platform/db"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository reads the transactional schema on behalf of the analytics
// engine. It performs no writes.
type Repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a repository over the connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// WithSnapshot runs fn against a RepeatableRead transaction so one report
// computation sees a single consistent snapshot even while the register keeps
// completing sales.
func (r *Repository) WithSnapshot(ctx context.Context, fn func(Store) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&Repository{db: tx, pool: r.pool})
	})
}

// SalesBetween returns sales inside the inclusive window, optionally
// restricted to one employee and/or branch, ordered by capture time.
func (r *Repository) SalesBetween(ctx context.Context, win Window, filters Filters) ([]Sale, error) {
	conditions := []string{"s.occurred_at >= $1", "s.occurred_at <= $2"}
	args := []interface{}{win.Start, win.End}
	if filters.EmployeeID != nil {
		args = append(args, *filters.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("s.employee_id = $%d", len(args)))
	}
	if filters.BranchID != nil {
		args = append(args, *filters.BranchID)
		conditions = append(conditions, fmt.Sprintf("s.branch_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.occurred_at, s.employee_id, u.username, s.branch_id, s.payment_method, s.total::text
		FROM sales s
		JOIN users u ON u.id = s.employee_id
		WHERE %s
		ORDER BY s.occurred_at, s.id`, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: query sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var (
			sale  Sale
			total string
		)
		if err := rows.Scan(&sale.ID, &sale.OccurredAt, &sale.EmployeeID, &sale.Employee, &sale.BranchID, &sale.Payment, &total); err != nil {
			return nil, fmt.Errorf("reports: scan sale: %w", err)
		}
		if sale.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("reports: sale %d total: %w", sale.ID, err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// LineItemsForSales returns the line items of the given sales with their
// product cost snapshot. A deleted product yields a placeholder name and a
// zero purchase price so the report keeps the historical revenue.
func (r *Repository) LineItemsForSales(ctx context.Context, saleIDs []int64) ([]SaleLineItem, error) {
	if len(saleIDs) == 0 {
		return nil, nil
	}
	const query = `
		SELECT li.sale_id, li.product_id,
		       COALESCE(p.name, '(producto eliminado)'),
		       li.quantity, li.unit_price::text,
		       COALESCE(p.purchase_price, 0)::text
		FROM sale_items li
		LEFT JOIN products p ON p.id = li.product_id
		WHERE li.sale_id = ANY($1)
		ORDER BY li.sale_id, li.product_id`

	rows, err := r.db.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("reports: query line items: %w", err)
	}
	defer rows.Close()

	var lines []SaleLineItem
	for rows.Next() {
		var (
			line        SaleLineItem
			price, cost string
		)
		if err := rows.Scan(&line.SaleID, &line.ProductID, &line.ProductName, &line.Quantity, &price, &cost); err != nil {
			return nil, fmt.Errorf("reports: scan line item: %w", err)
		}
		if line.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("reports: line price: %w", err)
		}
		if line.PurchasePrice, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("reports: line cost: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// AllBranches enumerates every branch, activity or not.
func (r *Repository) AllBranches(ctx context.Context) ([]Branch, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM branches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reports: query branches: %w", err)
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var branch Branch
		if err := rows.Scan(&branch.ID, &branch.Name); err != nil {
			return nil, fmt.Errorf("reports: scan branch: %w", err)
		}
		branches = append(branches, branch)
	}
	return branches, rows.Err()
}

// SalesHistory lists sales in the window most recent first.
func (r *Repository) SalesHistory(ctx context.Context, win Window, filters Filters, limit, offset int) ([]Sale, int, error) {
	conditions := []string{"s.occurred_at >= $1", "s.occurred_at <= $2"}
	args := []interface{}{win.Start, win.End}
	if filters.EmployeeID != nil {
		args = append(args, *filters.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("s.employee_id = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM sales s WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reports: count sales history: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT s.id, s.occurred_at, s.employee_id, u.username, s.branch_id, s.payment_method, s.total::text
		FROM sales s
		JOIN users u ON u.id = s.employee_id
		WHERE %s
		ORDER BY s.occurred_at DESC, s.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("reports: query sales history: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var (
			sale     Sale
			totalStr string
		)
		if err := rows.Scan(&sale.ID, &sale.OccurredAt, &sale.EmployeeID, &sale.Employee, &sale.BranchID, &sale.Payment, &totalStr); err != nil {
			return nil, 0, fmt.Errorf("reports: scan sales history: %w", err)
		}
		if sale.Total, err = decimal.NewFromString(totalStr); err != nil {
			return nil, 0, fmt.Errorf("reports: history total: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, total, rows.Err()
}

// CashSessions lists register sessions by opening time descending.
func (r *Repository) CashSessions(ctx context.Context, q SessionQuery, limit, offset int) ([]CashSession, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	if q.SessionID != nil {
		args = append(args, *q.SessionID)
		conditions = append(conditions, fmt.Sprintf("cs.id = $%d", len(args)))
	}
	if q.Cashier != "" {
		args = append(args, "%"+q.Cashier+"%")
		conditions = append(conditions, fmt.Sprintf("u.username ILIKE $%d", len(args)))
	}
	if q.From != nil {
		args = append(args, *q.From)
		conditions = append(conditions, fmt.Sprintf("cs.opened_at >= $%d", len(args)))
	}
	if q.To != nil {
		args = append(args, *q.To)
		conditions = append(conditions, fmt.Sprintf("cs.opened_at <= $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM cash_sessions cs
		JOIN users u ON u.id = cs.employee_id
		WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reports: count cash sessions: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT cs.id, u.username, b.name, cs.status, cs.opened_at, cs.closed_at,
		       cs.initial_cash::text, cs.cash_sales::text, cs.change_given::text,
		       COALESCE(cs.final_cash, 0)::text, cs.total_sales::text
		FROM cash_sessions cs
		JOIN users u ON u.id = cs.employee_id
		JOIN branches b ON b.id = cs.branch_id
		WHERE %s
		ORDER BY cs.opened_at DESC, cs.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("reports: query cash sessions: %w", err)
	}
	defer rows.Close()

	var sessions []CashSession
	for rows.Next() {
		var (
			sess                                        CashSession
			initial, cashSales, change, final, totalStr string
		)
		if err := rows.Scan(&sess.ID, &sess.Cashier, &sess.Branch, &sess.Status, &sess.OpenedAt, &sess.ClosedAt,
			&initial, &cashSales, &change, &final, &totalStr); err != nil {
			return nil, 0, fmt.Errorf("reports: scan cash session: %w", err)
		}
		var err error
		if sess.InitialCash, err = parseMoney(initial); err != nil {
			return nil, 0, err
		}
		if sess.CashSales, err = parseMoney(cashSales); err != nil {
			return nil, 0, err
		}
		if sess.ChangeGiven, err = parseMoney(change); err != nil {
			return nil, 0, err
		}
		if sess.FinalCash, err = parseMoney(final); err != nil {
			return nil, 0, err
		}
		if sess.TotalSales, err = parseMoney(totalStr); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, total, rows.Err()
}

func parseMoney(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("reports: parse amount %q: %w", raw, err)
	}
	return v, nil
}
