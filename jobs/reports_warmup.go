package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SaraMars666/MOV-OS/internal/reports"
)

// ReportsWarmupJob pre-populates the analytics cache so the dashboard's
// first load after an invalidation does not pay the full aggregation cost.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(svc *reports.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: svc,
		Pool:    pool,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes reports warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Scope == "" {
		payload.Scope = "all"
	}

	logger := j.logger().With(slog.String("scope", payload.Scope))
	logger.Info("starting reports warmup")
	started := j.now()

	// The unfiltered last-30-days report is what the dashboard shows first.
	if err := j.warm(ctx, ""); err != nil {
		logger.Error("warm global report", slog.Any("error", err))
		return err
	}
	warmed := 1

	if payload.Scope == "all" {
		branchIDs, err := j.fetchBranchIDs(ctx)
		if err != nil {
			logger.Error("load warmup branches", slog.Any("error", err))
			return err
		}
		for _, id := range branchIDs {
			if err := j.warm(ctx, strconv.FormatInt(id, 10)); err != nil {
				logger.Error("warm branch report", slog.Int64("branch_id", id), slog.Any("error", err))
				return err
			}
			warmed++
		}
	}

	logger.Info("completed reports warmup", slog.Int("reports", warmed), slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *ReportsWarmupJob) warm(ctx context.Context, branch string) error {
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	_, err := j.Reports.ComputeAnalytics(scopeCtx, reports.ReportRequest{Branch: branch})
	return err
}

func (j *ReportsWarmupJob) fetchBranchIDs(ctx context.Context) ([]int64, error) {
	if j.Pool == nil {
		return nil, errors.New("reports warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT id FROM branches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
