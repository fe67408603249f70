package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup precomputes the default analytics report per branch.
	TaskReportsWarmup = "reports:warmup"
	// TaskReportsCacheBump invalidates cached reports after sales mutations.
	TaskReportsCacheBump = "reports:cache_bump"
)

// ReportsWarmupPayload scopes a warmup run.
type ReportsWarmupPayload struct {
	// Scope selects which branch combinations get warmed: "all" walks every
	// branch plus the unfiltered report, "global" warms only the unfiltered one.
	Scope string `json:"scope"`
}

// NewReportsWarmupTask constructs an Asynq task with a unique task ID.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data, asynq.TaskID(uuid.NewString())), nil
}

// ReportsCacheBumpPayload names the mutation that triggered invalidation.
type ReportsCacheBumpPayload struct {
	Reason string `json:"reason"`
}

// NewReportsCacheBumpTask constructs a cache invalidation task.
func NewReportsCacheBumpTask(payload ReportsCacheBumpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsCacheBump, data, asynq.TaskID(uuid.NewString())), nil
}
