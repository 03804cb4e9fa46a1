package report

import "context"

// DailyJob generates the end-of-day report on a schedule.
type DailyJob struct {
	svc *Service
}

// NewDailyJob wraps the report service as a scheduler job.
func NewDailyJob(svc *Service) *DailyJob {
	return &DailyJob{svc: svc}
}

// Name identifies the job in scheduler logs.
func (j *DailyJob) Name() string { return "daily-report" }

// Run generates and persists the daily report.
func (j *DailyJob) Run(ctx context.Context) error {
	_, err := j.svc.GenerateDaily(ctx)
	return err
}
