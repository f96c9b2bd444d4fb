package scheduler

import (
	"context"
	"log/slog"

	"taskstudy/internal/types"
)

// Service orchestrates one scheduler pass: the urgent scan always runs,
// the daily digest runs unless skipped, and the weekly and monthly reports
// run when the calendar (or an explicit override) says so.
type Service struct {
	urgent  *UrgentChecker
	daily   *DailyDigestJob
	weekly  *WeeklyReportJob
	monthly *MonthlyReportJob
	clock   types.Clock
	logger  *slog.Logger
}

// NewService creates the scheduler orchestrator.
func NewService(
	urgent *UrgentChecker,
	daily *DailyDigestJob,
	weekly *WeeklyReportJob,
	monthly *MonthlyReportJob,
	clock types.Clock,
	logger *slog.Logger,
) *Service {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		urgent:  urgent,
		daily:   daily,
		weekly:  weekly,
		monthly: monthly,
		clock:   clock,
		logger:  logger,
	}
}

// Run executes one full scheduler pass and reports what each job did.
// Job failures are absorbed into the summary; Run itself never fails.
func (s *Service) Run(ctx context.Context, opts types.RunOptions) *types.RunSummary {
	now := s.clock.Now()
	summary := &types.RunSummary{ExecutedAt: now}

	s.logger.Info("scheduler pass starting",
		"skip_daily", opts.SkipDaily,
		"force_daily", opts.ForceDaily,
		"recipient_override", opts.RecipientOverride != "",
	)

	s.urgent.Run(ctx, now)

	if !opts.SkipDaily {
		summary.Daily = s.daily.RunBatch(ctx, now, BatchOptions{
			Force:             opts.ForceDaily,
			RecipientOverride: opts.RecipientOverride,
		})
	}

	if ShouldRun(KindWeekly, now, opts.ForceWeekly) {
		summary.Weekly = s.weekly.RunBatch(ctx, now, forced(opts.ForceWeekly))
	}

	if ShouldRun(KindMonthly, now, opts.ForceMonthly) {
		summary.Monthly = s.monthly.RunBatch(ctx, now, forced(opts.ForceMonthly))
	}

	s.logger.Info("scheduler pass complete", "executed_at", now)
	return summary
}

// forced reports whether an override explicitly demanded the run, which
// also bypasses the per-user dedup check.
func forced(override *bool) bool {
	return override != nil && *override
}
