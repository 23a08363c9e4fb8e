package batch

import (
	"banking-backend/internal/domain/loan"
	"banking-backend/internal/infrastructure/monitoring"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PendingReviewJob walks the pending queue on a schedule, exports the
// backlog gauge, and flags applications that have been waiting longer than
// the configured maximum age so operators can chase them.
type PendingReviewJob struct {
	loanRepo loan.Repository
	maxAge   time.Duration
	logger   *slog.Logger
}

func NewPendingReviewJob(loanRepo loan.Repository, maxAge time.Duration, logger *slog.Logger) *PendingReviewJob {
	if loanRepo == nil || logger == nil {
		panic("PendingReviewJob dependencies cannot be nil")
	}
	if maxAge <= 0 {
		maxAge = 72 * time.Hour
	}
	return &PendingReviewJob{
		loanRepo: loanRepo,
		maxAge:   maxAge,
		logger:   logger.With("job", "PendingReview"),
	}
}

func (j *PendingReviewJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting pending loan review sweep.")

	pending, err := j.loanRepo.ListByStatus(ctx, loan.StatusPending)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list pending loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list pending loans: %w", err)
	}

	monitoring.SetPendingReviewBacklog(len(pending))

	staleCount := 0
	cutoff := startTime.Add(-j.maxAge)
	for i := range pending {
		l := &pending[i]
		if l.AppliedAt.Before(cutoff) {
			staleCount++
			j.logger.WarnContext(ctx, "Loan application is overdue for review.",
				slog.Int64("loanID", l.ID),
				slog.Int64("customerID", l.CustomerID),
				slog.Time("appliedAt", l.AppliedAt),
				slog.Duration("waiting", startTime.Sub(l.AppliedAt)),
			)
		}
	}

	j.logger.InfoContext(ctx, "Pending loan review sweep finished.",
		slog.Int("pending", len(pending)),
		slog.Int("stale", staleCount),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}
