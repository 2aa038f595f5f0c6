package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/service"
)

// Runner executes analysis jobs one at a time. Jobs are idempotent, so
// a job that fails is nacked and re-run after the visibility timeout.
type Runner struct {
	analytics service.AnalyticsServicer
	log       *zap.Logger
}

// NewRunner creates a new job runner
func NewRunner(analytics service.AnalyticsServicer, log *zap.Logger) *Runner {
	return &Runner{
		analytics: analytics,
		log:       log,
	}
}

// Start consumes job envelopes until the input channel closes or the
// context is cancelled
func (r *Runner) Start(ctx context.Context, in <-chan *JobEnvelope) {
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Job runner shutting down")
			return
		case envelope, ok := <-in:
			if !ok {
				r.log.Info("Job runner input channel closed")
				return
			}
			r.runJob(ctx, envelope)
		}
	}
}

func (r *Runner) runJob(ctx context.Context, envelope *JobEnvelope) {
	job := envelope.Job

	if err := r.analytics.RunAnalysisJob(ctx, job); err != nil {
		r.log.Error("Analysis job failed",
			zap.String("tenant_id", job.TenantID),
			zap.String("file_id", job.FileID),
			zap.Strings("event_types", job.EventTypes),
			zap.Error(err))
		if err := envelope.Nack(ctx); err != nil {
			r.log.Error("Failed to nack job", zap.Error(err))
		}
		return
	}

	r.log.Info("Analysis job completed",
		zap.String("tenant_id", job.TenantID),
		zap.String("file_id", job.FileID),
		zap.Strings("event_types", job.EventTypes),
		zap.Strings("periods", job.Periods))

	if err := envelope.Ack(ctx); err != nil {
		r.log.Error("Failed to ack job", zap.Error(err))
	}
}
