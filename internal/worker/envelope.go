package worker

import (
	"context"

	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
)

// JobEnvelope wraps an analysis job with acknowledgment callbacks tied
// to the queue message it came from.
type JobEnvelope struct {
	Job  *queue.AnalysisJob
	ack  func(context.Context) error
	nack func(context.Context) error
}

// NewJobEnvelope creates a new job envelope
func NewJobEnvelope(job *queue.AnalysisJob, ack, nack func(context.Context) error) *JobEnvelope {
	return &JobEnvelope{
		Job:  job,
		ack:  ack,
		nack: nack,
	}
}

// Ack acknowledges successful processing
func (e *JobEnvelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack negatively acknowledges processing, leaving the job visible for
// a later retry
func (e *JobEnvelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}
