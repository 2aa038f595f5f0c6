package queue

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AnalysisJob asks the worker to recompute aggregates and re-run
// anomaly detection for the event types touched by one upload. Both
// operations are idempotent, so a redelivered job is safe to re-run.
type AnalysisJob struct {
	TenantID   string    `json:"tenant_id"`
	FileID     string    `json:"file_id"`
	EventTypes []string  `json:"event_types"`
	Periods    []string  `json:"periods"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
}

// JobPublisher defines the interface for publishing analysis jobs to a queue
type JobPublisher interface {
	PublishAnalysisJob(ctx context.Context, job *AnalysisJob) error
}

// QueueConsumer defines the interface for consuming messages from a queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
