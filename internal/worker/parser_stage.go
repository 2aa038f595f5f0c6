package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
)

// ParserStage decodes SQS messages into job envelopes. Malformed
// messages are deleted instead of retried: they will never parse.
type ParserStage struct {
	consumer queue.QueueConsumer
	log      *zap.Logger
}

// NewParserStage creates a new parser stage
func NewParserStage(consumer queue.QueueConsumer, log *zap.Logger) *ParserStage {
	return &ParserStage{
		consumer: consumer,
		log:      log,
	}
}

// Start begins parsing messages and outputs envelopes
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *JobEnvelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			envelope := p.parseMessage(ctx, msg)
			if envelope == nil {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- envelope:
			}
		}
	}
}

// parseMessage parses a single SQS message into a job envelope
func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *JobEnvelope {
	job, err := parseAnalysisJob([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Failed to parse analysis job",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		if err := p.deleteMessage(ctx, msg); err != nil {
			p.log.Error("Failed to delete malformed message",
				zap.String("message_id", aws.ToString(msg.MessageId)),
				zap.Error(err))
		}
		return nil
	}

	ack := func(ctx context.Context) error {
		return p.deleteMessage(ctx, msg)
	}

	nack := func(ctx context.Context) error {
		// Leave the message alone; visibility timeout returns it.
		return nil
	}

	return NewJobEnvelope(job, ack, nack)
}

func parseAnalysisJob(body []byte) (*queue.AnalysisJob, error) {
	var job queue.AnalysisJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis job: %w", err)
	}
	if job.TenantID == "" {
		return nil, fmt.Errorf("analysis job missing tenant_id")
	}
	if len(job.EventTypes) == 0 {
		return nil, fmt.Errorf("analysis job missing event_types")
	}
	if len(job.Periods) == 0 {
		return nil, fmt.Errorf("analysis job missing periods")
	}
	return &job, nil
}

// deleteMessage deletes a message from SQS
func (p *ParserStage) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		p.log.Error("Failed to delete message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		return err
	}
	return nil
}
