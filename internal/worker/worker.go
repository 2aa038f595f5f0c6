package worker

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/config"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
	"github.com/pranav8431/saas-analytics-dashboard/internal/service"
)

// Worker orchestrates a pipeline of stages to process analysis jobs
type Worker struct {
	receiver *Receiver
	parser   *ParserStage
	runner   *Runner
}

// NewWorker creates a new worker with a pipeline architecture
func NewWorker(cfg *config.Config, queueConsumer queue.QueueConsumer, analytics service.AnalyticsServicer, log *zap.Logger) *Worker {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     int32(cfg.Worker.MaxMessages),
		WaitTimeSeconds: int32(cfg.Worker.WaitTimeSeconds),
	}, log)

	parser := NewParserStage(queueConsumer, log)
	runner := NewRunner(analytics, log)

	return &Worker{
		receiver: receiver,
		parser:   parser,
		runner:   runner,
	}
}

// Start begins the worker pipeline and blocks until every stage exits
func (w *Worker) Start(ctx context.Context) error {
	messageChan := make(chan types.Message, 100)
	envelopeChan := make(chan *JobEnvelope, 100)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		w.receiver.Start(ctx, messageChan)
	}()

	go func() {
		defer wg.Done()
		w.parser.Start(ctx, messageChan, envelopeChan)
	}()

	go func() {
		defer wg.Done()
		w.runner.Start(ctx, envelopeChan)
	}()

	wg.Wait()
	return nil
}
