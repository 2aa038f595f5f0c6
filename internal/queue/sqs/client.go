package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/pranav8431/saas-analytics-dashboard/internal/config"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
)

// Client represents an SQS client
type Client struct {
	client *sqs.Client
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient creates a new SQS client
func NewClient(ctx context.Context, SQSConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(SQSConfig.Region),
	}

	var clientOpts []func(*sqs.Options)

	// Configure for local development with ElasticMQ
	if SQSConfig.Endpoint != "" {
		log.Info("Configuring SQS for local development",
			zap.String("endpoint", SQSConfig.Endpoint))
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(SQSConfig.Endpoint)
		})
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	sqsClient := sqs.NewFromConfig(cfg, clientOpts...)

	log.Info("SQS client created",
		zap.String("region", SQSConfig.Region),
		zap.String("queue_url", SQSConfig.QueueURL))

	return &Client{
		client: sqsClient,
		config: SQSConfig,
		log:    log,
	}, nil
}

// ReceiveMessages receives messages from SQS
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.client.ReceiveMessage(ctx, input)
}

// DeleteMessage deletes a message from SQS
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.client.DeleteMessage(ctx, input)
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.config.QueueURL
}

// PublishAnalysisJob publishes an analysis job to SQS
func (c *Client) PublishAnalysisJob(ctx context.Context, job *queue.AnalysisJob) error {
	bodyJSON, err := json.Marshal(job)
	if err != nil {
		c.log.Error("Failed to marshal analysis job",
			zap.String("tenant_id", job.TenantID),
			zap.String("file_id", job.FileID),
			zap.Error(err))
		return fmt.Errorf("failed to marshal analysis job: %w", err)
	}

	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.config.QueueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"TenantID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.TenantID),
			},
			"EventTypes": {
				DataType:    aws.String("String"),
				StringValue: aws.String(strings.Join(job.EventTypes, ",")),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send analysis job to SQS",
			zap.String("tenant_id", job.TenantID),
			zap.String("file_id", job.FileID),
			zap.Error(err))
		return fmt.Errorf("failed to send analysis job to SQS: %w", err)
	}

	c.log.Info("Analysis job published to SQS",
		zap.String("tenant_id", job.TenantID),
		zap.String("file_id", job.FileID),
		zap.Strings("event_types", job.EventTypes))

	return nil
}
