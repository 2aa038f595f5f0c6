package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type Upload struct {
	// MaxBytes caps the accepted request body for CSV uploads. Enforced
	// at the HTTP edge before any parsing happens.
	MaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
}

type Detection struct {
	StddevThreshold  float64 `envconfig:"DETECTION_STDDEV_THRESHOLD" default:"2.5"`
	SensitivityLevel int     `envconfig:"DETECTION_SENSITIVITY_LEVEL" default:"3"`
	MinDataPoints    int     `envconfig:"DETECTION_MIN_DATA_POINTS" default:"10"`
	TieBreak         string  `envconfig:"DETECTION_TIE_BREAK" default:"last_write_wins"`
}

type Worker struct {
	HealthCheckPort string `envconfig:"WORKER_HEALTH_CHECK_PORT" default:"8081"`
	MaxMessages     int    `envconfig:"WORKER_MAX_MESSAGES" default:"10"`
	WaitTimeSeconds int    `envconfig:"WORKER_WAIT_TIME_SEC" default:"20"`
	// Periods is the comma-separated list of aggregation periods an
	// analysis job covers.
	Periods string `envconfig:"WORKER_ANALYSIS_PERIODS" default:"hour,day"`
}

type Config struct {
	Service    Service
	ClickHouse ClickHouse
	SQS        SQS
	Upload     Upload
	Detection  Detection
	Worker     Worker
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
