package queue

import (
	"fmt"
	"sync/atomic"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/phambaophuc/image-upscaler/pkg/utils"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type QueueService struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	logger      *zap.Logger
	queueName   string
	processor   ImageProcessor
	store       Store
	fetch       Fetcher
	maxFileSize int64
	types       []string
	workers     atomic.Int32
}

func NewQueueService(
	cfg config.RabbitMQConfig,
	storageCfg config.StorageConfig,
	processor ImageProcessor,
	store Store,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		cfg.QueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Upscaling is CPU bound; hand each consumer one job at a time.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return &QueueService{
		conn:        conn,
		channel:     channel,
		logger:      logger,
		queueName:   cfg.QueueName,
		processor:   processor,
		store:       store,
		fetch:       utils.DownloadImage,
		maxFileSize: storageCfg.MaxFileSize,
		types:       storageCfg.AllowedTypes,
	}, nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
