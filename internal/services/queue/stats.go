package queue

import (
	"fmt"

	"github.com/phambaophuc/image-upscaler/internal/models"
)

// GetQueueStats reports broker-side depth alongside the workers consuming
// on this instance.
func (q *QueueService) GetQueueStats() (*models.QueueStats, error) {
	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %s: %w", q.queueName, err)
	}

	return &models.QueueStats{
		Name:      info.Name,
		Messages:  info.Messages,
		Consumers: info.Consumers,
		Workers:   q.ActiveWorkers(),
	}, nil
}

// ActiveWorkers returns the number of consumer goroutines still running.
func (q *QueueService) ActiveWorkers() int {
	return int(q.workers.Load())
}

// HealthCheck reports broker connectivity. A connected queue with no running
// consumer is degraded: jobs are accepted but not processed.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return models.HealthUnhealthy + ": connection closed"
	case q.channel == nil:
		return models.HealthUnhealthy + ": channel not available"
	case q.ActiveWorkers() == 0:
		return models.HealthDegraded + ": no workers consuming"
	}
	return models.HealthHealthy
}
