package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/image-upscaler/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	q.workers.Add(1)
	go func() {
		defer q.workers.Add(-1)
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.ProcessingJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // Don't requeue malformed messages
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	q.handleJob(ctx, &job)

	// Failed jobs are not requeued: resize errors are deterministic.
	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}

// handleJob runs a job to completion and persists each status transition.
func (q *QueueService) handleJob(ctx context.Context, job *models.ProcessingJob) {
	job.Status = models.StatusProcessing
	q.storeJobResult(ctx, job)

	result, err := q.processJob(ctx, job)
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = result
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID))
	}

	q.storeJobResult(ctx, job)
}

func (q *QueueService) storeJobResult(ctx context.Context, job *models.ProcessingJob) {
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.logger.Error("Failed to store job status",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(err))
	}
}
