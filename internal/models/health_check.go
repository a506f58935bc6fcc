package models

import "time"

// Service health values. Degraded services still answer requests.
const (
	HealthHealthy       = "healthy"
	HealthDegraded      = "degraded"
	HealthUnhealthy     = "unhealthy"
	HealthNotConfigured = "not configured"
)

type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Engine    *EngineStatus     `json:"engine,omitempty"`
}

// EngineStatus describes the tile executor behind the upscaler.
type EngineStatus struct {
	Backend string `json:"backend"`
	Workers int    `json:"workers"`
	Running bool   `json:"running"`
}

// QueueStats reports the job queue as seen by this instance.
type QueueStats struct {
	Name      string `json:"name"`
	Messages  int    `json:"messages"`
	Consumers int    `json:"consumers"`
	Workers   int    `json:"workers"`
}
