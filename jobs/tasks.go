package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionLogPurge removes session trail rows past retention.
	TaskSessionLogPurge = "session:purge"
)

// SessionLogPurgePayload carries the retention window for a purge run.
type SessionLogPurgePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewSessionLogPurgeTask constructs an Asynq task.
func NewSessionLogPurgeTask(payload SessionLogPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionLogPurge, data), nil
}
