package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/harborview-hms/harborview/internal/session"
)

// NewSessionPurgeHandler returns the handler for TaskSessionLogPurge. The
// purge touches the durable trail only; live sessions in Redis expire by
// key TTL and no background task participates in authorization decisions.
func NewSessionPurgeHandler(recorder session.Recorder, logger *slog.Logger, defaultRetention time.Duration) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionLogPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention := defaultRetention
		if payload.RetentionHours > 0 {
			retention = time.Duration(payload.RetentionHours) * time.Hour
		}
		cutoff := time.Now().UTC().Add(-retention)
		removed, err := recorder.PurgeBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("purged session trail",
				slog.Int64("rows", removed),
				slog.Time("cutoff", cutoff))
		}
		return nil
	}
}
