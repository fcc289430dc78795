package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder keeps a durable trail of issued session tokens for auditing.
// Redis remains the source of truth for validity; these rows only feed the
// audit views and the retention purge.
type Recorder interface {
	Insert(ctx context.Context, token string, principalID int64, issuedAt, expiresAt time.Time, ip, ua string) error
	Remove(ctx context.Context, token string) error
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PGRecorder implements Recorder using PostgreSQL.
type PGRecorder struct {
	pool *pgxpool.Pool
}

// NewRecorder constructs a PostgreSQL recorder.
func NewRecorder(pool *pgxpool.Pool) *PGRecorder {
	return &PGRecorder{pool: pool}
}

// Insert persists a session trail row.
func (r *PGRecorder) Insert(ctx context.Context, token string, principalID int64, issuedAt, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_log (token, principal_id, issued_at, expires_at, ip, ua) VALUES ($1, $2, $3, $4, $5, $6)`,
		token, principalID,
		pgtype.Timestamptz{Time: issuedAt.UTC(), Valid: true},
		pgtype.Timestamptz{Time: expiresAt.UTC(), Valid: true},
		pgtype.Text{String: ip, Valid: ip != ""},
		pgtype.Text{String: ua, Valid: ua != ""})
	return err
}

// Remove deletes the trail row for an invalidated token.
func (r *PGRecorder) Remove(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session_log WHERE token = $1`, token)
	return err
}

// PurgeBefore removes trail rows whose expiry predates the cutoff and
// returns the number of rows deleted.
func (r *PGRecorder) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM session_log WHERE expires_at < $1`,
		pgtype.Timestamptz{Time: cutoff.UTC(), Valid: true})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Recorder = (*PGRecorder)(nil)
