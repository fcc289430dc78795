package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessDecision is the recorded outcome of an authorization check.
type AccessDecision string

const (
	DecisionAllow  AccessDecision = "allow"
	DecisionDeny   AccessDecision = "deny"
	DecisionBypass AccessDecision = "bypass"
)

// AccessRecord represents a row stored in access_audit.
type AccessRecord struct {
	PrincipalID int64
	RoleID      int64
	Permission  string
	Decision    AccessDecision
	At          time.Time
}

// AccessAuditor persists authorization outcomes. Denials are audit records,
// not error events.
type AccessAuditor struct {
	pool *pgxpool.Pool
}

// NewAccessAuditor returns a new AccessAuditor.
func NewAccessAuditor(pool *pgxpool.Pool) *AccessAuditor {
	return &AccessAuditor{pool: pool}
}

// Record persists the access entry.
func (a *AccessAuditor) Record(ctx context.Context, rec AccessRecord) error {
	if a == nil || a.pool == nil {
		return errors.New("access auditor not initialised")
	}
	if rec.Permission == "" {
		return errors.New("access record requires permission")
	}
	_, err := a.pool.Exec(ctx,
		`INSERT INTO access_audit (principal_id, role_id, permission, decision, occurred_at) VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))`,
		rec.PrincipalID, rec.RoleID, rec.Permission, string(rec.Decision),
		pgtype.Timestamptz{Time: rec.At.UTC(), Valid: !rec.At.IsZero()})
	return err
}
