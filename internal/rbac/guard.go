package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/observability"
	"github.com/harborview-hms/harborview/internal/shared"
)

// Auditor records authorization outcomes. Satisfied by shared.AccessAuditor.
type Auditor interface {
	Record(ctx context.Context, rec shared.AccessRecord) error
}

// Guard is the authorization decision point: it composes the registry bypass
// and the permission index into a single check/enforce contract.
type Guard struct {
	registry *Registry
	index    *Index
	auditor  Auditor
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewGuard constructs a Guard. auditor and metrics may be nil.
func NewGuard(registry *Registry, index *Index, auditor Auditor, metrics *observability.Metrics, logger *slog.Logger) *Guard {
	return &Guard{registry: registry, index: index, auditor: auditor, metrics: metrics, logger: logger}
}

// Check answers whether the principal may perform the permission. An absent
// principal is always false. Privileged roles return true before the index
// is ever consulted, so a thin or missing grant table can never lock an
// administrator out. A role id with no directory entry is an anomaly that
// resolves to false, never a panic or error surfaced past the caller.
// Storage failures propagate as errors distinct from denial.
func (g *Guard) Check(ctx context.Context, p *directory.Principal, permission string) (bool, error) {
	if p == nil {
		g.observe("deny")
		return false, nil
	}
	if g.registry.IsPrivileged(p.RoleID) {
		g.observe("bypass")
		return true, nil
	}
	if _, err := g.registry.Describe(ctx, p.RoleID); err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			if g.logger != nil {
				g.logger.Warn("principal references unknown role",
					slog.Int64("principal_id", p.ID),
					slog.Int64("role_id", p.RoleID))
			}
			g.observe("deny")
			return false, nil
		}
		return false, fmt.Errorf("rbac: describe role: %w", err)
	}
	granted, err := g.index.HasPermission(ctx, p.RoleID, permission)
	if err != nil {
		return false, err
	}
	if granted {
		g.observe("allow")
	} else {
		g.observe("deny")
	}
	return granted, nil
}

// Enforce resolves Check into a terminal outcome: nil on allow, a taxonomy
// error the caller must return with on deny. Denials are written to the
// access audit trail, never to the error log.
func (g *Guard) Enforce(ctx context.Context, p *directory.Principal, permission string) error {
	allowed, err := g.Check(ctx, p, permission)
	if err != nil {
		return err
	}
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if !allowed {
		g.audit(ctx, p, permission, shared.DecisionDeny)
		return fmt.Errorf("principal %d lacks %q: %w", p.ID, permission, shared.ErrPermissionDenied)
	}
	decision := shared.DecisionAllow
	if g.registry.IsPrivileged(p.RoleID) {
		decision = shared.DecisionBypass
	}
	g.audit(ctx, p, permission, decision)
	return nil
}

func (g *Guard) audit(ctx context.Context, p *directory.Principal, permission string, decision shared.AccessDecision) {
	if g.auditor == nil {
		return
	}
	rec := shared.AccessRecord{
		PrincipalID: p.ID,
		RoleID:      p.RoleID,
		Permission:  permission,
		Decision:    decision,
		At:          time.Now().UTC(),
	}
	if err := g.auditor.Record(ctx, rec); err != nil && g.logger != nil {
		g.logger.Warn("record access audit", slog.Any("error", err))
	}
}

func (g *Guard) observe(outcome string) {
	if g.metrics != nil {
		g.metrics.ObserveAuthz(outcome)
	}
}
