package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nordvare/nordvare/internal/shared"
)

// AuditPort records assignment changes for the admin audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service resolves visibility scopes and manages assignment edges.
type Service struct {
	repo   Repository
	logger *slog.Logger
	policy LookupFailurePolicy
	audit  AuditPort
}

// NewService constructs a Service. The storefront runs with FailOpen.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, policy: FailOpen}
}

// WithAudit enables audit trail recording for assignment writes.
func (s *Service) WithAudit(audit AuditPort) {
	s.audit = audit
}

// ScopeFor resolves the visibility scope for a viewer.
//
// Admins see everything without touching the edge tables. For other viewers
// the restricted set comes from the privileged aggregate lookup; when that
// lookup fails the FailOpen policy degrades to showing the full catalog,
// with a warning in the log. The viewer's own edges are fetched only for
// authenticated viewers.
func (s *Service) ScopeFor(ctx context.Context, viewer Viewer) Scope {
	if viewer.IsAdmin {
		return Scope{All: true}
	}

	restricted, err := s.repo.RestrictedProductIDs(ctx)
	if err != nil {
		if s.policy == FailOpen {
			s.logger.Warn("restricted-set lookup failed, failing open", slog.Any("error", err))
			return Scope{All: true}
		}
		s.logger.Warn("restricted-set lookup failed, failing closed", slog.Any("error", err))
		return Scope{None: true}
	}

	scope := Scope{Restricted: restricted}
	if viewer.Authenticated {
		allowed, err := s.repo.AssignedProductIDs(ctx, viewer.UserID)
		if err != nil {
			// Same availability tradeoff as the aggregate lookup.
			s.logger.Warn("own-assignment lookup failed, failing open", slog.Any("error", err))
			return Scope{All: true}
		}
		scope.Allowed = allowed
	}
	return scope
}

// CanView reports whether the viewer may see a single product. Unlike
// ScopeFor it needs only the product's own edges, never the privileged
// aggregate. Lookup failures follow the same policy as ScopeFor.
func (s *Service) CanView(ctx context.Context, viewer Viewer, productID int64) bool {
	if viewer.IsAdmin {
		return true
	}
	restricted, err := s.repo.HasAssignments(ctx, productID)
	if err != nil {
		s.logger.Warn("edge lookup failed, failing open", slog.Any("error", err))
		return s.policy == FailOpen
	}
	if !restricted {
		return true
	}
	if !viewer.Authenticated {
		return false
	}
	assigned, err := s.repo.IsAssigned(ctx, productID, viewer.UserID)
	if err != nil {
		s.logger.Warn("edge lookup failed, failing open", slog.Any("error", err))
		return s.policy == FailOpen
	}
	return assigned
}

// ListAssignees returns the current edge set of a product.
func (s *Service) ListAssignees(ctx context.Context, productID int64) ([]Assignee, error) {
	return s.repo.ListAssignees(ctx, productID)
}

// Replace swaps the full assignment set of a product. Admin accounts are
// stripped from the submitted set before writing; they are implicitly
// always-visible and must not consume an explicit edge.
func (s *Service) Replace(ctx context.Context, productID int64, userIDs []int64) error {
	userIDs = dedupe(userIDs)
	nonAdmins, err := s.repo.NonAdminUserIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("resolve assignable users: %w", err)
	}
	if err := s.repo.Replace(ctx, productID, nonAdmins); err != nil {
		return fmt.Errorf("replace assignments: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorFromSession(ctx),
			Action:   "product.assignments_replace",
			Entity:   "product",
			EntityID: strconv.FormatInt(productID, 10),
			Meta:     map[string]any{"user_ids": nonAdmins},
		})
	}
	return nil
}

func actorFromSession(ctx context.Context) int64 {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
