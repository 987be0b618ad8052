package users

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/shared"
)

// ErrLastAdmin guards against locking every admin out of the back-office.
var ErrLastAdmin = fmt.Errorf("users: cannot remove the last admin")

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithAudit enables audit trail recording for account mutations.
func (s *Service) WithAudit(audit AuditPort) {
	s.audit = audit
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]auth.User, shared.Pagination, error) {
	users, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("users: list: %w", err)
	}
	return users, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (auth.User, error) {
	return s.repo.Get(ctx, id)
}

// UpdateRole changes an account's role. Demoting the only remaining admin
// is refused.
func (s *Service) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	if role != auth.RoleAdmin && role != auth.RoleUser {
		return fmt.Errorf("users: unknown role %q", role)
	}
	if role == auth.RoleUser {
		if err := s.guardLastAdmin(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID(ctx),
			Action:   "user.role_change",
			Entity:   "user",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"role": string(role)},
		})
	}
	return nil
}

// SetActive enables or disables an account. A disabled account cannot log
// in; existing sessions lapse at their TTL. Deactivating the only
// remaining admin is refused.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if !active {
		if err := s.guardLastAdmin(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID(ctx),
			Action:   "user.active_change",
			Entity:   "user",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"active": active},
		})
	}
	return nil
}

func actorID(ctx context.Context) int64 {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}

func (s *Service) guardLastAdmin(ctx context.Context, id int64) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role != auth.RoleAdmin {
		return nil
	}
	admin := auth.RoleAdmin
	admins, _, err := s.repo.List(ctx, ListFilters{Role: &admin})
	if err != nil {
		return fmt.Errorf("users: count admins: %w", err)
	}
	active := 0
	for _, a := range admins {
		if a.IsActive {
			active++
		}
	}
	if active <= 1 {
		return ErrLastAdmin
	}
	return nil
}
