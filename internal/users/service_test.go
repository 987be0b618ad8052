package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/shared"
)

type mockRepository struct {
	users map[int64]auth.User
}

func newMockRepository(users ...auth.User) *mockRepository {
	m := &mockRepository{users: make(map[int64]auth.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockRepository) List(ctx context.Context, filters ListFilters) ([]auth.User, int, error) {
	var out []auth.User
	for _, u := range m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return auth.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *mockRepository) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	m.users[id] = u
	return nil
}

func admin(id int64) auth.User {
	return auth.User{ID: id, Email: "admin@example.com", Role: auth.RoleAdmin, IsActive: true}
}

func regular(id int64) auth.User {
	return auth.User{ID: id, Email: "user@example.com", Role: auth.RoleUser, IsActive: true}
}

func TestUpdateRolePromotes(t *testing.T) {
	repo := newMockRepository(admin(1), regular(2))
	svc := NewService(repo)

	require.NoError(t, svc.UpdateRole(context.Background(), 2, auth.RoleAdmin))
	assert.Equal(t, auth.RoleAdmin, repo.users[2].Role)
}

func TestUpdateRoleRefusesDemotingLastAdmin(t *testing.T) {
	repo := newMockRepository(admin(1), regular(2))
	svc := NewService(repo)

	err := svc.UpdateRole(context.Background(), 1, auth.RoleUser)
	assert.ErrorIs(t, err, ErrLastAdmin)
	assert.Equal(t, auth.RoleAdmin, repo.users[1].Role)
}

func TestUpdateRoleDemotesWhenAnotherAdminRemains(t *testing.T) {
	second := admin(3)
	repo := newMockRepository(admin(1), second)
	svc := NewService(repo)

	require.NoError(t, svc.UpdateRole(context.Background(), 1, auth.RoleUser))
	assert.Equal(t, auth.RoleUser, repo.users[1].Role)
}

func TestUpdateRoleUnknownRole(t *testing.T) {
	svc := NewService(newMockRepository(regular(2)))
	assert.Error(t, svc.UpdateRole(context.Background(), 2, auth.Role("owner")))
}

func TestSetActiveDeactivatesUser(t *testing.T) {
	repo := newMockRepository(admin(1), regular(2))
	svc := NewService(repo)

	require.NoError(t, svc.SetActive(context.Background(), 2, false))
	assert.False(t, repo.users[2].IsActive)
}

func TestSetActiveRefusesLastAdmin(t *testing.T) {
	repo := newMockRepository(admin(1))
	svc := NewService(repo)

	err := svc.SetActive(context.Background(), 1, false)
	assert.ErrorIs(t, err, ErrLastAdmin)
	assert.True(t, repo.users[1].IsActive)
}

func TestSetActiveMissingUser(t *testing.T) {
	svc := NewService(newMockRepository())
	assert.ErrorIs(t, svc.SetActive(context.Background(), 9, false), shared.ErrNotFound)
}

type mockAudit struct {
	logs []shared.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func TestMutationsRecordAuditTrail(t *testing.T) {
	repo := newMockRepository(admin(1), regular(2))
	audit := &mockAudit{}
	svc := NewService(repo)
	svc.WithAudit(audit)

	require.NoError(t, svc.UpdateRole(context.Background(), 2, auth.RoleAdmin))
	require.NoError(t, svc.SetActive(context.Background(), 2, false))

	require.Len(t, audit.logs, 2)
	assert.Equal(t, "user.role_change", audit.logs[0].Action)
	assert.Equal(t, "2", audit.logs[0].EntityID)
	assert.Equal(t, "user.active_change", audit.logs[1].Action)
	assert.Equal(t, false, audit.logs[1].Meta["active"])
}
