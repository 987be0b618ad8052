package visibility

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	edges map[int64][]int64 // product id -> user ids
	roles map[int64]string  // user id -> role

	restrictedErr error
	assignedErr   error

	replacedProduct int64
	replacedUsers   []int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		edges: make(map[int64][]int64),
		roles: make(map[int64]string),
	}
}

func (m *mockRepository) RestrictedProductIDs(ctx context.Context) (map[int64]struct{}, error) {
	if m.restrictedErr != nil {
		return nil, m.restrictedErr
	}
	ids := make(map[int64]struct{})
	for productID, users := range m.edges {
		if len(users) > 0 {
			ids[productID] = struct{}{}
		}
	}
	return ids, nil
}

func (m *mockRepository) AssignedProductIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	if m.assignedErr != nil {
		return nil, m.assignedErr
	}
	ids := make(map[int64]struct{})
	for productID, users := range m.edges {
		for _, u := range users {
			if u == userID {
				ids[productID] = struct{}{}
			}
		}
	}
	return ids, nil
}

func (m *mockRepository) ListAssignees(ctx context.Context, productID int64) ([]Assignee, error) {
	var assignees []Assignee
	for _, u := range m.edges[productID] {
		assignees = append(assignees, Assignee{UserID: u})
	}
	return assignees, nil
}

func (m *mockRepository) Replace(ctx context.Context, productID int64, userIDs []int64) error {
	m.replacedProduct = productID
	m.replacedUsers = userIDs
	m.edges[productID] = userIDs
	return nil
}

func (m *mockRepository) HasAssignments(ctx context.Context, productID int64) (bool, error) {
	if m.restrictedErr != nil {
		return false, m.restrictedErr
	}
	return len(m.edges[productID]) > 0, nil
}

func (m *mockRepository) IsAssigned(ctx context.Context, productID, userID int64) (bool, error) {
	if m.assignedErr != nil {
		return false, m.assignedErr
	}
	for _, u := range m.edges[productID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) NonAdminUserIDs(ctx context.Context, userIDs []int64) ([]int64, error) {
	var out []int64
	for _, id := range userIDs {
		if m.roles[id] != "admin" {
			out = append(out, id)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func visibleIDs(scope Scope, productIDs ...int64) []int64 {
	var out []int64
	for _, id := range productIDs {
		if scope.Visible(id) {
			out = append(out, id)
		}
	}
	return out
}

func TestScopeForFilterMatrix(t *testing.T) {
	// Product 1 has no edges, product 2 is assigned to user 10.
	repo := newMockRepository()
	repo.edges[2] = []int64{10}
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	t.Run("anonymous sees only unrestricted products", func(t *testing.T) {
		scope := svc.ScopeFor(ctx, Anonymous)
		assert.Equal(t, []int64{1}, visibleIDs(scope, 1, 2))
	})

	t.Run("assigned user sees their restricted product", func(t *testing.T) {
		scope := svc.ScopeFor(ctx, Viewer{UserID: 10, Authenticated: true})
		assert.Equal(t, []int64{1, 2}, visibleIDs(scope, 1, 2))
	})

	t.Run("other authenticated user does not", func(t *testing.T) {
		scope := svc.ScopeFor(ctx, Viewer{UserID: 11, Authenticated: true})
		assert.Equal(t, []int64{1}, visibleIDs(scope, 1, 2))
	})

	t.Run("admin sees everything without an edge", func(t *testing.T) {
		scope := svc.ScopeFor(ctx, Viewer{UserID: 99, IsAdmin: true, Authenticated: true})
		assert.Equal(t, []int64{1, 2}, visibleIDs(scope, 1, 2))
	})
}

func TestScopeForFailsOpenOnLookupFailure(t *testing.T) {
	repo := newMockRepository()
	repo.edges[2] = []int64{10}
	repo.restrictedErr = errors.New("network down")
	svc := NewService(repo, testLogger())

	scope := svc.ScopeFor(context.Background(), Anonymous)
	assert.True(t, scope.All, "lookup failure must degrade to showing everything")
	assert.Equal(t, []int64{1, 2}, visibleIDs(scope, 1, 2))
}

func TestScopeForFailsClosedHidesEverything(t *testing.T) {
	repo := newMockRepository()
	repo.edges[2] = []int64{10}
	repo.restrictedErr = errors.New("network down")
	svc := NewService(repo, testLogger())
	svc.policy = FailClosed

	scope := svc.ScopeFor(context.Background(), Anonymous)
	assert.True(t, scope.None)
	assert.False(t, scope.Visible(2), "fail-closed must hide restricted-capable products")
	assert.False(t, scope.Visible(1), "without the aggregate no product can be proven unrestricted")

	repo2 := newMockRepository()
	repo2.edges[2] = []int64{10}
	repo2.restrictedErr = errors.New("network down")
	svc2 := NewService(repo2, testLogger())
	svc2.policy = FailClosed
	assert.False(t, svc2.CanView(context.Background(), Anonymous, 1), "single-product check follows the same policy")
}

func TestScopeForFailsOpenOnOwnEdgeLookupFailure(t *testing.T) {
	repo := newMockRepository()
	repo.edges[2] = []int64{10}
	repo.assignedErr = errors.New("network down")
	svc := NewService(repo, testLogger())

	scope := svc.ScopeFor(context.Background(), Viewer{UserID: 11, Authenticated: true})
	assert.True(t, scope.All)
}

func TestCanView(t *testing.T) {
	repo := newMockRepository()
	repo.edges[2] = []int64{10}
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	assert.True(t, svc.CanView(ctx, Anonymous, 1))
	assert.False(t, svc.CanView(ctx, Anonymous, 2))
	assert.True(t, svc.CanView(ctx, Viewer{UserID: 10, Authenticated: true}, 2))
	assert.False(t, svc.CanView(ctx, Viewer{UserID: 11, Authenticated: true}, 2))
	assert.True(t, svc.CanView(ctx, Viewer{UserID: 99, IsAdmin: true, Authenticated: true}, 2))

	repo.restrictedErr = errors.New("network down")
	assert.True(t, svc.CanView(ctx, Anonymous, 2), "lookup failure fails open")
}

func TestScopeVisibleUnrestrictedAlways(t *testing.T) {
	scope := Scope{Restricted: map[int64]struct{}{2: {}}}
	assert.True(t, scope.Visible(1))
	assert.False(t, scope.Visible(2))
}

func TestReplaceStripsAdminsAndDuplicates(t *testing.T) {
	repo := newMockRepository()
	repo.roles[1] = "admin"
	repo.roles[2] = "user"
	repo.roles[3] = "user"
	svc := NewService(repo, testLogger())

	err := svc.Replace(context.Background(), 7, []int64{1, 2, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), repo.replacedProduct)
	assert.Equal(t, []int64{2, 3}, repo.replacedUsers)
}

func TestReplaceEmptySetClearsEdges(t *testing.T) {
	repo := newMockRepository()
	repo.edges[7] = []int64{2}
	svc := NewService(repo, testLogger())

	require.NoError(t, svc.Replace(context.Background(), 7, nil))
	assert.Empty(t, repo.replacedUsers)

	scope := svc.ScopeFor(context.Background(), Anonymous)
	assert.True(t, scope.Visible(7), "product with cleared edges is public again")
}
