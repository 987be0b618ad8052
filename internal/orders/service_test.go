package orders

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvare/nordvare/internal/cart"
	"github.com/nordvare/nordvare/internal/shared"
)

type mockRepository struct {
	orders    map[int64]Order
	nextID    int64
	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[int64]Order), nextID: 1}
}

func (m *mockRepository) CreateWithItems(ctx context.Context, o Order) (Order, error) {
	if m.createErr != nil {
		return Order{}, m.createErr
	}
	o.ID = m.nextID
	m.nextID++
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockRepository) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	var out []Order
	for _, o := range m.orders {
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return o, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	o, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

type mockCartStore struct {
	carts   map[string]cart.Cart
	cleared []string
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]cart.Cart)}
}

func (m *mockCartStore) Get(ctx context.Context, cartID string) (cart.Cart, error) {
	return m.carts[cartID], nil
}

func (m *mockCartStore) Clear(ctx context.Context, cartID string) error {
	m.cleared = append(m.cleared, cartID)
	delete(m.carts, cartID)
	return nil
}

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) EnqueueMail(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

type mockIdem struct {
	keys    map[string]struct{}
	deleted []string
}

func newMockIdem() *mockIdem {
	return &mockIdem{keys: make(map[string]struct{})}
}

func (m *mockIdem) CheckAndInsert(ctx context.Context, key, module string) error {
	if _, ok := m.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = struct{}{}
	return nil
}

func (m *mockIdem) Delete(ctx context.Context, key string) error {
	delete(m.keys, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type fixture struct {
	repo   *mockRepository
	carts  *mockCartStore
	mailer *mockMailer
	idem   *mockIdem
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:   newMockRepository(),
		carts:  newMockCartStore(),
		mailer: &mockMailer{},
		idem:   newMockIdem(),
	}
	f.svc = NewService(f.repo, f.carts, f.mailer, f.idem, slog.Default())
	return f
}

func testForm() CheckoutForm {
	return CheckoutForm{
		Name: "Kari Nordmann", Email: "kari@example.com", Phone: "12345678",
		Address: "Storgata 1", PostalCode: "0155", City: "Oslo",
	}
}

func testCart() cart.Cart {
	return cart.Cart{Items: []cart.Item{
		{ProductID: 1, Name: "Hose", Price: 249.5, Quantity: 2},
		{ProductID: 2, Name: "Valve", Price: 99, Quantity: 1},
	}}
}

func TestCheckoutRecomputesTotals(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()

	order, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "")
	require.NoError(t, err)

	// subtotal 598, VAT 25% on top
	assert.InDelta(t, 598.0, order.Subtotal, 1e-9)
	assert.InDelta(t, 747.5, order.Total, 1e-9)
	assert.Equal(t, StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Hose", order.Items[0].Name)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCheckoutClearsCartAndQueuesEmail(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()

	_, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, f.carts.cleared)
	assert.Equal(t, []string{"kari@example.com"}, f.mailer.sent)
}

func TestCheckoutEmailFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()
	f.mailer.err = errors.New("queue down")

	order, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "")
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Checkout(context.Background(), nil, "empty", testForm(), "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.mailer.sent)
}

func TestCheckoutDuplicateSubmission(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()

	_, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "key-1")
	require.NoError(t, err)

	f.carts.carts["c1"] = testCart()
	_, err = f.svc.Checkout(context.Background(), nil, "c1", testForm(), "key-1")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.Len(t, f.mailer.sent, 1)
}

func TestCheckoutFailureReleasesIdempotencyKey(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()
	f.repo.createErr = errors.New("db down")

	_, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "key-1")
	require.Error(t, err)
	assert.Equal(t, []string{"key-1"}, f.idem.deleted, "a failed checkout must be retryable with the same key")
	assert.Empty(t, f.carts.cleared)
	assert.Empty(t, f.mailer.sent)
}

func TestCheckoutGuestHasNoUserID(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()

	order, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "")
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()
	order, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "")
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(context.Background(), order.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)

	got, err = f.svc.UpdateStatus(context.Background(), order.ID, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)

	// Delivered is terminal.
	_, err = f.svc.UpdateStatus(context.Background(), order.ID, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := f.svc.UpdateStatus(context.Background(), 1, Status("shipped"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	f := newFixture()
	f.carts.carts["c1"] = testCart()
	order, err := f.svc.Checkout(context.Background(), nil, "c1", testForm(), "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, StatusCancelled)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), order.ID, StatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTotalWithVAT(t *testing.T) {
	assert.InDelta(t, 125.0, TotalWithVAT(100), 1e-9)
	assert.InDelta(t, 0.0, TotalWithVAT(0), 1e-9)
	// Rounds to two decimals.
	assert.InDelta(t, 12.49, TotalWithVAT(9.99), 1e-9)
}
