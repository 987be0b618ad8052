package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nordvare/nordvare/internal/cart"
	"github.com/nordvare/nordvare/internal/shared"
)

// CartStore is the slice of the cart store checkout needs. Satisfied by
// *cart.Store.
type CartStore interface {
	Get(ctx context.Context, cartID string) (cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

// MailEnqueuer queues a transactional email. Satisfied by *jobs.Client.
type MailEnqueuer interface {
	EnqueueMail(ctx context.Context, to, subject, body string) error
}

// IdempotencyGuard persists processed request keys. Satisfied by
// *shared.IdempotencyStore.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

const idempotencyModule = "orders"

// CheckoutForm carries the shipping details submitted at checkout. There is
// no total field on purpose; totals are recomputed from the cart.
type CheckoutForm struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Address    string `json:"address" validate:"required,max=300"`
	PostalCode string `json:"postal_code" validate:"required,max=16"`
	City       string `json:"city" validate:"required,max=100"`
}

type Service struct {
	repo   Repository
	carts  CartStore
	mail   MailEnqueuer
	idem   IdempotencyGuard
	logger *slog.Logger
}

func NewService(repo Repository, carts CartStore, mail MailEnqueuer, idem IdempotencyGuard, logger *slog.Logger) *Service {
	return &Service{repo: repo, carts: carts, mail: mail, idem: idem, logger: logger}
}

// Checkout turns the cart into an order. Subtotal and total are recomputed
// from the stored cart lines; the order and its items are written in a
// single transaction; the cart is cleared and a confirmation email queued
// afterwards. Email and cart-clear failures are logged, never returned.
// UserID is nil for guest checkout.
func (s *Service) Checkout(ctx context.Context, userID *int64, cartID string, form CheckoutForm, idempotencyKey string) (Order, error) {
	if idempotencyKey != "" {
		if err := s.idem.CheckAndInsert(ctx, idempotencyKey, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Order{}, ErrDuplicateSubmission
			}
			return Order{}, fmt.Errorf("orders: idempotency check: %w", err)
		}
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		return Order{}, fmt.Errorf("orders: load cart: %w", err)
	}
	if len(c.Items) == 0 {
		s.releaseKey(ctx, idempotencyKey)
		return Order{}, ErrEmptyCart
	}

	subtotal := c.Total()
	order := Order{
		UserID:     userID,
		Status:     StatusPending,
		Subtotal:   subtotal,
		Total:      TotalWithVAT(subtotal),
		Name:       form.Name,
		Email:      form.Email,
		Phone:      form.Phone,
		Address:    form.Address,
		PostalCode: form.PostalCode,
		City:       form.City,
	}
	for _, line := range c.Items {
		order.Items = append(order.Items, Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Stock:     line.Stock,
			Quantity:  line.Quantity,
		})
	}

	order, err = s.repo.CreateWithItems(ctx, order)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		return Order{}, fmt.Errorf("orders: create: %w", err)
	}

	if err := s.carts.Clear(ctx, cartID); err != nil {
		s.logger.Warn("clear cart after checkout", slog.Int64("order_id", order.ID), slog.Any("error", err))
	}
	if err := s.mail.EnqueueMail(ctx, order.Email, confirmationSubject(order), confirmationBody(order)); err != nil {
		s.logger.Warn("enqueue confirmation email", slog.Int64("order_id", order.ID), slog.Any("error", err))
	}

	return order, nil
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idem.Delete(ctx, key); err != nil {
		s.logger.Warn("release idempotency key", slog.Any("error", err))
	}
}

// ListMine returns the viewer's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Order, shared.Pagination, error) {
	orders, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("orders: list: %w", err)
	}
	return orders, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves an order to a new lifecycle state, rejecting
// transitions out of the terminal states.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !order.Status.CanTransitionTo(next) {
		return Order{}, fmt.Errorf("%w: cannot move %s to %s", ErrInvalidTransition, order.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return Order{}, fmt.Errorf("orders: update status: %w", err)
	}
	order.Status = next
	return order, nil
}

func confirmationSubject(o Order) string {
	return fmt.Sprintf("Order confirmation #%d", o.ID)
}

func confirmationBody(o Order) string {
	body := fmt.Sprintf("Hi %s,\n\nThanks for your order #%d.\n\n", o.Name, o.ID)
	for _, item := range o.Items {
		body += fmt.Sprintf("  %d x %s at %.2f\n", item.Quantity, item.Name, item.Price)
	}
	body += fmt.Sprintf("\nSubtotal: %.2f\nTotal incl. VAT: %.2f\n", o.Subtotal, o.Total)
	return body
}
