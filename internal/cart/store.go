package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an untouched cart survives. Every write refreshes
// it, so active carts never expire mid-session.
const DefaultTTL = 30 * 24 * time.Hour

// ErrItemNotFound is returned when updating or removing a line that is not
// in the cart.
var ErrItemNotFound = errors.New("cart: item not found")

// Store persists carts in Redis, one JSON document per cart id. It carries
// no package-level state; construct one and inject it.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

func cartKey(cartID string) string {
	return "cart:" + cartID
}

// Get loads the cart, empty when the key is absent.
func (s *Store) Get(ctx context.Context, cartID string) (Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("cart: load: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, fmt.Errorf("cart: decode: %w", err)
	}
	return c, nil
}

// Add merges the item into the cart. An existing line for the same product
// has the quantities summed; the snapshot fields are refreshed from the
// incoming item. Quantity is not capped against stock here.
func (s *Store) Add(ctx context.Context, cartID string, item Item) (Cart, error) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			item.Quantity += c.Items[i].Quantity
			c.Items[i] = item
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, item)
	}
	return c, s.save(ctx, cartID, c)
}

// UpdateQuantity sets the quantity of one line, clamped at a minimum of 1.
// Removing a line is an explicit Remove, never a zero-quantity update.
func (s *Store) UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return c, s.save(ctx, cartID, c)
		}
	}
	return Cart{}, ErrItemNotFound
}

// Remove deletes one line from the cart.
func (s *Store) Remove(ctx context.Context, cartID string, productID int64) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return c, s.save(ctx, cartID, c)
		}
	}
	return Cart{}, ErrItemNotFound
}

// Clear drops the whole cart.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, cartID string, c Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cartID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}
