package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pharmacy/internal/models"

	"github.com/google/uuid"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
type MemoryCartRepository struct {
	carts map[string]models.Cart
	items map[string]models.CartItem
	mu    sync.RWMutex
	txMu  sync.Mutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[string]models.Cart),
		items: make(map[string]models.CartItem),
	}
}

// WithTx serializes transactions and restores the previous state when fn fails.
func (r *MemoryCartRepository) WithTx(ctx context.Context, fn func(repo CartRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	carts := make(map[string]models.Cart, len(r.carts))
	for k, v := range r.carts {
		carts[k] = v
	}
	items := make(map[string]models.CartItem, len(r.items))
	for k, v := range r.items {
		items[k] = v
	}
	r.mu.RUnlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.carts, r.items = carts, items
		r.mu.Unlock()
		return err
	}
	return nil
}

// GetCartByUserID returns the cart owned by userID.
func (r *MemoryCartRepository) GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cart := range r.carts {
		if cart.UserID == userID {
			c := cart
			return &c, nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
}

// CreateCart adds a new cart.
func (r *MemoryCartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.carts {
		if existing.UserID == cart.UserID {
			return fmt.Errorf("cart for user %s already exists", cart.UserID)
		}
	}
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	now := time.Now()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	r.carts[cart.ID] = *cart
	return nil
}

// DeleteCart removes a cart and all of its items.
func (r *MemoryCartRepository) DeleteCart(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[id]; !ok {
		return fmt.Errorf("cart %s: %w", id, ErrNotFound)
	}
	for itemID, item := range r.items {
		if item.CartID == id {
			delete(r.items, itemID)
		}
	}
	delete(r.carts, id)
	return nil
}

func (r *MemoryCartRepository) GetItem(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			i := item
			return &i, nil
		}
	}
	return nil, fmt.Errorf("item %s in cart %s: %w", productID, cartID, ErrNotFound)
}

func (r *MemoryCartRepository) GetItemByID(ctx context.Context, id string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	return &item, nil
}

// ListItems returns the cart's items ordered by the time they were added.
func (r *MemoryCartRepository) ListItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.CartItem, 0)
	for _, item := range r.items {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (r *MemoryCartRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[item.CartID]; !ok {
		return fmt.Errorf("cart %s: %w", item.CartID, ErrNotFound)
	}
	for _, existing := range r.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			return fmt.Errorf("product %s is already in cart %s", item.ProductID, item.CartID)
		}
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryCartRepository) UpdateItemQuantity(ctx context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	item.Quantity = quantity
	r.items[id] = item
	return nil
}

func (r *MemoryCartRepository) DeleteItem(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryCartRepository) DeleteItemsByCart(ctx context.Context, cartID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}
