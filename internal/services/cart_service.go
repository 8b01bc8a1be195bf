package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/pkg/rabbitmq"

	"github.com/google/uuid"
)

// EventPublisher schedules a domain event for asynchronous delivery.
type EventPublisher interface {
	Enqueue(job rabbitmq.Job) bool
}

// CartService handles business logic related to carts.
type CartService struct {
	repo      repositories.CartRepository
	catalog   repositories.CatalogRepository
	publisher EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewCartService creates a new CartService. publisher may be nil, in which case no events
// are emitted.
func NewCartService(repo repositories.CartRepository, catalog repositories.CatalogRepository, publisher EventPublisher, log *slog.Logger) *CartService {
	return &CartService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *CartService) WithClock(now func() time.Time) *CartService {
	s.now = now
	return s
}

// AddItem puts quantity units of productID into the user's cart. A repeated product is merged
// into the existing line, and the merged quantity must still be within bounds.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItemView, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product %s: %w", productID, err)
	}

	var item *models.CartItem
	err = s.repo.WithTx(ctx, func(tx repositories.CartRepository) error {
		cart, err := s.findOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		existing, err := tx.GetItem(ctx, cart.ID, productID)
		switch {
		case err == nil:
			merged := existing.Quantity + quantity
			if err := ValidateQuantity(merged); err != nil {
				return err
			}
			if err := tx.UpdateItemQuantity(ctx, existing.ID, merged); err != nil {
				return err
			}
			existing.Quantity = merged
			item = existing
		case errors.Is(err, repositories.ErrNotFound):
			item = &models.CartItem{
				ID:        uuid.New().String(),
				CartID:    cart.ID,
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  quantity,
				Price:     product.Price,
				AddedAt:   s.now().UTC(),
			}
			if err := tx.CreateItem(ctx, item); err != nil {
				return err
			}
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := itemView(*item)
	return &view, nil
}

func (s *CartService) findOrCreateCart(ctx context.Context, tx repositories.CartRepository, userID string) (*models.Cart, error) {
	cart, err := tx.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	cart = &models.Cart{ID: uuid.New().String(), UserID: userID}
	if err := tx.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	s.log.Info("cart created", "user_id", userID, "cart_id", cart.ID)
	return cart, nil
}

// RemoveItem deletes a single cart line by its ID.
func (s *CartService) RemoveItem(ctx context.Context, itemID string) (*models.RemoveItemView, error) {
	err := s.repo.WithTx(ctx, func(tx repositories.CartRepository) error {
		item, err := tx.GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		s.log.Info("cart item removed", "item_id", item.ID, "cart_id", item.CartID, "product_id", item.ProductID)
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &models.RemoveItemView{
		Message:       "Item removed from cart",
		DeletedItemID: itemID,
	}, nil
}

// ClearCart empties the user's cart and announces it on the cart_cleared queue. The cart row
// itself is kept.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*models.ClearCartView, error) {
	err := s.repo.WithTx(ctx, func(tx repositories.CartRepository) error {
		cart, err := tx.GetCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCartNotFound
			}
			return err
		}
		removed, err := tx.DeleteItemsByCart(ctx, cart.ID)
		if err != nil {
			return err
		}
		s.log.Info("cart cleared", "user_id", userID, "removed_items", removed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	clearedAt := s.now().UTC()
	s.emit(models.CartClearedQueue, true, models.CartClearedEvent{
		UserID:    userID,
		ClearedAt: clearedAt,
	})

	return &models.ClearCartView{
		Message:   "Cart cleared",
		ClearedAt: clearedAt,
	}, nil
}

// GetCart returns the user's cart. A user without a cart gets an empty view.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	view := &models.CartView{UserID: userID, Items: []models.CartItemView{}}

	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return view, nil
		}
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		view.Items = append(view.Items, itemView(item))
	}
	view.TotalPrice = CartTotal(items)
	return view, nil
}

func (s *CartService) emit(queue string, durable bool, event interface{}) {
	if s.publisher == nil {
		s.log.Warn("event publisher not configured, skipping message", "queue", queue)
		return
	}
	s.publisher.Enqueue(rabbitmq.Job{Queue: queue, Durable: durable, Payload: event})
}

func itemView(item models.CartItem) models.CartItemView {
	return models.CartItemView{
		ID:         item.ID,
		ProductID:  item.ProductID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Price:      item.Price,
		TotalPrice: LineTotal(item.Price, item.Quantity),
		AddedAt:    item.AddedAt,
	}
}
