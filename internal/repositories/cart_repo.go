package repositories

import (
	"context"

	"pharmacy/internal/models"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	// WithTx runs fn against a repository bound to a single transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(repo CartRepository) error) error

	GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	// DeleteCart removes the cart together with all of its items.
	DeleteCart(ctx context.Context, id string) error

	GetItem(ctx context.Context, cartID, productID string) (*models.CartItem, error)
	GetItemByID(ctx context.Context, id string) (*models.CartItem, error)
	ListItems(ctx context.Context, cartID string) ([]models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, id string, quantity int) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByCart(ctx context.Context, cartID string) (int64, error)
}
