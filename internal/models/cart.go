package models

import "time"

// Cart is a user's active collection of pending purchase items. A user owns at most one cart.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items     []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is a single product line in a cart. Name and Price are snapshotted from the
// catalog when the line is first added.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"uniqueIndex:idx_cart_items_cart_product;type:varchar(36);not null"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_cart_items_cart_product;type:varchar(64);not null"`
	Name      string    `json:"name" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
	AddedAt   time.Time `json:"added_at"`
}

// CartItemView is a cart line as returned to clients.
type CartItemView struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	TotalPrice float64   `json:"total_price"`
	AddedAt    time.Time `json:"added_at"`
}

// CartView is the full cart of a user. A user without a cart gets an empty view.
type CartView struct {
	UserID     string         `json:"user_id"`
	Items      []CartItemView `json:"items"`
	TotalPrice float64        `json:"total_price"`
}

type RemoveItemView struct {
	Message       string `json:"message"`
	DeletedItemID string `json:"deleted_item_id"`
}

type ClearCartView struct {
	Message   string    `json:"message"`
	ClearedAt time.Time `json:"cleared_at"`
}
