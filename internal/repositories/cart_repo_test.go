package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacy/internal/database"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const userID = "0f8fad5b-d9cb-469f-a165-70867728950e"

// setupDB opens a private in-memory sqlite database with every table migrated.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &models.Cart{}, &models.CartItem{}, &models.Prescription{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func cartRepositories(t *testing.T) map[string]repositories.CartRepository {
	return map[string]repositories.CartRepository{
		"gorm":   repositories.NewGORMCartRepository(setupDB(t)),
		"memory": repositories.NewMemoryCartRepository(),
	}
}

func newItem(cartID, productID string, quantity int, addedAt time.Time) *models.CartItem {
	return &models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Name:      productID,
		Quantity:  quantity,
		Price:     10,
		AddedAt:   addedAt,
	}
}

func TestCartRepository_CartAndItems(t *testing.T) {
	for name, repo := range cartRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.GetCartByUserID(ctx, userID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			cart := &models.Cart{UserID: userID}
			require.NoError(t, repo.CreateCart(ctx, cart))
			assert.NotEmpty(t, cart.ID)

			// One cart per user.
			assert.Error(t, repo.CreateCart(ctx, &models.Cart{UserID: userID}))

			found, err := repo.GetCartByUserID(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, cart.ID, found.ID)

			base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
			second := newItem(cart.ID, "prod-b", 1, base.Add(time.Minute))
			first := newItem(cart.ID, "prod-a", 2, base)
			require.NoError(t, repo.CreateItem(ctx, second))
			require.NoError(t, repo.CreateItem(ctx, first))

			// One line per product.
			assert.Error(t, repo.CreateItem(ctx, newItem(cart.ID, "prod-a", 1, base)))

			item, err := repo.GetItem(ctx, cart.ID, "prod-a")
			require.NoError(t, err)
			assert.Equal(t, first.ID, item.ID)
			_, err = repo.GetItem(ctx, cart.ID, "prod-z")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			require.NoError(t, repo.UpdateItemQuantity(ctx, first.ID, 5))
			item, err = repo.GetItemByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, 5, item.Quantity)
			assert.ErrorIs(t, repo.UpdateItemQuantity(ctx, "missing", 1), repositories.ErrNotFound)

			items, err := repo.ListItems(ctx, cart.ID)
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "prod-a", items[0].ProductID)
			assert.Equal(t, "prod-b", items[1].ProductID)

			require.NoError(t, repo.DeleteItem(ctx, second.ID))
			assert.ErrorIs(t, repo.DeleteItem(ctx, second.ID), repositories.ErrNotFound)
			_, err = repo.GetItemByID(ctx, second.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestCartRepository_DeleteItemsByCart(t *testing.T) {
	for name, repo := range cartRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()

			cart := &models.Cart{UserID: userID}
			require.NoError(t, repo.CreateCart(ctx, cart))
			other := &models.Cart{UserID: "7c9e6679-7425-40de-944b-e07fc1f90ae7"}
			require.NoError(t, repo.CreateCart(ctx, other))

			require.NoError(t, repo.CreateItem(ctx, newItem(cart.ID, "prod-a", 1, now)))
			require.NoError(t, repo.CreateItem(ctx, newItem(cart.ID, "prod-b", 1, now)))
			require.NoError(t, repo.CreateItem(ctx, newItem(other.ID, "prod-a", 1, now)))

			removed, err := repo.DeleteItemsByCart(ctx, cart.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			items, err := repo.ListItems(ctx, cart.ID)
			require.NoError(t, err)
			assert.Empty(t, items)

			items, err = repo.ListItems(ctx, other.ID)
			require.NoError(t, err)
			assert.Len(t, items, 1)

			_, err = repo.GetCartByUserID(ctx, userID)
			assert.NoError(t, err)
		})
	}
}

func TestCartRepository_DeleteCartRemovesItems(t *testing.T) {
	for name, repo := range cartRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			cart := &models.Cart{UserID: userID}
			require.NoError(t, repo.CreateCart(ctx, cart))
			item := newItem(cart.ID, "prod-a", 1, time.Now().UTC())
			require.NoError(t, repo.CreateItem(ctx, item))

			require.NoError(t, repo.WithTx(ctx, func(tx repositories.CartRepository) error {
				return tx.DeleteCart(ctx, cart.ID)
			}))

			_, err := repo.GetCartByUserID(ctx, userID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = repo.GetItemByID(ctx, item.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			assert.ErrorIs(t, repo.DeleteCart(ctx, cart.ID), repositories.ErrNotFound)
		})
	}
}

func TestCartRepository_WithTxRollsBack(t *testing.T) {
	for name, repo := range cartRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("boom")

			err := repo.WithTx(ctx, func(tx repositories.CartRepository) error {
				cart := &models.Cart{UserID: userID}
				if err := tx.CreateCart(ctx, cart); err != nil {
					return err
				}
				if err := tx.CreateItem(ctx, newItem(cart.ID, "prod-a", 1, time.Now().UTC())); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			_, err = repo.GetCartByUserID(ctx, userID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}
