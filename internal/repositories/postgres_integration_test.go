//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"pharmacy/internal/database"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pharmacy"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(database.DriverPostgres, dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &models.Cart{}, &models.CartItem{}, &models.Prescription{}))

	t.Run("cart cascade", func(t *testing.T) {
		repo := repositories.NewGORMCartRepository(db)
		cart := &models.Cart{UserID: userID}
		require.NoError(t, repo.CreateCart(ctx, cart))
		item := newItem(cart.ID, "prod-a", 3, time.Now().UTC())
		require.NoError(t, repo.CreateItem(ctx, item))
		assert.Error(t, repo.CreateItem(ctx, newItem(cart.ID, "prod-a", 1, time.Now().UTC())))

		require.NoError(t, repo.DeleteCart(ctx, cart.ID))
		_, err := repo.GetItemByID(ctx, item.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("prescription verification", func(t *testing.T) {
		repo := repositories.NewGORMPrescriptionRepository(db)
		prescription := newPrescription()
		require.NoError(t, repo.Create(ctx, prescription))

		stored, err := repo.GetByID(ctx, prescription.ID)
		require.NoError(t, err)
		require.Len(t, stored.Medications, 3)
		assert.Equal(t, "Paracetamol", stored.Medications[0].ProductName)

		verifiedBy := "9b2f1c64-3d1e-4e1b-bf4b-6f0d2f6b8a11"
		verifiedAt := time.Now().UTC()
		prescription.Status = models.StatusApproved
		prescription.VerifiedBy = &verifiedBy
		prescription.VerifiedAt = &verifiedAt
		require.NoError(t, repo.UpdateVerification(ctx, prescription))
		assert.ErrorIs(t, repo.UpdateVerification(ctx, prescription), repositories.ErrConflict)
	})
}
