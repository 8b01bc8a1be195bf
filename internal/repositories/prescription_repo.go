package repositories

import (
	"context"

	"pharmacy/internal/models"
)

// PrescriptionRepository defines the interface for prescription data access.
type PrescriptionRepository interface {
	WithTx(ctx context.Context, fn func(repo PrescriptionRepository) error) error

	Create(ctx context.Context, prescription *models.Prescription) error
	GetByID(ctx context.Context, id string) (*models.Prescription, error)
	// UpdateVerification persists the verification fields only if the stored prescription is
	// still pending. It returns ErrConflict otherwise.
	UpdateVerification(ctx context.Context, prescription *models.Prescription) error
}
