package repositories

import (
	"context"
	"errors"
	"fmt"

	"pharmacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPrescriptionRepository is a GORM implementation of PrescriptionRepository.
type GORMPrescriptionRepository struct {
	db *gorm.DB
}

// NewGORMPrescriptionRepository creates a new instance of GORMPrescriptionRepository.
func NewGORMPrescriptionRepository(db *gorm.DB) *GORMPrescriptionRepository {
	return &GORMPrescriptionRepository{
		db: db,
	}
}

func (r *GORMPrescriptionRepository) WithTx(ctx context.Context, fn func(repo PrescriptionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMPrescriptionRepository{db: tx})
	})
}

// Create inserts a new prescription.
func (r *GORMPrescriptionRepository) Create(ctx context.Context, prescription *models.Prescription) error {
	if prescription.ID == "" {
		prescription.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(prescription).Error; err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

// GetByID retrieves a prescription by its ID.
func (r *GORMPrescriptionRepository) GetByID(ctx context.Context, id string) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := r.db.WithContext(ctx).First(&prescription, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prescription %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prescription %s: %w", id, err)
	}
	return &prescription, nil
}

// UpdateVerification writes the verification outcome guarded by status = pending.
func (r *GORMPrescriptionRepository) UpdateVerification(ctx context.Context, prescription *models.Prescription) error {
	res := r.db.WithContext(ctx).Model(&models.Prescription{}).
		Where("id = ? AND status = ?", prescription.ID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      prescription.Status,
			"verified_by": prescription.VerifiedBy,
			"verified_at": prescription.VerifiedAt,
			"notes":       prescription.Notes,
			"updated_at":  prescription.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to verify prescription %s: %w", prescription.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("prescription %s is no longer pending: %w", prescription.ID, ErrConflict)
	}
	return nil
}
