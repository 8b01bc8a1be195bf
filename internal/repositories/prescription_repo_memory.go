package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pharmacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryPrescriptionRepository is an in-memory implementation of PrescriptionRepository.
type MemoryPrescriptionRepository struct {
	prescriptions map[string]models.Prescription
	mu            sync.RWMutex
	txMu          sync.Mutex
}

// NewMemoryPrescriptionRepository creates a new instance of MemoryPrescriptionRepository.
func NewMemoryPrescriptionRepository() *MemoryPrescriptionRepository {
	return &MemoryPrescriptionRepository{
		prescriptions: make(map[string]models.Prescription),
	}
}

func (r *MemoryPrescriptionRepository) WithTx(ctx context.Context, fn func(repo PrescriptionRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	snapshot := make(map[string]models.Prescription, len(r.prescriptions))
	for k, v := range r.prescriptions {
		snapshot[k] = v
	}
	r.mu.RUnlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.prescriptions = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

// Create adds a new prescription. The medications slice is copied so later changes by the
// caller do not leak into the store.
func (r *MemoryPrescriptionRepository) Create(ctx context.Context, prescription *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prescription.ID == "" {
		prescription.ID = uuid.New().String()
	}
	now := time.Now()
	if prescription.CreatedAt.IsZero() {
		prescription.CreatedAt = now
	}
	if prescription.UpdatedAt.IsZero() {
		prescription.UpdatedAt = now
	}
	stored := *prescription
	stored.Medications = datatypes.JSONSlice[models.Medication](append([]models.Medication(nil), prescription.Medications...))
	r.prescriptions[prescription.ID] = stored
	return nil
}

func (r *MemoryPrescriptionRepository) GetByID(ctx context.Context, id string) (*models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prescription, ok := r.prescriptions[id]
	if !ok {
		return nil, fmt.Errorf("prescription %s: %w", id, ErrNotFound)
	}
	return &prescription, nil
}

func (r *MemoryPrescriptionRepository) UpdateVerification(ctx context.Context, prescription *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.prescriptions[prescription.ID]
	if !ok {
		return fmt.Errorf("prescription %s: %w", prescription.ID, ErrNotFound)
	}
	if stored.Status != models.StatusPending {
		return fmt.Errorf("prescription %s is no longer pending: %w", prescription.ID, ErrConflict)
	}
	stored.Status = prescription.Status
	stored.VerifiedBy = prescription.VerifiedBy
	stored.VerifiedAt = prescription.VerifiedAt
	stored.Notes = prescription.Notes
	stored.UpdatedAt = prescription.UpdatedAt
	r.prescriptions[prescription.ID] = stored
	return nil
}
