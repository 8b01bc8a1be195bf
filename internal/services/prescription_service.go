package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/pkg/rabbitmq"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Outcome messages returned by Verify.
const (
	msgUploaded = "Prescription uploaded successfully"
	msgApproved = "Prescription approved"
	msgRejected = "Prescription rejected"
)

// PrescriptionService handles upload, verification and retrieval of prescriptions.
type PrescriptionService struct {
	repo      repositories.PrescriptionRepository
	publisher EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewPrescriptionService creates a new PrescriptionService. publisher may be nil.
func NewPrescriptionService(repo repositories.PrescriptionRepository, publisher EventPublisher, log *slog.Logger) *PrescriptionService {
	return &PrescriptionService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *PrescriptionService) WithClock(now func() time.Time) *PrescriptionService {
	s.now = now
	return s
}

func validateUpload(in models.PrescriptionInput, today time.Time) error {
	if err := ValidateDates(in.IssueDate, in.ExpiryDate, today); err != nil {
		return err
	}
	if err := ValidateMedications(in.Medications); err != nil {
		return err
	}
	return ValidateDoctorInfo(in.DoctorName, in.ClinicName)
}

// Upload validates and stores a new pending prescription, then announces it on the
// prescription_uploaded queue.
func (s *PrescriptionService) Upload(ctx context.Context, in models.PrescriptionInput) (*models.PrescriptionUploadView, error) {
	now := s.now()
	if err := validateUpload(in, now); err != nil {
		return nil, err
	}

	prescription := &models.Prescription{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		DoctorName:  in.DoctorName,
		ClinicName:  in.ClinicName,
		IssueDate:   DateOf(in.IssueDate),
		ExpiryDate:  DateOf(in.ExpiryDate),
		Medications: datatypes.JSONSlice[models.Medication](append([]models.Medication(nil), in.Medications...)),
		ImageURL:    in.ImageURL,
		Status:      models.StatusPending,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	err := s.repo.WithTx(ctx, func(tx repositories.PrescriptionRepository) error {
		return tx.Create(ctx, prescription)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("prescription uploaded", "prescription_id", prescription.ID, "user_id", prescription.UserID)

	s.emit(models.PrescriptionUploadedQueue, false, models.PrescriptionUploadedEvent{
		PrescriptionID: prescription.ID,
		UserID:         prescription.UserID,
		DoctorName:     prescription.DoctorName,
		UploadedAt:     prescription.CreatedAt,
	})

	return &models.PrescriptionUploadView{
		ID:        prescription.ID,
		UserID:    prescription.UserID,
		Status:    prescription.Status,
		CreatedAt: prescription.CreatedAt,
		Message:   msgUploaded,
	}, nil
}

// Verify moves a pending prescription to approved or rejected. A prescription can be
// verified only once.
func (s *PrescriptionService) Verify(ctx context.Context, id string, in models.VerifyInput) (*models.PrescriptionVerifyView, error) {
	now := s.now()
	var verified *models.Prescription

	err := s.repo.WithTx(ctx, func(tx repositories.PrescriptionRepository) error {
		prescription, err := tx.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPrescriptionNotFound
			}
			return err
		}

		if err := ValidatePending(prescription.Status); err != nil {
			return err
		}
		if err := ValidateNotExpired(prescription.ExpiryDate, now); err != nil {
			return err
		}
		if err := ValidateVerifier(in.VerifiedBy); err != nil {
			return err
		}
		if err := ValidateVerifyStatus(in.Status); err != nil {
			return err
		}

		verifiedBy := in.VerifiedBy
		verifiedAt := now.UTC()
		prescription.Status = in.Status
		prescription.VerifiedBy = &verifiedBy
		prescription.VerifiedAt = &verifiedAt
		prescription.Notes = in.Notes
		prescription.UpdatedAt = verifiedAt

		if err := tx.UpdateVerification(ctx, prescription); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return ErrAlreadyVerified
			}
			return err
		}
		verified = prescription
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("prescription verified", "prescription_id", id, "status", verified.Status, "verified_by", in.VerifiedBy)

	message := msgRejected
	if verified.Status == models.StatusApproved {
		message = msgApproved
	}
	return &models.PrescriptionVerifyView{
		ID:         verified.ID,
		Status:     verified.Status,
		VerifiedBy: *verified.VerifiedBy,
		VerifiedAt: *verified.VerifiedAt,
		Notes:      verified.Notes,
		Message:    message,
	}, nil
}

// Get returns a prescription with its medications expanded.
func (s *PrescriptionService) Get(ctx context.Context, id string) (*models.PrescriptionView, error) {
	prescription, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}

	medications := make([]models.Medication, len(prescription.Medications))
	copy(medications, prescription.Medications)

	return &models.PrescriptionView{
		ID:          prescription.ID,
		UserID:      prescription.UserID,
		DoctorName:  prescription.DoctorName,
		ClinicName:  prescription.ClinicName,
		IssueDate:   StoredDate(prescription.IssueDate),
		ExpiryDate:  StoredDate(prescription.ExpiryDate),
		Medications: medications,
		ImageURL:    prescription.ImageURL,
		Status:      prescription.Status,
		VerifiedBy:  prescription.VerifiedBy,
		VerifiedAt:  prescription.VerifiedAt,
		Notes:       prescription.Notes,
		CreatedAt:   prescription.CreatedAt,
	}, nil
}

func (s *PrescriptionService) emit(queue string, durable bool, event interface{}) {
	if s.publisher == nil {
		s.log.Warn("event publisher not configured, skipping message", "queue", queue)
		return
	}
	s.publisher.Enqueue(rabbitmq.Job{Queue: queue, Durable: durable, Payload: event})
}
