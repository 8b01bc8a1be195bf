package services

import (
	"strings"
	"time"

	"pharmacy/internal/models"

	"github.com/shopspring/decimal"
)

// Quantity bounds for a single cart line.
const (
	MinItemQuantity = 1
	MaxItemQuantity = 10
)

// ValidateQuantity checks a requested or merged cart line quantity.
func ValidateQuantity(quantity int) error {
	if quantity < MinItemQuantity {
		return ErrInvalidQuantity.WithMessage("quantity must be positive")
	}
	if quantity > MaxItemQuantity {
		return ErrInvalidQuantity.WithMessage("cannot add more than 10 units of one product")
	}
	return nil
}

// LineTotal returns price * quantity rounded to cents.
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// CartTotal sums price * quantity over items and rounds once, to cents.
func CartTotal(items []models.CartItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.Round(2).InexactFloat64()
}

// DateOf truncates t to its calendar date in t's own zone, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StoredDate recovers the calendar date of a persisted date column. Stored dates are UTC
// midnight, but drivers may hand them back in the local zone.
func StoredDate(t time.Time) time.Time {
	return DateOf(t.UTC())
}

// ValidateDates checks issue and expiry dates against today.
func ValidateDates(issue, expiry, today time.Time) error {
	issue, expiry, today = DateOf(issue), DateOf(expiry), DateOf(today)
	if issue.After(today) {
		return ErrFutureIssueDate
	}
	if !expiry.After(issue) {
		return ErrInvalidExpiry
	}
	if expiry.Before(today) {
		return ErrAlreadyExpired
	}
	return nil
}

// ValidateMedications checks that at least one medication is present and each is well formed.
func ValidateMedications(medications []models.Medication) error {
	if len(medications) == 0 {
		return ErrNoMedications
	}
	for _, med := range medications {
		if med.Quantity <= 0 {
			return ErrInvalidMedicationQuantity
		}
		if strings.TrimSpace(med.ProductName) == "" {
			return ErrBlankMedicationName
		}
	}
	return nil
}

func ValidateDoctorInfo(doctorName, clinicName string) error {
	if strings.TrimSpace(doctorName) == "" {
		return ErrBlankDoctorName
	}
	if strings.TrimSpace(clinicName) == "" {
		return ErrBlankClinicName
	}
	return nil
}

// ValidatePending rejects prescriptions that already went through verification.
func ValidatePending(status models.PrescriptionStatus) error {
	if status != models.StatusPending {
		return ErrAlreadyVerified
	}
	return nil
}

// ValidateNotExpired compares a stored expiry date with the local calendar date of today.
func ValidateNotExpired(expiry, today time.Time) error {
	if StoredDate(expiry).Before(DateOf(today)) {
		return ErrPrescriptionExpired
	}
	return nil
}

func ValidateVerifier(verifiedBy string) error {
	if strings.TrimSpace(verifiedBy) == "" {
		return ErrMissingVerifier
	}
	return nil
}

// ValidateVerifyStatus accepts only terminal statuses.
func ValidateVerifyStatus(status models.PrescriptionStatus) error {
	switch status {
	case models.StatusApproved, models.StatusRejected:
		return nil
	default:
		return ErrInvalidStatus
	}
}
