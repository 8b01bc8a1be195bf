package models

import (
	"time"

	"gorm.io/datatypes"
)

// PrescriptionStatus is the verification state of a prescription.
type PrescriptionStatus string

const (
	StatusPending  PrescriptionStatus = "pending"
	StatusApproved PrescriptionStatus = "approved"
	StatusRejected PrescriptionStatus = "rejected"
)

// Medication is one prescribed product. It is embedded in the prescription row and has no
// lifecycle of its own.
type Medication struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Dosage      string `json:"dosage"`
	Quantity    int    `json:"quantity"`
}

// Prescription is a user-submitted medical authorization awaiting or past verification.
// Medications are kept in submission order as a JSON column.
type Prescription struct {
	ID          string                          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string                          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	DoctorName  string                          `json:"doctor_name" gorm:"not null"`
	ClinicName  string                          `json:"clinic_name" gorm:"not null"`
	IssueDate   time.Time                       `json:"issue_date" gorm:"type:date;not null"`
	ExpiryDate  time.Time                       `json:"expiry_date" gorm:"type:date;not null"`
	Medications datatypes.JSONSlice[Medication] `json:"medications" gorm:"not null"`
	ImageURL    *string                         `json:"image_url"`
	Status      PrescriptionStatus              `json:"status" gorm:"type:varchar(16);not null;index"`
	VerifiedBy  *string                         `json:"verified_by" gorm:"type:varchar(36)"`
	VerifiedAt  *time.Time                      `json:"verified_at"`
	Notes       *string                         `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// PrescriptionInput carries an upload request into the prescription pipeline.
type PrescriptionInput struct {
	UserID      string
	DoctorName  string
	ClinicName  string
	IssueDate   time.Time
	ExpiryDate  time.Time
	Medications []Medication
	ImageURL    *string
}

// VerifyInput carries a verification decision into the prescription pipeline.
type VerifyInput struct {
	Status     PrescriptionStatus
	VerifiedBy string
	Notes      *string
}

type PrescriptionUploadView struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Status    PrescriptionStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Message   string             `json:"message"`
}

type PrescriptionVerifyView struct {
	ID         string             `json:"id"`
	Status     PrescriptionStatus `json:"status"`
	VerifiedBy string             `json:"verified_by"`
	VerifiedAt time.Time          `json:"verified_at"`
	Notes      *string            `json:"notes"`
	Message    string             `json:"message"`
}

type PrescriptionView struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	DoctorName  string             `json:"doctor_name"`
	ClinicName  string             `json:"clinic_name"`
	IssueDate   time.Time          `json:"issue_date"`
	ExpiryDate  time.Time          `json:"expiry_date"`
	Medications []Medication       `json:"medications"`
	ImageURL    *string            `json:"image_url"`
	Status      PrescriptionStatus `json:"status"`
	VerifiedBy  *string            `json:"verified_by"`
	VerifiedAt  *time.Time         `json:"verified_at"`
	Notes       *string            `json:"notes"`
	CreatedAt   time.Time          `json:"created_at"`
}
