package models

import "time"

// Queue names shared by both services.
const (
	CartClearedQueue          = "cart_cleared"
	PrescriptionUploadedQueue = "prescription_uploaded"
)

// CartClearedEvent is published by the cart service after a cart is emptied.
type CartClearedEvent struct {
	UserID    string    `json:"user_id"`
	ClearedAt time.Time `json:"cleared_at"`
}

// PrescriptionUploadedEvent is published by the prescription service after an upload.
type PrescriptionUploadedEvent struct {
	PrescriptionID string    `json:"prescription_id"`
	UserID         string    `json:"user_id"`
	DoctorName     string    `json:"doctor_name"`
	UploadedAt     time.Time `json:"uploaded_at"`
}
