package handlers

import (
	"log/slog"
	"time"

	"pharmacy/internal/auth"
	"pharmacy/internal/middleware"
	"pharmacy/internal/models"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type medicationRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	ProductName string `json:"product_name"`
	Dosage      string `json:"dosage"`
	Quantity    int    `json:"quantity"`
}

type createPrescriptionRequest struct {
	UserID      string              `json:"user_id" validate:"required,uuid"`
	DoctorName  string              `json:"doctor_name"`
	ClinicName  string              `json:"clinic_name"`
	IssueDate   string              `json:"issue_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate  string              `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Medications []medicationRequest `json:"medications" validate:"dive"`
	ImageURL    *string             `json:"image_url" validate:"omitempty,url"`
}

type verifyRequest struct {
	Status     string  `json:"status" validate:"required,oneof=approved rejected"`
	VerifiedBy string  `json:"verified_by" validate:"omitempty,uuid"`
	Notes      *string `json:"notes"`
}

// PrescriptionHandler handles HTTP requests for prescriptions.
type PrescriptionHandler struct {
	service  *services.PrescriptionService
	validate *RequestValidator
	tokens   *auth.TokenService
	log      *slog.Logger
}

// NewPrescriptionHandler creates a new PrescriptionHandler. When tokens is non-nil the verify
// route accepts a bearer token whose user_id stands in for a missing verified_by.
func NewPrescriptionHandler(service *services.PrescriptionService, validate *RequestValidator, tokens *auth.TokenService, log *slog.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{
		service:  service,
		validate: validate,
		tokens:   tokens,
		log:      log,
	}
}

// RegisterRoutes registers the prescription routes with the Fiber app.
func (h *PrescriptionHandler) RegisterRoutes(router fiber.Router) {
	prescriptionRoutes := router.Group("/prescriptions")
	prescriptionRoutes.Post("/", h.HandleUpload)
	prescriptionRoutes.Get("/:id", h.HandleGetPrescription)
	if h.tokens != nil {
		prescriptionRoutes.Patch("/:id/verify", middleware.OptionalAuth(h.tokens, h.log), h.HandleVerify)
	} else {
		prescriptionRoutes.Patch("/:id/verify", h.HandleVerify)
	}
}

// HandleUpload stores a new prescription in pending state.
func (h *PrescriptionHandler) HandleUpload(c *fiber.Ctx) error {
	var req createPrescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return &RequestError{Message: "Invalid request body"}
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	// Both dates already passed the datetime check.
	issueDate, _ := time.Parse(dateLayout, req.IssueDate)
	expiryDate, _ := time.Parse(dateLayout, req.ExpiryDate)

	medications := make([]models.Medication, 0, len(req.Medications))
	for _, m := range req.Medications {
		medications = append(medications, models.Medication{
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			Dosage:      m.Dosage,
			Quantity:    m.Quantity,
		})
	}

	result, err := h.service.Upload(c.UserContext(), models.PrescriptionInput{
		UserID:      req.UserID,
		DoctorName:  req.DoctorName,
		ClinicName:  req.ClinicName,
		IssueDate:   issueDate,
		ExpiryDate:  expiryDate,
		Medications: medications,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleVerify approves or rejects a pending prescription.
func (h *PrescriptionHandler) HandleVerify(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.validate.Var("id", id, "uuid"); err != nil {
		return err
	}

	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return &RequestError{Message: "Invalid request body"}
	}
	if req.VerifiedBy == "" {
		if userID, ok := c.Locals(middleware.LocalUserID).(string); ok {
			req.VerifiedBy = userID
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	result, err := h.service.Verify(c.UserContext(), id, models.VerifyInput{
		Status:     models.PrescriptionStatus(req.Status),
		VerifiedBy: req.VerifiedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleGetPrescription returns a single prescription.
func (h *PrescriptionHandler) HandleGetPrescription(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.validate.Var("id", id, "uuid"); err != nil {
		return err
	}

	result, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
