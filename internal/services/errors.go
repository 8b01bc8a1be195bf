package services

// ErrorKind classifies domain errors for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
)

// Error is a business-rule failure. Two errors match under errors.Is when their codes are
// equal, so a sentinel can be reused with a more specific message.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

func validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func notFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// Cart errors.
var (
	ErrInvalidQuantity = validation("InvalidQuantity", "quantity must be between 1 and 10")
	ErrProductNotFound = validation("ProductNotFound", "product not found in catalog")
	ErrItemNotFound    = notFound("ItemNotFound", "item not found in cart")
	ErrCartNotFound    = notFound("CartNotFound", "cart not found")
)

// Prescription errors.
var (
	ErrFutureIssueDate           = validation("FutureIssueDate", "issue date cannot be in the future")
	ErrInvalidExpiry             = validation("InvalidExpiry", "expiry date must be after the issue date")
	ErrAlreadyExpired            = validation("AlreadyExpired", "prescription has already expired")
	ErrNoMedications             = validation("NoMedications", "prescription must contain at least one medication")
	ErrInvalidMedicationQuantity = validation("InvalidMedicationQuantity", "medication quantity must be positive")
	ErrBlankMedicationName       = validation("BlankMedicationName", "medication name cannot be empty")
	ErrBlankDoctorName           = validation("BlankDoctorName", "doctor name cannot be empty")
	ErrBlankClinicName           = validation("BlankClinicName", "clinic name cannot be empty")
	ErrPrescriptionNotFound      = notFound("PrescriptionNotFound", "prescription not found")
	ErrAlreadyVerified           = validation("AlreadyVerified", "prescription has already been verified")
	ErrPrescriptionExpired       = validation("PrescriptionExpired", "prescription has expired and cannot be verified")
	ErrMissingVerifier           = validation("MissingVerifier", "verifier is not specified")
	ErrInvalidStatus             = validation("InvalidStatus", "verification status must be approved or rejected")
)
