package model

// Standard error codes for API responses
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a business error that is safe to show to the caller.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError of the same kind. A target without
// a message matches any error carrying its code, so the Err* kinds below work
// with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok || t.Code != e.Code {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports missing or malformed input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message)
}

// NewInvalidStatusError reports a status value outside its enumerated set.
func NewInvalidStatusError(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidStatus, message)
}

// Error kinds, for use with errors.Is.
var (
	ErrValidation       = &DomainError{Code: ErrCodeValidation}
	ErrNotFound         = &DomainError{Code: ErrCodeNotFound}
	ErrUnauthorised     = &DomainError{Code: ErrCodeUnauthorised}
	ErrForbidden        = &DomainError{Code: ErrCodeForbidden}
	ErrInvalidStatus    = &DomainError{Code: ErrCodeInvalidStatus}
	ErrDuplicateRequest = &DomainError{Code: ErrCodeDuplicateRequest}
)

// Common domain errors
var (
	ErrEmptyOrder       = NewValidationError("Order must contain at least one item")
	ErrMissingCustomer  = NewValidationError("Customer name and phone are required")
	ErrProductNotFound  = NewValidationError("One or more products not found")
	ErrInvalidQuantity  = NewValidationError("Quantity must be greater than zero")
	ErrQuantityTooLarge = NewValidationError("Quantity cannot exceed 10000")
	ErrAmountTooLarge   = NewValidationError("Order total exceeds the maximum allowed amount")
	ErrPageOutOfRange   = NewValidationError("Page is out of range")
	ErrMissingProductID = NewValidationError("Each item requires a productId")
	ErrMissingAddress   = NewValidationError("Shipping address line 1, city, state, zip and country are required")
	ErrInvalidEmail     = NewValidationError("Customer email is invalid")
	ErrNoSuchProduct    = NewNotFoundError("Product not found")
	ErrOrderNotFound    = NewNotFoundError("Order not found")
	ErrRequestInFlight  = NewDomainError(ErrCodeDuplicateRequest, "A request with this idempotency key is already being processed")
	ErrAdminRequired    = NewDomainError(ErrCodeForbidden, "Unauthorized. Admin access required.")
	ErrMissingToken     = NewDomainError(ErrCodeUnauthorised, "No token provided")
	ErrInvalidToken     = NewDomainError(ErrCodeUnauthorised, "Invalid token")
	ErrNegativeShipping = NewValidationError("Shipping cost cannot be negative")
)
