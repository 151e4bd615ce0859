// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Reason codes carried in the "code" field of every error envelope.
const (
	CodeBadRequest              = "BAD_REQUEST"
	CodeValidation              = "VALIDATION_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeRateLimited             = "RATE_LIMITED"
	CodeNotFound                = "NOT_FOUND"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeCustomerNotFound        = "CUSTOMER_NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeProductInUse            = "PRODUCT_IN_USE"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeProductInactive         = "PRODUCT_INACTIVE"
	CodeCustomerInactive        = "CUSTOMER_INACTIVE"
	CodeCategoryInactive        = "CATEGORY_INACTIVE"
	CodeSupplierInactive        = "SUPPLIER_INACTIVE"
	CodePaymentInsufficient     = "PAYMENT_INSUFFICIENT"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeDiscountExceedsSubtotal = "DISCOUNT_EXCEEDS_SUBTOTAL"
	CodeInternal                = "INTERNAL"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func New(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Code: CodeValidation, Fields: fields}
}

// Error is a classified domain failure. Services return it for every outcome the
// client can act on; anything else is treated as an internal error.
type Error struct {
	Status int
	Code   string
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// Body returns the JSON envelope for e.
func (e *Error) Body() *APIError { return New(e.Code, e.Detail) }

func newError(status int, code, detail string) *Error {
	return &Error{Status: status, Code: code, Detail: detail}
}

func BadRequest(code, detail string) *Error { return newError(http.StatusBadRequest, code, detail) }
func NotFound(code, detail string) *Error   { return newError(http.StatusNotFound, code, detail) }
func Conflict(code, detail string) *Error   { return newError(http.StatusConflict, code, detail) }
func Unauthorized(detail string) *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, detail)
}

// As extracts a classified *Error from anywhere in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err is a classified error carrying code.
func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
