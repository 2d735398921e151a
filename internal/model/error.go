package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindBusinessRule
	KindForbidden
	KindConflict
	KindUnauthorised
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound      = "VARIANT_NOT_FOUND"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition    = "INVALID_STATUS_TRANSITION"
	ErrCodeDiscountNotFound     = "DISCOUNT_CODE_NOT_FOUND"
	ErrCodeDiscountNotStarted   = "DISCOUNT_CODE_NOT_STARTED"
	ErrCodeDiscountExpired      = "DISCOUNT_CODE_EXPIRED"
	ErrCodeDiscountExhausted    = "DISCOUNT_CODE_EXHAUSTED"
	ErrCodeDiscountAlreadyUsed  = "DISCOUNT_CODE_ALREADY_USED"
	ErrCodeDiscountNotApplied   = "DISCOUNT_CODE_NOT_APPLICABLE"
	ErrCodeDiscountCodeExists   = "DISCOUNT_CODE_EXISTS"
	ErrCodePaymentMismatch      = "PAYMENT_MISMATCH"
	ErrCodeAlreadyPaid          = "ALREADY_PAID"
	ErrCodePaymentNotPayable    = "PAYMENT_NOT_PAYABLE"
	ErrCodeShipmentNotCreated   = "SHIPMENT_NOT_CREATED"
	ErrCodeCartItemNotFound     = "CART_ITEM_NOT_FOUND"
	ErrCodeConcurrentTransition = "CONCURRENT_STATUS_CHANGE"
)

// DomainError is a business error carrying its classification. Two domain
// errors match under errors.Is when their codes are equal, so errors built
// with a specific message still match the sentinel of the same code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a domain error with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a field-level message.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrInvalidJSON          = NewDomainError(KindValidation, ErrCodeInvalidJSON, "invalid JSON payload")
	ErrValidation           = NewDomainError(KindValidation, ErrCodeValidation, "validation failed")
	ErrUnauthorised         = NewDomainError(KindUnauthorised, ErrCodeUnauthorised, "authentication required")
	ErrForbidden            = NewDomainError(KindForbidden, ErrCodeForbidden, "you do not have permission to perform this action")
	ErrOrderNotFound        = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "order not found")
	ErrProductNotFound      = NewDomainError(KindNotFound, ErrCodeProductNotFound, "product not found")
	ErrVariantNotFound      = NewDomainError(KindNotFound, ErrCodeVariantNotFound, "product variant not found")
	ErrInsufficientStock    = NewDomainError(KindBusinessRule, ErrCodeInsufficientStock, "insufficient stock")
	ErrInvalidTransition    = NewDomainError(KindBusinessRule, ErrCodeInvalidTransition, "invalid order status transition")
	ErrConcurrentTransition = NewDomainError(KindConflict, ErrCodeConcurrentTransition, "order status changed concurrently, reload and retry")
	ErrDiscountNotFound     = NewDomainError(KindNotFound, ErrCodeDiscountNotFound, "discount code does not exist")
	ErrDiscountNotStarted   = NewDomainError(KindBusinessRule, ErrCodeDiscountNotStarted, "discount code is not active yet")
	ErrDiscountExpired      = NewDomainError(KindBusinessRule, ErrCodeDiscountExpired, "discount code has expired")
	ErrDiscountExhausted    = NewDomainError(KindBusinessRule, ErrCodeDiscountExhausted, "discount code has reached its usage limit")
	ErrDiscountAlreadyUsed  = NewDomainError(KindBusinessRule, ErrCodeDiscountAlreadyUsed, "you have already used this discount code")
	ErrDiscountNotApplied   = NewDomainError(KindBusinessRule, ErrCodeDiscountNotApplied, "discount code does not apply to any product in this order")
	ErrDiscountCodeExists   = NewDomainError(KindConflict, ErrCodeDiscountCodeExists, "discount code already exists")
	ErrPaymentMismatch      = NewDomainError(KindBusinessRule, ErrCodePaymentMismatch, "payment information does not match")
	ErrAlreadyPaid          = NewDomainError(KindBusinessRule, ErrCodeAlreadyPaid, "order has already been paid")
	ErrPaymentNotPayable    = NewDomainError(KindBusinessRule, ErrCodePaymentNotPayable, "order cannot be paid online")
	ErrShipmentNotCreated   = NewDomainError(KindBusinessRule, ErrCodeShipmentNotCreated, "carrier shipment has not been created for this order")
	ErrCartItemNotFound     = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "cart item not found")
)

// NewInsufficientStockError names the variant that cannot cover the request.
func NewInsufficientStockError(variantName string) *DomainError {
	return NewDomainError(KindBusinessRule, ErrCodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s", variantName))
}

// NewVariantNotFoundError names the variant that is missing or unavailable.
func NewVariantNotFoundError(variantID fmt.Stringer) *DomainError {
	return NewDomainError(KindNotFound, ErrCodeVariantNotFound,
		fmt.Sprintf("product variant %s does not exist or is no longer available", variantID))
}

// NewTransitionError describes why the current status blocks an action.
func NewTransitionError(message string) *DomainError {
	return NewDomainError(KindBusinessRule, ErrCodeInvalidTransition, message)
}

// UpstreamError reports a failed call to an external provider. Message is
// the provider's own text.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// NewUpstreamError creates an upstream error.
func NewUpstreamError(service string, statusCode int, message string) *UpstreamError {
	if message == "" {
		message = fmt.Sprintf("%s request failed", service)
	}
	return &UpstreamError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}
