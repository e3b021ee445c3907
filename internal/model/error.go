package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind classifies domain errors so the HTTP layer can map them to status codes.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindConflict
	KindInvalidInput
	KindPrecondition
	KindUnauthorized
	KindForbidden
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeCartNotFound        = "CART_NOT_FOUND"
	ErrCodeOrderItemNotFound   = "ORDER_ITEM_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeQuantityNegative    = "QUANTITY_NEGATIVE"
	ErrCodeNegativeDeposit     = "NEGATIVE_DEPOSIT"
	ErrCodePasswordMismatch    = "PASSWORD_MISMATCH"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeCartEmpty           = "CART_EMPTY"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeIncorrectPassword   = "INCORRECT_PASSWORD"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeRouteNotFound       = "NOT_FOUND"
	ErrCodeInvalidIdentifier   = "INVALID_ID"
	ErrCodeInvalidProductInput = "INVALID_PRODUCT"
)

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCartNotFound      = NewDomainError(KindNotFound, ErrCodeCartNotFound, "Active cart not found for user")
	ErrOrderItemNotFound = NewDomainError(KindNotFound, ErrCodeOrderItemNotFound, "Item not found in your cart")
	ErrUserNotFound      = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")

	ErrUserAlreadyExists = NewDomainError(KindConflict, ErrCodeUserAlreadyExists, "User already exists")

	ErrInvalidQuantity  = NewDomainError(KindInvalidInput, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrQuantityNegative = NewDomainError(KindInvalidInput, ErrCodeQuantityNegative, "Quantity can't be negative")
	ErrNegativeDeposit  = NewDomainError(KindInvalidInput, ErrCodeNegativeDeposit, "Deposit amount can't be negative")
	ErrPasswordMismatch = NewDomainError(KindInvalidInput, ErrCodePasswordMismatch, "You input two different passwords")
	ErrInvalidProduct   = NewDomainError(KindInvalidInput, ErrCodeInvalidProductInput, "Product price and stock quantity can't be negative")

	ErrInsufficientStock = NewDomainError(KindPrecondition, ErrCodeInsufficientStock, "Not enough product in stock")
	ErrInsufficientFunds = NewDomainError(KindPrecondition, ErrCodeInsufficientFunds, "Not enough funds in your account")
	ErrCartEmpty         = NewDomainError(KindPrecondition, ErrCodeCartEmpty, "Your cart is empty. Please add items before checkout")

	ErrInvalidCredentials = NewDomainError(KindUnauthorized, ErrCodeInvalidCredentials, "Incorrect email or password")
	ErrIncorrectPassword  = NewDomainError(KindUnauthorized, ErrCodeIncorrectPassword, "Incorrect current password")
	ErrInvalidToken       = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Invalid token")

	ErrForbidden = NewDomainError(KindForbidden, ErrCodeForbidden, "Operation forbidden: Not enough privileges")
)

// StockError reports a cart line that asks for more units than the catalogue holds.
// It unwraps to ErrInsufficientStock.
type StockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Error, product %s has only %d units on our stock at the moment", e.ProductID, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
