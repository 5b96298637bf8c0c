package shared

import "fmt"

// Error codes for the retail domain
const (
	CodeInvalidPhone      = "INVALID_PHONE"
	CodeInvalidEmail      = "INVALID_EMAIL"
	CodeUnknownClient     = "UNKNOWN_CLIENT"
	CodeUnknownProduct    = "UNKNOWN_PRODUCT"
	CodeInvalidDate       = "INVALID_DATE"
	CodeMixedUnitMismatch = "MIXED_UNIT_MISMATCH"
	CodeStorageRead       = "STORAGE_READ_ERROR"
	CodeStorageWrite      = "STORAGE_WRITE_ERROR"
	CodeMalformedLineItem = "MALFORMED_LINE_ITEM"
	CodeInvalidNumber     = "INVALID_NUMBER"
	CodeInvalidName       = "INVALID_NAME"
	CodeInvalidPrice      = "INVALID_PRICE"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeInvalidClient     = "INVALID_CLIENT"
	CodeProductConflict   = "PRODUCT_CONFLICT"
	CodeDuplicateNumber   = "DUPLICATE_NUMBER"
	CodeUnsupportedSchema = "UNSUPPORTED_SCHEMA"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This lets callers match on error kind with errors.Is against the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewFieldError creates a domain error that names the failing field and echoes its value
func NewFieldError(code, field, value, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code string, err error, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Error kinds, for use with errors.Is
var (
	ErrInvalidPhone      = NewDomainError(CodeInvalidPhone, "Invalid phone")
	ErrInvalidEmail      = NewDomainError(CodeInvalidEmail, "Invalid email")
	ErrUnknownClient     = NewDomainError(CodeUnknownClient, "Unknown client")
	ErrUnknownProduct    = NewDomainError(CodeUnknownProduct, "Unknown product")
	ErrInvalidDate       = NewDomainError(CodeInvalidDate, "Invalid date")
	ErrMixedUnitMismatch = NewDomainError(CodeMixedUnitMismatch, "Product unit does not match line item kind")
	ErrStorageRead       = NewDomainError(CodeStorageRead, "Storage read failed")
	ErrStorageWrite      = NewDomainError(CodeStorageWrite, "Storage write failed")
	ErrMalformedLineItem = NewDomainError(CodeMalformedLineItem, "Malformed line item")
	ErrInvalidNumber     = NewDomainError(CodeInvalidNumber, "Invalid number")
	ErrInvalidName       = NewDomainError(CodeInvalidName, "Invalid name")
	ErrInvalidPrice      = NewDomainError(CodeInvalidPrice, "Invalid price")
	ErrInvalidQuantity   = NewDomainError(CodeInvalidQuantity, "Invalid quantity")
	ErrInvalidClient     = NewDomainError(CodeInvalidClient, "Invalid client")
	ErrProductConflict   = NewDomainError(CodeProductConflict, "Product conflicts with catalog entry")
	ErrDuplicateNumber   = NewDomainError(CodeDuplicateNumber, "Identifier already in use")
	ErrUnsupportedSchema = NewDomainError(CodeUnsupportedSchema, "Unsupported schema version")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
)
