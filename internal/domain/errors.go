package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Violations: every failed password rule, for weak_password only
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind       ErrKind
	Code       string
	Message    string
	Meta       map[string]string
	Violations []string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Code returns the stable code of a domain error, or "" for anything else.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Internalize passes domain errors through untouched and hides everything
// else behind internal_error so storage details never reach callers.
func Internalize(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return ErrInternal(err)
}

// Stable codes referenced outside this package.
const (
	CodeDuplicateEmail         = "email_already_exists"
	CodeWeakPassword           = "weak_password"
	CodePasswordTooLong        = "password_too_long"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeAccountBlocked         = "account_blocked"
	CodeNotFound               = "account_not_found"
	CodeCurrentPasswordInvalid = "current_password_invalid"
	CodeCannotBlockAdmin       = "cannot_block_admin"
	CodeCannotDeleteAdmin      = "cannot_delete_admin"
	CodeTokenMissing           = "token_missing"
	CodeTokenMalformed         = "token_malformed"
	CodeTokenInvalid           = "token_invalid"
	CodeTokenExpired           = "token_expired"
	CodeForbidden              = "forbidden"
	CodeInternal               = "internal_error"
	CodeDBUnavailable          = "db_unavailable"
)

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ErrWeakPassword carries every violated rule, not just the first.
func ErrWeakPassword(violations []string) *Error {
	err := WithMeta(New(KindValidation, CodeWeakPassword, "password does not meet requirements"), map[string]string{
		"violations": strings.Join(violations, ","),
	})
	err.Violations = append([]string(nil), violations...)
	return err
}

func ErrPasswordTooLong(max int) *Error {
	return WithMeta(New(KindValidation, CodePasswordTooLong, "password is too long"), map[string]string{
		"max": fmt.Sprint(max),
	})
}

func ErrCurrentPasswordInvalid() *Error {
	return New(KindValidation, CodeCurrentPasswordInvalid, "current password is invalid")
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: use this for login failures to avoid account enumeration.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, CodeInvalidCredentials, "invalid email or password")
}

func ErrTokenMissing() *Error {
	return New(KindAuth, CodeTokenMissing, "no token provided")
}

func ErrTokenMalformed() *Error {
	return New(KindAuth, CodeTokenMalformed, "malformed token")
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, CodeTokenInvalid, "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, CodeTokenExpired, "token is expired")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrForbidden() *Error {
	return New(KindForbidden, CodeForbidden, "forbidden")
}

func ErrInsufficientRole(allowed ...Role) *Error {
	names := make([]string, 0, len(allowed))
	for _, r := range allowed {
		names = append(names, string(r))
	}
	return WithMeta(New(KindForbidden, CodeForbidden, "insufficient role"), map[string]string{
		"required": strings.Join(names, ","),
	})
}

func ErrAccountBlocked() *Error {
	return New(KindForbidden, CodeAccountBlocked, "account is blocked")
}

func ErrCannotBlockAdmin() *Error {
	return New(KindForbidden, CodeCannotBlockAdmin, "admin accounts cannot be blocked")
}

func ErrCannotDeleteAdmin() *Error {
	return New(KindForbidden, CodeCannotDeleteAdmin, "admin accounts cannot be deleted")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrAccountNotFound() *Error {
	return New(KindNotFound, CodeNotFound, "account not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, CodeDuplicateEmail, "email already registered")
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeDBUnavailable, "database unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", cause)
}
