package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorString_WithAndWithoutCause(t *testing.T) {
	t.Parallel()

	e := New(KindValidation, "invalid_field", "invalid field")
	if got := e.Error(); got != "validation (invalid_field): invalid field" {
		t.Fatalf("unexpected: %q", got)
	}

	cause := errors.New("boom")
	w := Wrap(KindInfrastructure, CodeDBUnavailable, "database unavailable", cause)
	if got := w.Error(); got != "infrastructure (db_unavailable): database unavailable: boom" {
		t.Fatalf("unexpected: %q", got)
	}
	if !errors.Is(w, cause) {
		t.Fatalf("expected Unwrap to expose cause")
	}
}

func TestIs_And_Code_ThroughWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ctx: %w", ErrAccountNotFound())
	if !Is(err, CodeNotFound) {
		t.Fatalf("expected Is to see wrapped domain error")
	}
	if Code(err) != CodeNotFound {
		t.Fatalf("expected code %q, got %q", CodeNotFound, Code(err))
	}
	if Is(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors are never domain errors")
	}
	if Code(errors.New("plain")) != "" {
		t.Fatalf("plain errors have no code")
	}
}

func TestInternalize(t *testing.T) {
	t.Parallel()

	if Internalize(nil) != nil {
		t.Fatalf("nil must stay nil")
	}

	de := ErrEmailAlreadyExists()
	if got := Internalize(de); got != error(de) {
		t.Fatalf("domain errors must pass through unchanged")
	}

	raw := errors.New("pq: connection reset")
	got := Internalize(raw)
	if !Is(got, CodeInternal) {
		t.Fatalf("expected internal_error, got %v", got)
	}
	if !errors.Is(got, raw) {
		t.Fatalf("expected cause to be kept for logging")
	}
}

func TestErrWeakPassword_CarriesAllViolations(t *testing.T) {
	t.Parallel()

	in := []string{"uppercase", "digit"}
	e := ErrWeakPassword(in)
	in[0] = "mutated"

	if e.Kind != KindValidation || e.Code != CodeWeakPassword {
		t.Fatalf("unexpected kind/code: %s/%s", e.Kind, e.Code)
	}
	if len(e.Violations) != 2 || e.Violations[0] != "uppercase" || e.Violations[1] != "digit" {
		t.Fatalf("unexpected violations: %v", e.Violations)
	}
	if e.Meta["violations"] != "uppercase,digit" {
		t.Fatalf("unexpected meta: %v", e.Meta)
	}
}

func TestErrInsufficientRole_Meta(t *testing.T) {
	t.Parallel()

	e := ErrInsufficientRole(RoleAdmin)
	if e.Kind != KindForbidden || e.Code != CodeForbidden {
		t.Fatalf("unexpected kind/code: %s/%s", e.Kind, e.Code)
	}
	if e.Meta["required"] != "admin" {
		t.Fatalf("unexpected meta: %v", e.Meta)
	}
}

func TestConstructors_Kinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  *Error
		kind ErrKind
	}{
		{ErrInvalidCredentials(), KindAuth},
		{ErrTokenMissing(), KindAuth},
		{ErrTokenMalformed(), KindAuth},
		{ErrTokenInvalid(), KindAuth},
		{ErrTokenExpired(), KindAuth},
		{ErrAccountBlocked(), KindForbidden},
		{ErrCannotBlockAdmin(), KindForbidden},
		{ErrCannotDeleteAdmin(), KindForbidden},
		{ErrAccountNotFound(), KindNotFound},
		{ErrEmailAlreadyExists(), KindConflict},
		{ErrCurrentPasswordInvalid(), KindValidation},
		{ErrPasswordTooLong(100), KindValidation},
		{ErrDBUnavailable(nil), KindInfrastructure},
		{ErrInternal(nil), KindInternal},
	}
	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Fatalf("%s: expected kind %s, got %s", c.err.Code, c.kind, c.err.Kind)
		}
	}
}
