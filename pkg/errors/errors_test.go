package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "please review the highlighted fields", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many attempts, try again shortly"},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeWalksChain(t *testing.T) {
	inner := New(CodeNotFound, "item 99 not found")
	outer := fmt.Errorf("loading cart line: %w", inner)
	if !IsCode(outer, CodeNotFound) {
		t.Fatalf("expected IsCode to find wrapped not found")
	}
	if IsCode(outer, CodeConflict) {
		t.Fatalf("unexpected conflict match")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatalf("nil should never match")
	}
}

func TestValidationCarriesFieldDetails(t *testing.T) {
	err := Validation("shipping form incomplete", FieldErrors{"province": "required"})
	if err.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", err.Code())
	}
	fields, ok := err.Details().(FieldErrors)
	if !ok || fields["province"] != "required" {
		t.Fatalf("unexpected details %#v", err.Details())
	}
	if Validation("empty", nil).Details() != nil {
		t.Fatalf("empty field set should not attach details")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := fmt.Errorf("persist order: %w", Wrap(CodeInternal, stdErrors.New("connection reset"), "insert failed"))
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(d.Chain), d.Chain)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil dump should be empty")
	}
}

func TestDumpLiftsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "admin_users_email_key", TableName: "admin_users", Message: "duplicate key value"}
	d := Dump(Wrap(CodeConflict, fmt.Errorf("insert admin: %w", pgErr), "email taken"))
	if d.PGCode != "23505" || d.PGConstraint != "admin_users_email_key" || d.PGTable != "admin_users" {
		t.Fatalf("unexpected pg fields %+v", d)
	}

	pqErr := &pq.Error{Code: "23503", Constraint: "order_items_order_id_fkey", Table: "order_items"}
	d = Dump(pqErr)
	if d.PGCode != "23503" || d.PGConstraint != "order_items_order_id_fkey" {
		t.Fatalf("unexpected pq fields %+v", d)
	}
}

func TestPublicMessageAndRetryable(t *testing.T) {
	if got := New(CodeNotFound, "producto no encontrado").PublicMessage(); got != "producto no encontrado" {
		t.Fatalf("client-facing codes should keep their message, got %q", got)
	}
	if got := Wrap(CodeInternal, stdErrors.New("pq: boom"), "insert order").PublicMessage(); got != "internal server error" {
		t.Fatalf("internal messages must be replaced, got %q", got)
	}
	if !IsRetryable(stdErrors.New("untyped")) || !IsRetryable(New(CodeDependency, "redis")) {
		t.Fatal("untyped and dependency errors are retryable")
	}
	if IsRetryable(New(CodeValidation, "bad")) {
		t.Fatal("validation errors are not retryable")
	}
}
