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
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", detailsOK: true},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "action not allowed in the current state", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "something went wrong, please try again", retryable: true},
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

func TestCodeSentinels(t *testing.T) {
	notFound := New(CodeNotFound, "")
	err := fmt.Errorf("load cart: %w", Newf(CodeNotFound, "cart item %d not found", 3))

	if !stdErrors.Is(err, notFound) {
		t.Fatal("expected a code-only sentinel to match")
	}
	if stdErrors.Is(err, New(CodeConflict, "")) {
		t.Fatal("different codes must not match")
	}
	if stdErrors.Is(err, New(CodeNotFound, "something else")) {
		t.Fatal("a sentinel with a message only matches itself")
	}
	if got := As(err).Message(); got != "cart item 3 not found" {
		t.Fatalf("unexpected message %q", got)
	}

	wrapped := Wrapf(CodeDependency, stdErrors.New("eof"), "redis: %s", "get")
	if wrapped.Error() != "DEPENDENCY_ERROR: redis: get" {
		t.Fatalf("unexpected Error() %q", wrapped.Error())
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

func TestIsCodeAndRetryable(t *testing.T) {
	cause := Wrap(CodeDependency, stdErrors.New("connection refused"), "db: list products")
	if !IsCode(cause, CodeDependency) {
		t.Fatalf("expected dependency code")
	}
	if IsCode(cause, CodeValidation) {
		t.Fatalf("unexpected validation match")
	}
	if !Retryable(cause) {
		t.Fatalf("dependency errors should be retryable")
	}
	if Retryable(New(CodeValidation, "price must be greater than 0")) {
		t.Fatalf("validation errors are not retryable")
	}
	if Retryable(stdErrors.New("plain")) {
		t.Fatalf("untyped errors are not retryable")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("timeout"), "db: insert product")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if dump.DB != nil {
		t.Fatalf("expected no db details, got %+v", dump.DB)
	}
	if dump.Fields()["error_code"] != string(CodeDependency) {
		t.Fatalf("unexpected fields %v", dump.Fields())
	}
}

func TestDumpReadsDriverErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "stores_supplier_id_key", TableName: "stores", Message: "duplicate key value"}
	dump := Dump(Wrap(CodeConflict, fmt.Errorf("insert store: %w", pgErr), "store already exists"))
	if dump.DB == nil || dump.DB.Driver != "pgx" || dump.DB.Constraint != "stores_supplier_id_key" {
		t.Fatalf("expected pgx details, got %+v", dump.DB)
	}

	dump = Dump(&pq.Error{Code: "23503", Table: "products"})
	if dump.DB == nil || dump.DB.Driver != "pq" || dump.DB.Table != "products" || dump.Code != CodeInternal {
		t.Fatalf("expected pq details, got %+v", dump)
	}

	dump = Dump(fmt.Errorf("create: %w", stdErrors.New("UNIQUE constraint failed: stores.supplier_id")))
	if dump.DB == nil || dump.DB.Driver != "sqlite" || dump.DB.Constraint != "stores.supplier_id" || dump.DB.Code != "UNIQUE" {
		t.Fatalf("expected sqlite details, got %+v", dump.DB)
	}
	if _, ok := dump.Fields()["db_table"]; ok {
		t.Fatal("empty db fields should be omitted")
	}
}

func TestPublicHidesInternalMessages(t *testing.T) {
	msg, details := New(CodeNotFound, "product not found in catalog").Public()
	if msg != "product not found in catalog" || details != nil {
		t.Fatalf("unexpected public view %q %v", msg, details)
	}

	msg, details = Wrap(CodeInternal, stdErrors.New("nil map"), "cart registry broke").WithDetails("stack").Public()
	if msg != "internal server error" || details != nil {
		t.Fatalf("internal errors must stay opaque, got %q %v", msg, details)
	}

	msg, details = New(CodeValidation, "").WithDetails(map[string]string{"name": "required"}).Public()
	if msg != "validation failed" || details == nil {
		t.Fatalf("expected fallback message with details, got %q %v", msg, details)
	}
}
