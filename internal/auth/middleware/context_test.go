package auth

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestSubjectRoundTrip(t *testing.T) {
	ctx := WithSubject(context.Background(), "42")
	if got := SubjectFromContext(ctx); got != "42" {
		t.Fatalf("subject = %q", got)
	}
	if got := SubjectFromContext(context.Background()); got != "" {
		t.Fatalf("empty context should yield no subject, got %q", got)
	}

	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	id, ok := UserID(r)
	if !ok || id != 42 {
		t.Fatalf("UserID = %d, %v", id, ok)
	}

	r = httptest.NewRequest("GET", "/", nil).WithContext(WithSubject(context.Background(), "abc"))
	if _, ok := UserID(r); ok {
		t.Fatalf("non-numeric subject must not resolve")
	}
}
