package token

import (
	"context"
	"errors"
	"testing"
)

func TestStaticProvider(t *testing.T) {
	p := Static("tok-abc")
	got, err := p(context.Background())
	if err != nil {
		t.Fatalf("Static provider: %v", err)
	}
	if got != "tok-abc" {
		t.Fatalf("unexpected credential %q", got)
	}
}

func TestStaticProviderEmpty(t *testing.T) {
	p := Static("")
	if _, err := p(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}
