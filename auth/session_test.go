package auth

import (
	"context"
	"errors"
	"testing"

	"kboard/apperr"
	"kboard/models"

	"github.com/google/uuid"
)

func TestCurrentRoundTrip(t *testing.T) {
	user := models.User{ID: uuid.New(), Email: "ana@example.com"}
	got, err := Current(WithPrincipal(context.Background(), user))
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, got.ID)
	}
}

func TestCurrentWithoutPrincipal(t *testing.T) {
	_, err := Current(context.Background())
	if !errors.Is(err, apperr.ErrNotAuthenticated) {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
}

func TestCurrentNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	_, err := Current(nil)
	if !errors.Is(err, apperr.ErrNotAuthenticated) {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
}

func TestWithPrincipalNilContext(t *testing.T) {
	user := models.User{ID: uuid.New()}
	//nolint:staticcheck // nil context is part of the contract
	got, err := Current(WithPrincipal(nil, user))
	if err != nil || got.ID != user.ID {
		t.Fatalf("expected principal from nil parent, got %v %v", got, err)
	}
}
