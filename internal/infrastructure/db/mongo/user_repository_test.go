package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

// These cases never reach the collection, so a zero repository is enough.

func TestUserRepository_Create_RejectsInvalidUsers(t *testing.T) {
	repo := &UserRepository{}
	cases := []*domain.User{
		{Email: "", Username: "bob", PasswordHash: "h"},
		{Email: "ab", Username: "bob", PasswordHash: "h"},
		{Email: "a@x.com", Username: "  B ", PasswordHash: "h"},
		{Email: "a@x.com", Username: "bob", PasswordHash: ""},
	}
	for _, u := range cases {
		if _, err := repo.Create(context.Background(), u); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("user %+v: expected ErrValidation, got %v", u, err)
		}
	}
}

func TestUserRepository_FindByID_InvalidHex(t *testing.T) {
	repo := &UserRepository{}
	if _, err := repo.FindByID(context.Background(), "not-an-object-id"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserDocument_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	doc := userDocument{
		ID:           oid,
		Email:        "a@x.com",
		Username:     "bob",
		PasswordHash: "hash",
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	u := doc.toDomain()
	if u.ID != oid.Hex() {
		t.Fatalf("expected id %s, got %s", oid.Hex(), u.ID)
	}
	if u.CreatedAt.Location() != time.UTC || !u.CreatedAt.Equal(created) {
		t.Fatalf("expected UTC timestamp equal to input, got %v", u.CreatedAt)
	}
	if u.PasswordHash != "hash" || u.Username != "bob" {
		t.Fatalf("unexpected user: %+v", u)
	}
}
