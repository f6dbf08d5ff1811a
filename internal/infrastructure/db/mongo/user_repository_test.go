package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/payperproject/portal/internal/core/domain"
)

// lazyDatabase returns a database handle whose client never dials until an
// operation needs a server.
func lazyDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("portal_test")
}

func TestFindByID_MalformedIDIsNotFound(t *testing.T) {
	db := lazyDatabase(t)

	if _, err := NewUserRepository(db).FindByID(context.Background(), "not-hex"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := NewCompanyUserRepository(db).FindByID(context.Background(), "not-hex"); !errors.Is(err, domain.ErrCompanyUserNotFound) {
		t.Fatalf("expected ErrCompanyUserNotFound, got %v", err)
	}
}

func TestRepositories_UseSeparateCollections(t *testing.T) {
	db := lazyDatabase(t)

	if got := NewUserRepository(db).coll.Name(); got != "users" {
		t.Fatalf("primary collection %q", got)
	}
	if got := NewCompanyUserRepository(db).coll.Name(); got != "company_users" {
		t.Fatalf("company collection %q", got)
	}
}

func TestToDomainUser(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	u := toDomainUser(mongoUser{
		ID:        oid,
		Email:     "pm@acme.io",
		Role:      "project_manager",
		CompanyID: "acme",
		CreatedAt: created.Unix(),
	})

	if u.ID != oid.Hex() || u.Role != domain.RoleProjectManager || u.CompanyID != "acme" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.CreatedAt.Equal(created) || !u.UpdatedAt.IsZero() {
		t.Fatalf("unexpected timestamps: %s %s", u.CreatedAt, u.UpdatedAt)
	}
}
