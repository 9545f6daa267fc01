package customer

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "cafe.GO/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(entity.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCustomerAndSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(testDB(t))

	c := &entity.Customer{Email: "ada@example.com", FullName: "Ada", PasswordHash: "x"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &entity.Customer{Email: "ada@example.com", PasswordHash: "y"}); err == nil {
		t.Error("duplicate email: want error")
	}

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	if err != nil || found.ID != c.ID {
		t.Fatalf("FindByEmail = %+v, %v", found, err)
	}

	now := time.Now()
	live := &entity.CustomerSession{Token: "live", CustomerID: c.ID, ExpiresAt: now.Add(time.Hour)}
	dead := &entity.CustomerSession{Token: "dead", CustomerID: c.ID, ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []*entity.CustomerSession{live, dead} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	s, err := repo.FindActiveSession(ctx, "live", now)
	if err != nil {
		t.Fatalf("FindActiveSession: %v", err)
	}
	if s.Customer.Email != "ada@example.com" {
		t.Errorf("session customer = %+v", s.Customer)
	}
	if _, err := repo.FindActiveSession(ctx, "dead", now); err == nil {
		t.Error("expired session returned")
	}

	n, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions = %d, %v; want 1", n, err)
	}
	if err := repo.DeleteSession(ctx, "live"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := repo.FindActiveSession(ctx, "live", now); err == nil {
		t.Error("deleted session returned")
	}
}
