package contact

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

func newFixture(t *testing.T) Service {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.ContactMessage{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSubmitNormalizesAndStores(t *testing.T) {
	svc := newFixture(t)

	dto, err := svc.Submit(context.Background(), SubmitRequest{
		Name:    "  Karim Uddin  ",
		Email:   "Karim@Example.COM",
		Message: "Where is my parcel?",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if dto.Name != "Karim Uddin" {
		t.Fatalf("name = %q, want trimmed", dto.Name)
	}
	if dto.Email != "karim@example.com" {
		t.Fatalf("email = %q, want lowercased", dto.Email)
	}
	if dto.IsRead {
		t.Fatal("new message arrived already read")
	}
}

func TestSubmitRejectsBlankMessage(t *testing.T) {
	svc := newFixture(t)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Name:    "Karim",
		Email:   "karim@example.com",
		Message: "   ",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestMarkReadAndListOrdering(t *testing.T) {
	svc := newFixture(t)

	first, err := svc.Submit(context.Background(), SubmitRequest{
		Name: "A", Email: "a@example.com", Message: "first message",
	})
	if err != nil {
		t.Fatalf("submit first: %v", err)
	}
	if _, err := svc.Submit(context.Background(), SubmitRequest{
		Name: "B", Email: "b@example.com", Message: "second message",
	}); err != nil {
		t.Fatalf("submit second: %v", err)
	}

	read, err := svc.MarkRead(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !read.IsRead {
		t.Fatal("message not flagged read")
	}

	page, err := svc.List(context.Background(), pagination.Params{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(page.Messages))
	}
	if page.Messages[0].IsRead {
		t.Fatal("unread message not listed first")
	}
}

func TestDeleteRemovesMessage(t *testing.T) {
	svc := newFixture(t)

	dto, err := svc.Submit(context.Background(), SubmitRequest{
		Name: "A", Email: "a@example.com", Message: "delete me please",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := svc.Delete(context.Background(), dto.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	page, err := svc.List(context.Background(), pagination.Params{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Messages) != 0 {
		t.Fatalf("messages = %d after delete, want 0", len(page.Messages))
	}
}
