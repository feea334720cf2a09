package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/config"
	"github.com/Tomlord1122/doit-backend/internal/database"
	"github.com/Tomlord1122/doit-backend/internal/repository"
)

type fixture struct {
	db         database.Service
	tokens     *auth.TokenIssuer
	auth       AuthService
	categories CategoryService
	todos      TodoService
}

func newFixture(t *testing.T, revoked auth.RevocationList) *fixture {
	t.Helper()
	db, err := database.New(config.Database{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "service.db"),
		LogLevel:   "silent",
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	gdb := db.GetDB()
	categoryRepo := repository.NewGormCategoryRepository(gdb)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return &fixture{
		db:         db,
		tokens:     tokens,
		auth:       NewAuthService(repository.NewGormUserRepository(gdb), tokens, revoked, true),
		categories: NewCategoryService(categoryRepo),
		todos:      NewTodoService(repository.NewGormTodoRepository(gdb), categoryRepo),
	}
}

func (f *fixture) register(t *testing.T, username string) uuid.UUID {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), RegisterRequest{Username: username, Password: "secret123"})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return resp.User.ID
}

func (f *fixture) category(t *testing.T, userID uuid.UUID, name string) *CategoryResponse {
	t.Helper()
	resp, err := f.categories.CreateCategory(context.Background(), userID, CreateCategoryRequest{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory(%s) error = %v", name, err)
	}
	return resp
}

func (f *fixture) todo(t *testing.T, userID uuid.UUID, categoryID *uuid.UUID, title string) *TodoResponse {
	t.Helper()
	req := CreateTodoRequest{Title: title}
	if categoryID != nil {
		id := categoryID.String()
		req.CategoryID = &id
	}
	resp, err := f.todos.CreateTodo(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("CreateTodo(%s) error = %v", title, err)
	}
	return resp
}

func ptr[T any](v T) *T {
	return &v
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected error of kind %v, got %v", kind, err)
	}
}
