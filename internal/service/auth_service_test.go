package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/repository"
	"github.com/Tomlord1122/doit-backend/internal/session"
)

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.register(t, "alice")

	tests := []struct {
		name string
		req  RegisterRequest
		kind error
	}{
		{"missing username", RegisterRequest{Password: "secret123"}, domain.ErrInvalidInput},
		{"missing password", RegisterRequest{Username: "bob"}, domain.ErrInvalidInput},
		{"short password", RegisterRequest{Username: "bob", Password: "12345"}, domain.ErrInvalidInput},
		{"short multibyte password", RegisterRequest{Username: "bob", Password: "ééé"}, domain.ErrInvalidInput},
		{"password over 72 bytes", RegisterRequest{Username: "bob", Password: strings.Repeat("a", 80)}, domain.ErrInvalidInput},
		{"taken username", RegisterRequest{Username: "alice", Password: "secret123"}, domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.req)
			assertKind(t, err, tt.kind)
		})
	}
}

func TestRegisterAcceptsPasswordBounds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for name, password := range map[string]string{
		"six multibyte characters": "éééééé",
		"exactly 72 bytes":         strings.Repeat("a", 72),
	} {
		resp, err := f.auth.Register(ctx, RegisterRequest{Username: name, Password: password})
		if err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
		if _, err := f.auth.Authenticate(ctx, LoginRequest{Username: resp.User.Username, Password: password}); err != nil {
			t.Errorf("Authenticate(%s) error = %v", name, err)
		}
	}
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := f.auth.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Password: "secret123",
		Name:     ptr("Alice"),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.Message != "User created successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.User.Name == nil || *resp.User.Name != "Alice" {
		t.Errorf("expected name Alice, got %v", resp.User.Name)
	}

	claims, err := f.tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token user = %s, want %s", claims.UserID, resp.User.ID)
	}
}

func TestRegisterDisabled(t *testing.T) {
	f := newFixture(t, nil)
	users := repository.NewGormUserRepository(f.db.GetDB())
	svc := NewAuthService(users, f.tokens, nil, false)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "secret123"})
	assertKind(t, err, domain.ErrForbidden)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.register(t, "alice")

	resp, err := f.auth.Authenticate(ctx, LoginRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if resp.User.ID != id {
		t.Errorf("logged in as %s, want %s", resp.User.ID, id)
	}

	_, wrongPassword := f.auth.Authenticate(ctx, LoginRequest{Username: "alice", Password: "nope-nope"})
	_, unknownUser := f.auth.Authenticate(ctx, LoginRequest{Username: "mallory", Password: "secret123"})
	assertKind(t, wrongPassword, domain.ErrUnauthorized)
	assertKind(t, unknownUser, domain.ErrUnauthorized)
	if wrongPassword.Error() != unknownUser.Error() {
		t.Errorf("login failures differ: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestCurrentUserUnknown(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.auth.CurrentUser(context.Background(), uuid.New())
	assertKind(t, err, domain.ErrUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := session.NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	f := newFixture(t, store)
	ctx := context.Background()
	resp, err := f.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	claims, err := f.tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := f.auth.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	revoked, err := store.IsRevoked(ctx, claims.ID)
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked after logout")
	}
	if ttl := mr.TTL("revoked:" + claims.ID); ttl <= 0 || ttl > time.Hour {
		t.Errorf("unexpected revocation ttl %v", ttl)
	}
}

func TestLogoutWithoutClaims(t *testing.T) {
	f := newFixture(t, nil)
	assertKind(t, f.auth.Logout(context.Background(), nil), domain.ErrUnauthorized)
	assertKind(t, f.auth.Logout(context.Background(), &auth.Claims{}), domain.ErrUnauthorized)
}

func TestDeleteAccountRemovesOwnedData(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	work := f.category(t, alice, "Work")
	f.todo(t, alice, &work.ID, "Ship it")
	f.todo(t, bob, nil, "Keep me")

	if err := f.auth.DeleteAccount(ctx, alice); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	assertKind(t, f.auth.DeleteAccount(ctx, alice), domain.ErrUnauthorized)

	var todos, categories int64
	f.db.GetDB().Model(&domain.Todo{}).Where("user_id = ?", alice).Count(&todos)
	f.db.GetDB().Model(&domain.Category{}).Where("user_id = ?", alice).Count(&categories)
	if todos != 0 || categories != 0 {
		t.Errorf("expected no leftovers, got %d todos and %d categories", todos, categories)
	}

	remaining, err := f.todos.ListTodos(ctx, bob, "")
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected bob's todo to survive, got %d", len(remaining))
	}
}
