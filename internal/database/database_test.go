package database

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/doit-backend/internal/config"
	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/ordering"
)

// pgConfig is set by TestMain when a Postgres container could be started.
var pgConfig *config.Database

func mustStartPostgresContainer() (func(context.Context) error, *config.Database, error) {
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	ctx := context.Background()
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	return dbContainer.Terminate, &config.Database{
		Driver:   "postgres",
		Host:     dbHost,
		Port:     dbPort.Port(),
		Username: dbUser,
		Password: dbPwd,
		Name:     dbName,
		LogLevel: "silent",
	}, nil
}

func TestMain(m *testing.M) {
	flag.Parse()
	var teardown func(context.Context) error
	if !testing.Short() && os.Getenv("SKIP_INTEGRATION") == "" {
		var err error
		teardown, pgConfig, err = mustStartPostgresContainer()
		if err != nil {
			log.Printf("postgres container unavailable, integration tests will be skipped: %v", err)
			pgConfig = nil
		}
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("could not teardown postgres container: %v", err)
		}
	}
	os.Exit(code)
}

func requirePostgres(t *testing.T) Service {
	t.Helper()
	if pgConfig == nil {
		t.Skip("skipping integration test: no postgres container")
	}
	srv, err := New(*pgConfig)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := srv.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return srv
}

func newSQLite(t *testing.T) Service {
	t.Helper()
	srv, err := New(config.Database{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "doit.db"),
		LogLevel:   "silent",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(config.Database{Driver: "mysql"}); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestSQLiteHealthAndMigrate(t *testing.T) {
	srv := newSQLite(t)

	if err := srv.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	stats := srv.Health()
	if stats["status"] != "up" {
		t.Fatalf("expected status up, got %v", stats)
	}
	for _, table := range []string{"users", "categories", "todos"} {
		if !srv.GetDB().Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestPostgresHealth(t *testing.T) {
	srv := requirePostgres(t)
	defer srv.Close()

	stats := srv.Health()
	if stats["status"] != "up" {
		t.Fatalf("expected status to be up, got %s", stats["status"])
	}
	if _, ok := stats["error"]; ok {
		t.Fatalf("expected error not to be present")
	}
	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}

func TestPostgresInsertAtTop(t *testing.T) {
	srv := requirePostgres(t)
	defer srv.Close()
	db := srv.GetDB()

	user := domain.User{Username: "pg-" + uuid.NewString(), PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	scope := ordering.CategoryScope(user.ID, nil)

	var ids []uuid.UUID
	for _, title := range []string{"first", "second", "third"} {
		todo := domain.Todo{UserID: user.ID, Title: title}
		if err := db.Create(&todo).Error; err != nil {
			t.Fatalf("create todo: %v", err)
		}
		if err := ordering.InsertAtTop(db, &domain.Todo{}, scope, todo.ID); err != nil {
			t.Fatalf("InsertAtTop() error = %v", err)
		}
		ids = append(ids, todo.ID)
	}

	var todos []domain.Todo
	if err := db.Scopes(scope.Apply).Order("sort_order ASC").Find(&todos).Error; err != nil {
		t.Fatalf("list todos: %v", err)
	}
	want := []string{"third", "second", "first"}
	for i, todo := range todos {
		if todo.Title != want[i] || todo.Order != i {
			t.Fatalf("position %d: expected %s, got %s at %d", i, want[i], todo.Title, todo.Order)
		}
	}

	err := ordering.BulkReorder(db, &domain.Todo{}, uuid.New(), []ordering.Move{{ID: ids[0], Order: 99}})
	if !errors.Is(err, ordering.ErrUnownedItems) {
		t.Fatalf("expected ErrUnownedItems for a foreign owner, got %v", err)
	}
}
