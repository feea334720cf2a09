package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/ordering"
)

// TodoFilter selects which of a user's todos to list. The zero value lists
// all of them; ByCategory with a nil CategoryID lists the unspecified
// bucket.
type TodoFilter struct {
	ByCategory bool
	CategoryID *uuid.UUID
}

// TodoRepository defines the data operations for todos. Every method is
// bound to the owning user.
type TodoRepository interface {
	List(ctx context.Context, userID uuid.UUID, filter TodoFilter) ([]domain.Todo, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) error
	Update(ctx context.Context, userID, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Reorder(ctx context.Context, userID uuid.UUID, moves []ordering.Move) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) List(ctx context.Context, userID uuid.UUID, filter TodoFilter) ([]domain.Todo, error) {
	scope := ordering.UserScope(userID)
	if filter.ByCategory {
		scope = ordering.CategoryScope(userID, filter.CategoryID)
	}

	var todos []domain.Todo
	err := r.db.WithContext(ctx).
		Scopes(scope.Apply).
		Preload("Category").
		Order(todoListOrder).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// FindByID returns gorm.ErrRecordNotFound when the todo does not exist or
// belongs to another user.
func (r *gormTodoRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Preload("Category").
		Where("id = ?", id).
		First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Create stores the todo at the top of its (user, category) scope and
// shifts its siblings down by one.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo.Order = 0
		if err := tx.Omit("Category").Create(todo).Error; err != nil {
			return err
		}
		scope := ordering.CategoryScope(todo.UserID, todo.CategoryID)
		return ordering.InsertAtTop(tx, &domain.Todo{}, scope, todo.ID)
	})
}

// Update writes the given columns. Changing category_id here does not
// renumber either scope; positions are only rewritten by Reorder.
func (r *gormTodoRepository) Update(ctx context.Context, userID, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := r.FindByID(ctx, userID, id)
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		Delete(&domain.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormTodoRepository) Reorder(ctx context.Context, userID uuid.UUID, moves []ordering.Move) error {
	return ordering.BulkReorder(r.db.WithContext(ctx), &domain.Todo{}, userID, moves)
}
