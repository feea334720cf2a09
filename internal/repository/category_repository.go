package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/ordering"
)

// CategoryRepository defines the data operations for categories. Every
// method is bound to the owning user.
type CategoryRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Category, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error)
	NameTaken(ctx context.Context, userID uuid.UUID, name string, exceptID *uuid.UUID) (bool, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, userID, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Reorder(ctx context.Context, userID uuid.UUID, moves []ordering.Move) error
}

type gormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) CategoryRepository {
	return &gormCategoryRepository{db: db}
}

const (
	categoryListOrder = "sort_order ASC, created_at ASC"
	todoListOrder     = "sort_order ASC, date_created DESC"
)

func (r *gormCategoryRepository) withTodos(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload("Todos", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(OwnedBy(userID)).Order(todoListOrder)
		})
	}
}

func (r *gormCategoryRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID), r.withTodos(userID)).
		Order(categoryListOrder).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByID returns gorm.ErrRecordNotFound when the category does not exist
// or belongs to another user.
func (r *gormCategoryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(userID), r.withTodos(userID)).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *gormCategoryRepository) NameTaken(ctx context.Context, userID uuid.UUID, name string, exceptID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Category{}).
		Scopes(OwnedBy(userID)).
		Where("name = ?", name)
	if exceptID != nil {
		query = query.Where("id <> ?", *exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create appends the category after the owner's last one.
func (r *gormCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := ordering.NextPosition(tx, &domain.Category{}, ordering.UserScope(category.UserID))
		if err != nil {
			return err
		}
		category.Order = next
		return tx.Omit("Todos").Create(category).Error
	})
}

func (r *gormCategoryRepository) Update(ctx context.Context, userID, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := r.FindByID(ctx, userID, id)
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Category{}).
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

// Delete removes the category and moves its todos to the unspecified
// bucket without renumbering them.
func (r *gormCategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.Category{}).
			Scopes(OwnedBy(userID)).
			Where("id = ?", id).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		if _, err := ordering.RemoveFromScope(tx, &domain.Todo{}, userID, id); err != nil {
			return err
		}
		return tx.Scopes(OwnedBy(userID)).Where("id = ?", id).Delete(&domain.Category{}).Error
	})
}

func (r *gormCategoryRepository) Reorder(ctx context.Context, userID uuid.UUID, moves []ordering.Move) error {
	return ordering.BulkReorder(r.db.WithContext(ctx), &domain.Category{}, userID, moves)
}
