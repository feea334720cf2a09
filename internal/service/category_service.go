package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/ordering"
	"github.com/Tomlord1122/doit-backend/internal/repository"
)

// CreateCategoryRequest holds the data needed to create a category. Emoji
// and color fall back to defaults when omitted.
type CreateCategoryRequest struct {
	Emoji       *string `json:"emoji"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// UpdateCategoryRequest holds a partial update. Omitted fields are kept;
// description may be sent as null to clear it.
type UpdateCategoryRequest struct {
	Emoji       *string          `json:"emoji"`
	Name        *string          `json:"name"`
	Description Optional[string] `json:"description"`
	Color       *string          `json:"color"`
}

type CategoryPosition struct {
	ID    string `json:"id"`
	Order *int   `json:"order"`
}

type ReorderCategoriesRequest struct {
	Categories []CategoryPosition `json:"categories"`
}

// CategoryService defines the category use cases. Every call is made on
// behalf of the user identified by userID.
type CategoryService interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]CategoryResponse, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*CategoryResponse, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error)
	// DeleteCategory moves the category's todos to the unspecified bucket
	// before removing it.
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
	ReorderCategories(ctx context.Context, userID uuid.UUID, req ReorderCategoriesRequest) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}

func (s *categoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, toCategoryResponse(&categories[i]))
	}
	return responses, nil
}

func (s *categoryService) GetCategory(ctx context.Context, userID, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, categoryError(err, "fetch", id)
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, userID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.InvalidInput("Name is required")
	}
	if err := s.ensureNameFree(ctx, userID, name, nil); err != nil {
		return nil, err
	}

	category := &domain.Category{
		UserID:      userID,
		Emoji:       domain.DefaultCategoryEmoji,
		Name:        name,
		Description: emptyToNil(req.Description),
		Color:       randomColor(),
	}
	if req.Emoji != nil && *req.Emoji != "" {
		category.Emoji = *req.Emoji
	}
	if req.Color != nil && *req.Color != "" {
		category.Color = *req.Color
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if repository.IsDuplicate(err) {
			return nil, domain.Conflict("Category name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return nil, categoryError(err, "fetch", id)
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.InvalidInput("Name is required")
		}
		if err := s.ensureNameFree(ctx, userID, name, &id); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Emoji != nil {
		if *req.Emoji == "" {
			return nil, domain.InvalidInput("Emoji cannot be empty")
		}
		fields["emoji"] = *req.Emoji
	}
	if req.Color != nil {
		if *req.Color == "" {
			return nil, domain.InvalidInput("Color cannot be empty")
		}
		fields["color"] = *req.Color
	}
	if req.Description.Set {
		if req.Description.Value == nil {
			fields["description"] = nil
		} else {
			fields["description"] = *req.Description.Value
		}
	}

	if err := s.repo.Update(ctx, userID, id, fields); err != nil {
		if repository.IsDuplicate(err) {
			return nil, domain.Conflict("Category name already exists")
		}
		return nil, categoryError(err, "update", id)
	}
	return s.GetCategory(ctx, userID, id)
}

func (s *categoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return categoryError(err, "delete", id)
	}
	return nil
}

func (s *categoryService) ReorderCategories(ctx context.Context, userID uuid.UUID, req ReorderCategoriesRequest) error {
	if req.Categories == nil {
		return domain.InvalidInput("Categories must be an array")
	}
	moves := make([]ordering.Move, 0, len(req.Categories))
	for _, item := range req.Categories {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return domain.InvalidInput(fmt.Sprintf("Invalid category id %q", item.ID))
		}
		if item.Order == nil {
			return domain.InvalidInput("Each category needs an order")
		}
		moves = append(moves, ordering.Move{ID: id, Order: *item.Order})
	}

	if err := s.repo.Reorder(ctx, userID, moves); err != nil {
		if errors.Is(err, ordering.ErrUnownedItems) {
			return domain.Forbidden("Unauthorized category access")
		}
		return fmt.Errorf("reorder categories: %w", err)
	}
	return nil
}

func (s *categoryService) ensureNameFree(ctx context.Context, userID uuid.UUID, name string, exceptID *uuid.UUID) error {
	taken, err := s.repo.NameTaken(ctx, userID, name, exceptID)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return domain.Conflict("Category name already exists")
	}
	return nil
}

func categoryError(err error, op string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("Category not found")
	}
	return fmt.Errorf("%s category %s: %w", op, id, err)
}
