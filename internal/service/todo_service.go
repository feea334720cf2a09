package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/ordering"
	"github.com/Tomlord1122/doit-backend/internal/repository"
)

// UnspecifiedFilter lists the todos that have no category.
const UnspecifiedFilter = "unspecified"

// CreateTodoRequest holds the data needed to create a todo. An empty
// categoryId puts the todo in the unspecified bucket.
type CreateTodoRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	CategoryID     *string `json:"categoryId"`
	DateToComplete *string `json:"dateToComplete"`
	Completed      bool    `json:"completed"`
}

// UpdateTodoRequest holds a partial update. Description, categoryId and
// dateToComplete may be sent as null to clear them.
type UpdateTodoRequest struct {
	Title          *string          `json:"title"`
	Description    Optional[string] `json:"description"`
	CategoryID     Optional[string] `json:"categoryId"`
	DateToComplete Optional[string] `json:"dateToComplete"`
	Completed      *bool            `json:"completed"`
}

// TodoPosition is one entry of a reorder request. An absent categoryId keeps
// the todo's category; null moves it to the unspecified bucket.
type TodoPosition struct {
	ID         string           `json:"id"`
	Order      *int             `json:"order"`
	CategoryID Optional[string] `json:"categoryId"`
}

type ReorderTodosRequest struct {
	Todos []TodoPosition `json:"todos"`
}

// TodoService defines the todo use cases.
type TodoService interface {
	// ListTodos returns all todos when filter is empty, the unspecified
	// bucket for "unspecified", or a single category's todos otherwise.
	ListTodos(ctx context.Context, userID uuid.UUID, filter string) ([]TodoResponse, error)
	GetTodo(ctx context.Context, userID, id uuid.UUID) (*TodoResponse, error)
	CreateTodo(ctx context.Context, userID uuid.UUID, req CreateTodoRequest) (*TodoResponse, error)
	UpdateTodo(ctx context.Context, userID, id uuid.UUID, req UpdateTodoRequest) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, userID, id uuid.UUID) error
	ReorderTodos(ctx context.Context, userID uuid.UUID, req ReorderTodosRequest) error
}

type todoService struct {
	todos      repository.TodoRepository
	categories repository.CategoryRepository
}

func NewTodoService(todos repository.TodoRepository, categories repository.CategoryRepository) TodoService {
	return &todoService{todos: todos, categories: categories}
}

func (s *todoService) ListTodos(ctx context.Context, userID uuid.UUID, filter string) ([]TodoResponse, error) {
	var f repository.TodoFilter
	switch filter {
	case "":
	case UnspecifiedFilter:
		f.ByCategory = true
	default:
		categoryID, err := uuid.Parse(filter)
		if err != nil {
			return nil, domain.InvalidInput("Invalid category id")
		}
		f.ByCategory = true
		f.CategoryID = &categoryID
	}

	todos, err := s.todos.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, toTodoResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) GetTodo(ctx context.Context, userID, id uuid.UUID) (*TodoResponse, error) {
	todo, err := s.todos.FindByID(ctx, userID, id)
	if err != nil {
		return nil, todoError(err, "fetch", id)
	}
	resp := toTodoResponse(todo)
	return &resp, nil
}

func (s *todoService) CreateTodo(ctx context.Context, userID uuid.UUID, req CreateTodoRequest) (*TodoResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.InvalidInput("Title is required")
	}

	todo := &domain.Todo{
		UserID:      userID,
		Title:       title,
		Description: emptyToNil(req.Description),
		Completed:   req.Completed,
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := s.ownedCategory(ctx, userID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		todo.CategoryID = &categoryID
	}

	if req.DateToComplete != nil && *req.DateToComplete != "" {
		due, err := parseDate(*req.DateToComplete)
		if err != nil {
			return nil, err
		}
		todo.DateToComplete = &due
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return s.GetTodo(ctx, userID, todo.ID)
}

func (s *todoService) UpdateTodo(ctx context.Context, userID, id uuid.UUID, req UpdateTodoRequest) (*TodoResponse, error) {
	if _, err := s.todos.FindByID(ctx, userID, id); err != nil {
		return nil, todoError(err, "fetch", id)
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.InvalidInput("Title cannot be empty")
		}
		fields["title"] = title
	}
	if req.Description.Set {
		if req.Description.Value == nil {
			fields["description"] = nil
		} else {
			fields["description"] = *req.Description.Value
		}
	}
	if req.CategoryID.Set {
		if req.CategoryID.Value == nil || *req.CategoryID.Value == "" {
			fields["category_id"] = nil
		} else {
			categoryID, err := s.ownedCategory(ctx, userID, *req.CategoryID.Value)
			if err != nil {
				return nil, err
			}
			fields["category_id"] = categoryID
		}
	}
	if req.DateToComplete.Set {
		if req.DateToComplete.Value == nil || *req.DateToComplete.Value == "" {
			fields["date_to_complete"] = nil
		} else {
			due, err := parseDate(*req.DateToComplete.Value)
			if err != nil {
				return nil, err
			}
			fields["date_to_complete"] = due
		}
	}
	if req.Completed != nil {
		fields["completed"] = *req.Completed
	}

	if err := s.todos.Update(ctx, userID, id, fields); err != nil {
		return nil, todoError(err, "update", id)
	}
	return s.GetTodo(ctx, userID, id)
}

func (s *todoService) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.todos.Delete(ctx, userID, id); err != nil {
		return todoError(err, "delete", id)
	}
	return nil
}

func (s *todoService) ReorderTodos(ctx context.Context, userID uuid.UUID, req ReorderTodosRequest) error {
	if req.Todos == nil {
		return domain.InvalidInput("Todos must be an array")
	}

	moves := make([]ordering.Move, 0, len(req.Todos))
	targets := map[uuid.UUID]struct{}{}
	for _, item := range req.Todos {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return domain.InvalidInput(fmt.Sprintf("Invalid todo id %q", item.ID))
		}
		if item.Order == nil {
			return domain.InvalidInput("Each todo needs an order")
		}
		move := ordering.Move{ID: id, Order: *item.Order}
		if item.CategoryID.Set {
			move.MoveScope = true
			if item.CategoryID.Value != nil && *item.CategoryID.Value != "" {
				categoryID, err := uuid.Parse(*item.CategoryID.Value)
				if err != nil {
					return domain.InvalidInput(fmt.Sprintf("Invalid category id %q", *item.CategoryID.Value))
				}
				move.CategoryID = &categoryID
				targets[categoryID] = struct{}{}
			}
		}
		moves = append(moves, move)
	}

	for categoryID := range targets {
		_, err := s.categories.FindByID(ctx, userID, categoryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Forbidden("Unauthorized category access")
		}
		if err != nil {
			return fmt.Errorf("check category %s: %w", categoryID, err)
		}
	}

	if err := s.todos.Reorder(ctx, userID, moves); err != nil {
		if errors.Is(err, ordering.ErrUnownedItems) {
			return domain.Forbidden("Unauthorized todo access")
		}
		return fmt.Errorf("reorder todos: %w", err)
	}
	return nil
}

// ownedCategory parses raw and checks that it names one of userID's
// categories.
func (s *todoService) ownedCategory(ctx context.Context, userID uuid.UUID, raw string) (uuid.UUID, error) {
	categoryID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.InvalidInput("Invalid category")
	}
	if _, err := s.categories.FindByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domain.InvalidInput("Invalid category")
		}
		return uuid.Nil, fmt.Errorf("check category %s: %w", categoryID, err)
	}
	return categoryID, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.InvalidInput(fmt.Sprintf("Invalid date %q", raw))
}

func todoError(err error, op string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("Todo not found")
	}
	return fmt.Errorf("%s todo %s: %w", op, id, err)
}
