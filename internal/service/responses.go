package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tomlord1122/doit-backend/internal/domain"
)

// Response DTOs decouple the HTTP payloads from the GORM models. Field
// names follow the client's camelCase contract.

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      *string   `json:"name"`
	CreatedAt string    `json:"createdAt"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type CategoryResponse struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	Emoji       string         `json:"emoji"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Color       string         `json:"color"`
	Order       int            `json:"order"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Todos       []TodoResponse `json:"todos"`
}

// CategorySummary is the category embedded in a todo.
type CategorySummary struct {
	ID    uuid.UUID `json:"id"`
	Emoji string    `json:"emoji"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Order int       `json:"order"`
}

type TodoResponse struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	Title          string           `json:"title"`
	Description    *string          `json:"description"`
	CategoryID     *uuid.UUID       `json:"categoryId"`
	DateCreated    string           `json:"dateCreated"`
	DateToComplete *string          `json:"dateToComplete"`
	Order          int              `json:"order"`
	Completed      bool             `json:"completed"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
	Category       *CategorySummary `json:"category"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	todos := make([]TodoResponse, 0, len(c.Todos))
	for i := range c.Todos {
		todos = append(todos, toTodoResponse(&c.Todos[i]))
	}
	return CategoryResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Emoji:       c.Emoji,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Order:       c.Order,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
		Todos:       todos,
	}
}

func toTodoResponse(t *domain.Todo) TodoResponse {
	resp := TodoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		DateCreated: formatTime(t.DateCreated),
		Order:       t.Order,
		Completed:   t.Completed,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.DateToComplete != nil {
		due := formatTime(*t.DateToComplete)
		resp.DateToComplete = &due
	}
	if t.Category != nil {
		resp.Category = &CategorySummary{
			ID:    t.Category.ID,
			Emoji: t.Category.Emoji,
			Name:  t.Category.Name,
			Color: t.Category.Color,
			Order: t.Category.Order,
		}
	}
	return resp
}
