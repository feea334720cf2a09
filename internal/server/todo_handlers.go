package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/doit-backend/internal/service"
)

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	s.listTodos(w, r, "")
}

// listTodosByCategoryHandler accepts a category id or "unspecified".
func (s *Server) listTodosByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	s.listTodos(w, r, chi.URLParam(r, "categoryId"))
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request, filter string) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	todos, err := s.services.Todos.ListTodos(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, err, "retrieve todos")
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "todo")
	if !ok {
		return
	}

	todo, err := s.services.Todos.GetTodo(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err, "retrieve todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := s.services.Todos.CreateTodo(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "create todo")
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "todo")
	if !ok {
		return
	}
	var req service.UpdateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := s.services.Todos.UpdateTodo(r.Context(), userID, id, req)
	if err != nil {
		writeServiceError(w, err, "update todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "todo")
	if !ok {
		return
	}

	if err := s.services.Todos.DeleteTodo(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "delete todo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reorderTodosHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.ReorderTodosRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.services.Todos.ReorderTodos(r.Context(), userID, req); err != nil {
		writeServiceError(w, err, "reorder todos")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Todos reordered successfully"})
}
