package server

import (
	"net/http"

	"github.com/Tomlord1122/doit-backend/internal/service"
)

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	categories, err := s.services.Categories.ListCategories(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "retrieve categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (s *Server) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "category")
	if !ok {
		return
	}

	category, err := s.services.Categories.GetCategory(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err, "retrieve category")
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.services.Categories.CreateCategory(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "create category")
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

func (s *Server) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "category")
	if !ok {
		return
	}
	var req service.UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.services.Categories.UpdateCategory(r.Context(), userID, id, req)
	if err != nil {
		writeServiceError(w, err, "update category")
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "category")
	if !ok {
		return
	}

	if err := s.services.Categories.DeleteCategory(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reorderCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.ReorderCategoriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.services.Categories.ReorderCategories(r.Context(), userID, req); err != nil {
		writeServiceError(w, err, "reorder categories")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Categories reordered successfully"})
}
