package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/domain"
)

const maxBodyBytes = 1 << 20

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.signupHandler)
			r.Post("/login", s.loginHandler)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(s.tokens, s.revoked))
				r.Get("/me", s.meHandler)
				r.Delete("/me", s.deleteAccountHandler)
				r.Post("/logout", s.logoutHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.tokens, s.revoked))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.listCategoriesHandler)
				r.Post("/", s.createCategoryHandler)
				r.Post("/reorder", s.reorderCategoriesHandler)
				r.Get("/{id}", s.getCategoryHandler)
				r.Put("/{id}", s.updateCategoryHandler)
				r.Delete("/{id}", s.deleteCategoryHandler)
			})

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", s.listTodosHandler)
				r.Get("/category/{categoryId}", s.listTodosByCategoryHandler)
				r.Post("/", s.createTodoHandler)
				r.Post("/reorder", s.reorderTodosHandler)
				r.Get("/{id}", s.getTodoHandler)
				r.Put("/{id}", s.updateTodoHandler)
				r.Delete("/{id}", s.deleteTodoHandler)
			})
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	healthStats["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// decodeJSON reads a single JSON object into dst and writes a 400 response
// describing the problem when it cannot. It reports whether decoding
// succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &syntaxError) {
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.Is(err, io.ErrUnexpectedEOF) {
		msg := "Request body contains badly-formed JSON"
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.As(err, &unmarshalTypeError) {
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if strings.HasPrefix(err.Error(), "json: unknown field ") {
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.Is(err, io.EOF) {
		msg := "Request body must not be empty"
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.As(err, &maxBytesError) {
		msg := fmt.Sprintf("Request body must not be larger than %d bytes", maxBytesError.Limit)
		respondWithError(w, http.StatusRequestEntityTooLarge, msg)
	} else {
		log.Printf("Error decoding request body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
	}
	return false
}

// pathID parses the named URL parameter as a uuid.
func pathID(w http.ResponseWriter, r *http.Request, param, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID provided", entity))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser reads the user id stored by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// writeServiceError maps domain errors to their HTTP status. Anything else is
// logged and reported as a generic failure.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		respondWithError(w, statusFor(domainErr.Kind), domainErr.Message)
		return
	}
	log.Printf("Error calling %s service: %v", action, err)
	respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", action))
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(kind, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
