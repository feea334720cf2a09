package server

import (
	"log"
	"net/http"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/service"
)

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.services.Auth.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "create user")
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.services.Auth.Authenticate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "log in")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := s.services.Auth.CurrentUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "retrieve user")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	if err := s.services.Auth.Logout(r.Context(), claims); err != nil {
		writeServiceError(w, err, "log out")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) deleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := s.services.Auth.DeleteAccount(r.Context(), userID); err != nil {
		writeServiceError(w, err, "delete account")
		return
	}
	if claims, ok := auth.ClaimsFrom(r.Context()); ok {
		if err := s.services.Auth.Logout(r.Context(), claims); err != nil {
			log.Printf("Error revoking token after account deletion: %v", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
