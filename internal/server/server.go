package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/config"
	"github.com/Tomlord1122/doit-backend/internal/database"
	"github.com/Tomlord1122/doit-backend/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Auth       service.AuthService
	Categories service.CategoryService
	Todos      service.TodoService
}

type Server struct {
	port        int
	corsOrigins []string
	services    Services
	db          database.Service
	tokens      *auth.TokenIssuer
	revoked     auth.RevocationList
}

// NewServer builds the HTTP server. revoked may be nil when no revocation
// store is configured.
func NewServer(cfg config.Config, services Services, dbService database.Service, tokens *auth.TokenIssuer, revoked auth.RevocationList) *http.Server {
	appServer := &Server{
		port:        cfg.Port,
		corsOrigins: cfg.CORSOrigins,
		services:    services,
		db:          dbService,
		tokens:      tokens,
		revoked:     revoked,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
