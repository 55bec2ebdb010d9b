package handlers

import (
	"log/slog"

	"github.com/rogerio-castellano/inventory-changelog/internal/auth"
	"github.com/rogerio-castellano/inventory-changelog/internal/inventory"
)

// Server holds the dependencies shared by every handler.
type Server struct {
	inventory *inventory.Service
	auth      *auth.Service
	logger    *slog.Logger
}

func NewServer(inv *inventory.Service, authSvc *auth.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{inventory: inv, auth: authSvc, logger: logger}
}
