package handlers

import (
	"errors"
	"net/http"

	"github.com/rogerio-castellano/inventory-changelog/internal/auth"
	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

func userResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}

// RegisterHandler godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "username, email and password (at least 8 characters)"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	u, err := s.auth.Register(r.Context(), auth.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, userResponse(u))
}

// LoginHandler godoc
// @Summary Authenticate user and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body UserLogin true "username and password"
// @Success 200 {object} LoginResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials UserLogin
	if err := readJSON(w, r, &credentials); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	res, err := s.auth.Login(r.Context(), credentials.Username, credentials.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, LoginResult{Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// LogoutHandler godoc
// @Summary Invalidate the caller's token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Session already closed"
// @Failure 401 {object} ErrorResponse
// @Router /logout [post]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	err := s.auth.Logout(r.Context(), token)
	switch {
	case err == nil:
		s.respond(w, r, http.StatusOK, MessageResponse{Message: "Successfully logged out."})
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
	case errors.Is(err, auth.ErrSessionNotFound):
		writeError(w, http.StatusBadRequest, "Logout failed.")
	default:
		// Logout faults are reported to the client as a plain failure.
		s.logger.Error("logout failed", "err", err)
		writeError(w, http.StatusBadRequest, "Logout failed.")
	}
}
