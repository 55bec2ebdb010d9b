package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/inventory-changelog/internal/auth"
)

// ListUsersHandler godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UsersResult
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (s *Server) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := UsersResult{Data: make([]UserResponse, len(users)), Meta: Meta{TotalCount: len(users)}}
	for i, u := range users {
		resp.Data[i] = userResponse(u)
	}
	s.respond(w, r, http.StatusOK, resp)
}

// CreateUserHandler godoc
// @Summary Create a user, optionally with staff rights
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body auth.UserInput true "User to create"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [post]
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req auth.UserInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	u, err := s.auth.CreateUser(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, userResponse(u))
}

// GetUserHandler godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	u, err := s.auth.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, userResponse(u))
}

// ReplaceUserHandler godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body auth.UserPatch true "username and email required; password optional"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (s *Server) ReplaceUserHandler(w http.ResponseWriter, r *http.Request) {
	s.updateUser(w, r, true)
}

// PatchUserHandler godoc
// @Summary Partially update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body auth.UserPatch true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) PatchUserHandler(w http.ResponseWriter, r *http.Request) {
	s.updateUser(w, r, false)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, full bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	var req auth.UserPatch
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	u, err := s.auth.UpdateUser(r.Context(), id, req, full)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, userResponse(u))
}

// DeleteUserHandler godoc
// @Summary Delete a user and the items they own
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "Deleted successfully"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err := s.auth.DeleteUser(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
