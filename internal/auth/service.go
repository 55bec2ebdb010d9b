// Package auth owns identities: registration, password login, bearer tokens
// backed by revocable sessions, and staff-only user administration.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/rogerio-castellano/inventory-changelog/internal/models"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided or are invalid")
	ErrSessionNotFound    = errors.New("session not found or already logged out")
	ErrUserNotFound       = repo.ErrUserNotFound
)

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInput is a staff-side create: like Registration plus the staff flag.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsStaff  bool   `json:"is_staff"`
}

// UserPatch carries the fields present in an update request.
type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsStaff  *bool   `json:"is_staff"`
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type Service struct {
	users    repo.UserRepository
	sessions SessionStore
	tokens   *TokenManager
	cost     int
	logger   *slog.Logger
}

type Option func(*Service)

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(users repo.UserRepository, sessions SessionStore, tokens *TokenManager, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		cost:     bcrypt.DefaultCost,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateUsername):
		return duplicateError("username")
	case errors.Is(err, repo.ErrDuplicateEmail):
		return duplicateError("email")
	}
	return err
}

// Register creates a regular (non-staff) account.
func (s *Service) Register(ctx context.Context, in Registration) (models.User, error) {
	return s.CreateUser(ctx, UserInput{Username: in.Username, Email: in.Email, Password: in.Password})
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	ve := apperr.NewValidationError()
	validateUsername(ve, username)
	validateEmail(ve, email)
	validatePassword(ve, in.Password)
	if err := ve.OrNil(); err != nil {
		return models.User{}, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	u, err := s.users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      in.IsStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return models.User{}, mapDuplicate(err)
	}
	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "staff", u.IsStaff)
	return u, nil
}

// Login verifies credentials and opens a session for the issued token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("login rejected", "username", u.Username)
		return LoginResult{}, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Generate(u)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.sessions.Save(ctx, claims.ID, u.ID, s.tokens.TTL()); err != nil {
		return LoginResult{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("user logged in", "user_id", u.ID)
	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// Logout revokes the session behind token. A well-formed token whose
// session is already gone yields ErrSessionNotFound.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ErrUnauthenticated
	}
	revoked, err := s.sessions.Revoke(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if !revoked {
		return ErrSessionNotFound
	}
	s.logger.Info("user logged out", "user_id", claims.Subject)
	return nil
}

// Authenticate resolves a bearer token to the current identity. The user is
// re-read so staff changes and deletions take effect immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Actor{}, ErrUnauthenticated
	}
	live, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("check session: %w", err)
	}
	if !live {
		return models.Actor{}, ErrUnauthenticated
	}
	id, err := claims.UserID()
	if err != nil {
		return models.Actor{}, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrUserNotFound) {
		return models.Actor{}, ErrUnauthenticated
	}
	if err != nil {
		return models.Actor{}, fmt.Errorf("load user: %w", err)
	}
	return u.Actor(), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateUser applies patch. With full set, username and email are required.
func (s *Service) UpdateUser(ctx context.Context, id int64, patch UserPatch, full bool) (models.User, error) {
	ve := apperr.NewValidationError()
	if full && patch.Username == nil {
		ve.Add("username", "This field is required.")
	}
	if full && patch.Email == nil {
		ve.Add("email", "This field is required.")
	}
	if patch.Username != nil {
		validateUsername(ve, strings.TrimSpace(*patch.Username))
	}
	if patch.Email != nil {
		validateEmail(ve, strings.TrimSpace(*patch.Email))
	}
	if patch.Password != nil {
		validatePassword(ve, *patch.Password)
	}
	if err := ve.OrNil(); err != nil {
		return models.User{}, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if patch.Username != nil {
		u.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.IsStaff != nil {
		u.IsStaff = *patch.IsStaff
	}
	if patch.Password != nil {
		if u.PasswordHash, err = s.hash(*patch.Password); err != nil {
			return models.User{}, err
		}
	}
	u.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return models.User{}, mapDuplicate(err)
	}
	s.logger.Info("user updated", "user_id", updated.ID)
	return updated, nil
}

// DeleteUser removes the account and every item it owns.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// EnsureStaffUser creates the bootstrap staff account when no user with
// that username exists yet. It reports whether an account was created.
func (s *Service) EnsureStaffUser(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrUserNotFound) {
		return false, err
	}
	if _, err := s.CreateUser(ctx, UserInput{Username: username, Email: email, Password: password, IsStaff: true}); err != nil {
		return false, fmt.Errorf("bootstrap staff user: %w", err)
	}
	return true, nil
}
