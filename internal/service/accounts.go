package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// SignupInput is the payload of an account registration.
type SignupInput struct {
	Email    string `json:"email" validate:"required,min=5,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// SigninInput is the payload of a sign-in.
type SigninInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// AccountService registers users and issues tokens.
type AccountService struct {
	users            repository.Users
	tokens           *auth.TokenManager
	hasher           auth.PasswordHasher
	allowAdminSignup bool
	logger           *log.Logger
}

const invalidCredentials = "invalid email or password"

// Signup registers a user. Requesting the admin role is refused unless
// self-service admin signup is enabled.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	in = normalizeSignup(in)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	role := domain.Role(in.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if role == domain.RoleAdmin && !s.allowAdminSignup {
		return domain.User{}, domain.Forbidden("admin accounts cannot be created through signup")
	}
	return s.create(ctx, in, role)
}

// CreateAdmin registers an admin account regardless of signup policy.
func (s *AccountService) CreateAdmin(ctx context.Context, in SignupInput) (domain.User, error) {
	in.Role = string(domain.RoleAdmin)
	in = normalizeSignup(in)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	return s.create(ctx, in, domain.RoleAdmin)
}

func normalizeSignup(in SignupInput) SignupInput {
	in.Email = fold(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.Name = fold(in.Name)
	in.Role = fold(in.Role)
	return in
}

func (s *AccountService) create(ctx context.Context, in SignupInput, role domain.Role) (domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.Create(ctx, domain.User{
		ID:           newID(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, domain.Conflict("an account with this email already exists")
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Printf("accounts: registered %s (%s)", user.ID, user.Role)
	return user, nil
}

// Signin checks credentials and issues a bearer token. Unknown emails and
// wrong passwords produce the same error.
func (s *AccountService) Signin(ctx context.Context, in SigninInput) (Session, error) {
	in.Email = fold(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	if err := validateInput(in); err != nil {
		return Session{}, err
	}
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, domain.Unauthorized(invalidCredentials)
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, domain.Unauthorized(invalidCredentials)
		}
		return Session{}, err
	}
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate verifies a bearer token.
func (s *AccountService) Authenticate(token string) (auth.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return auth.Identity{}, domain.Unauthorized("token expired")
		}
		return auth.Identity{}, domain.Unauthorized("invalid token")
	}
	return id, nil
}
