package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-api/internal/domain"
	userrepo "storefront-api/internal/repository/user"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles signup/login flows and token issuance. It is the opaque
// auth capability the cart engine depends on for a stable owner id.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	passwordMin int
}

func New(repo userrepo.Repository, cfg TokenConfig) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(cfg),
		passwordMin: 8,
	}
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup registers a new user and returns it with a signed access token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, "", domain.ValidationError("email required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", domain.ValidationError("name required")
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, "", domain.ValidationError(fmt.Sprintf("password must be at least %d characters", s.passwordMin))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.Create(ctx, userrepo.CreateUserInput{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials and returns the user with a fresh access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Verify validates a token string and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}

// Me returns the profile for an authenticated user id.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}
