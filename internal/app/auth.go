package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"immodash/internal/auth"
	"immodash/internal/domain"
)

const loginFailed = "Email ou mot de passe incorrect"

type LoginResult struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	User      *domain.User `json:"user,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type AuthService struct {
	users  domain.UserStore
	tokens *auth.TokenService
}

func NewAuthService(users domain.UserStore, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login checks credentials. Unknown emails and wrong passwords give the same
// answer and domain.ErrUnauthorized.
func (a *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := a.users.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return LoginResult{Error: loginFailed}, domain.ErrUnauthorized
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		log.Info().Str("email", email).Msg("login rejected")
		return LoginResult{Error: loginFailed}, domain.ErrUnauthorized
	}

	u.Role = auth.ResolveRole(u.Email, u.Role)
	u.Name = auth.DisplayName(u.Name, u.Email)
	u.Avatar = auth.Avatar(u.Name)
	token, exp, err := a.tokens.Issue(u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Success: true, Token: token, ExpiresAt: &exp, User: &u}, nil
}

// Authenticate turns a bearer token back into the signed-in user.
func (a *AuthService) Authenticate(token string) (domain.User, error) {
	c, err := a.tokens.Parse(token)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:    c.UserID,
		Email: c.Email,
		Name:  auth.DisplayName(c.Name, c.Email),
		Role:  auth.ResolveRole(c.Email, c.Role),
	}
	u.Avatar = auth.Avatar(u.Name)
	return u, nil
}

// CurrentRole is the role carried by token; invalid tokens are viewers.
func (a *AuthService) CurrentRole(token string) domain.Role {
	u, err := a.Authenticate(token)
	if err != nil {
		return domain.RoleViewer
	}
	return u.Role
}
