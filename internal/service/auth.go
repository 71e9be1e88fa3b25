package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

const (
	MinAccountLength  = 4
	MinPasswordLength = 8

	// githubAccountPrefix namespaces accounts created by GitHub login so
	// they cannot collide with password registrations.
	githubAccountPrefix = "gh_"
)

// AuthService registers and logs in users and issues their tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	admins    map[string]bool
	logger    *slog.Logger
}

// NewAuthService wires the service. Accounts in adminAccounts are given
// the admin role when they are first created.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	adminAccounts []string,
	logger *slog.Logger,
) *AuthService {
	admins := make(map[string]bool, len(adminAccounts))
	for _, a := range adminAccounts {
		admins[a] = true
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		admins:    admins,
		logger:    logger,
	}
}

// AuthResult is a logged-in user together with their fresh access token.
type AuthResult struct {
	User  *model.User
	Token string
}

func (s *AuthService) roleFor(account string) string {
	if s.admins[account] {
		return model.RoleAdmin
	}
	return model.RoleUser
}

// Register creates a password account and returns its id.
func (s *AuthService) Register(ctx context.Context, req model.UserRegisterRequest) (int64, error) {
	account := strings.TrimSpace(req.Account)

	switch {
	case account == "" || req.Password == "" || req.CheckPassword == "":
		return 0, apperror.ValidationFailed("userAccount", "account and passwords are required")
	case len(account) < MinAccountLength:
		return 0, apperror.ValidationFailed("userAccount",
			fmt.Sprintf("account must be at least %d characters", MinAccountLength))
	case strings.HasPrefix(account, githubAccountPrefix):
		return 0, apperror.ValidationFailed("userAccount", "account must not start with "+githubAccountPrefix)
	case len(req.Password) < MinPasswordLength:
		return 0, apperror.ValidationFailed("userPassword",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	case req.Password != req.CheckPassword:
		return 0, apperror.ValidationFailed("checkPassword", "passwords do not match")
	}

	if _, err := s.users.GetUserByAccount(ctx, account); err == nil {
		return 0, apperror.Conflict("user", account)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return 0, fmt.Errorf("service/auth: checking account %q: %w", account, err)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return 0, apperror.ValidationFailed("userPassword", err.Error())
	}

	user := &model.User{
		Account:      account,
		PasswordHash: hash,
		Name:         account,
		Role:         s.roleFor(account),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return 0, fmt.Errorf("service/auth: creating user %q: %w", account, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("account", account),
		slog.String("role", user.Role),
	)
	return user.ID, nil
}

// Login checks an account's password and issues a token. Unknown accounts
// and wrong passwords get the same error.
func (s *AuthService) Login(ctx context.Context, req model.UserLoginRequest) (*AuthResult, error) {
	account := strings.TrimSpace(req.Account)
	if account == "" || req.Password == "" {
		return nil, apperror.ValidationFailed("userAccount", "account and password are required")
	}

	wrong := apperror.ValidationFailed("userPassword", "account does not exist or password is wrong")

	user, err := s.users.GetUserByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, wrong
		}
		return nil, fmt.Errorf("service/auth: loading account %q: %w", account, err)
	}
	if user.PasswordHash == "" {
		return nil, wrong
	}
	if err := s.passwords.Verify(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("failed login", slog.String("account", account))
			return nil, wrong
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	return s.issue(user)
}

// LoginOrRegisterGitHub creates the local account for a GitHub user on
// first login and refreshes its profile on later ones.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	account := githubAccountPrefix + ghUser.Login
	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}

	user := &model.User{
		Account:   account,
		GitHubID:  ghUser.ID,
		Name:      name,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
		Profile:   ghUser.Bio,
		Role:      s.roleFor(account),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("account", user.Account),
	)
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID satisfies auth.UserLookup for the middleware.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "id must be positive")
	}
	return s.users.GetUserByID(ctx, id)
}

// ValidateToken returns the user id a token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (int64, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return 0, fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}
