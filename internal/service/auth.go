package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/auth"
	"github.com/sakif/gift-registry/internal/mailer"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// AuthService handles registration, login, and the GitHub OAuth callback.
// It owns the mapping from credentials to issued tokens; setting cookies is
// the handler's job.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	passwords  *auth.PasswordService
	mail       *mailer.Mailer
	adminEmail string
	logger     *slog.Logger
}

// NewAuthService creates an AuthService. mail may be nil when SMTP is not
// configured. adminEmail names the account that gets the admin role — at
// startup via BootstrapAdmin, or immediately when that email registers;
// empty disables promotion.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mail *mailer.Mailer,
	adminEmail string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		passwords:  passwords,
		mail:       mail,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		logger:     logger,
	}
}

// roleFor returns the role a new account with this (normalized) email gets.
func (s *AuthService) roleFor(email string) model.Role {
	if s.adminEmail != "" && email == s.adminEmail {
		return model.RoleAdmin
	}
	return model.RoleRegular
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account and logs it in.
func (s *AuthService) Register(ctx context.Context, email, name, password, passwordConfirm string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if password != passwordConfirm {
		return nil, apperror.ValidationFailed("passwordConfirm", "passwords do not match")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is too long")
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         s.roleFor(email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("an account with this email already exists")
		}
		return nil, apperror.Internal(err)
	}

	s.logger.Info("user registered", slog.Int64("userID", user.ID))

	// Best effort — a down SMTP relay must not fail registration.
	s.mail.SendWelcome(user.Email, user.Name)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates an email/password pair. Unknown email and wrong
// password produce the same error, so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Forbidden("invalid email or password")
		}
		return nil, apperror.Internal(err)
	}

	// OAuth-only accounts have no password hash to check against.
	if user.PasswordHash == "" {
		return nil, apperror.Forbidden("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Forbidden("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: upsert the user
// keyed by their GitHub ID, then issue a token. First login creates the
// account; later logins refresh email and name from the GitHub profile.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, apperror.Internal(errors.New("github user must not be nil"))
	}

	name := ghUser.Login
	email := strings.ToLower(strings.TrimSpace(ghUser.Email))
	if email == "" {
		// GitHub hides the email when the user opts out; synthesize the
		// noreply form so the column stays unique and non-empty.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}

	user := &model.User{
		Email:    email,
		Name:     name,
		GitHubID: ghUser.ID,
		Role:     s.roleFor(email),
	}
	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID loads the full user record for a validated token subject.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// BootstrapAdmin promotes the account with the configured email to admin.
// Called once at startup; it covers accounts that already existed when the
// admin email was configured. Fresh registrations with that email are
// promoted inline by Register, so a missing account here is fine.
func (s *AuthService) BootstrapAdmin(ctx context.Context) error {
	if s.adminEmail == "" {
		return nil
	}

	user, err := s.users.GetByEmail(ctx, s.adminEmail)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("admin bootstrap: account not registered yet",
				slog.String("email", s.adminEmail))
			return nil
		}
		return fmt.Errorf("looking up admin account: %w", err)
	}

	if user.Role == model.RoleAdmin {
		return nil
	}

	if err := s.users.SetRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return fmt.Errorf("promoting admin account: %w", err)
	}

	s.logger.Info("admin bootstrap: account promoted", slog.Int64("userID", user.ID))
	return nil
}
