package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/auth-service/auth"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/repositories"
	"go.uber.org/zap"
)

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenSigner issues session tokens
type TokenSigner interface {
	Sign(identity auth.Identity) (string, error)
}

// AuthResult is the outcome of a successful signup or sign-in
type AuthResult struct {
	User  *models.User
	Token string
}

// AuthService orchestrates the credential store, the hasher and the token issuer.
// Requests reaching it are already validated and normalized.
type AuthService struct {
	users  repositories.UserRepository
	hasher PasswordHasher
	tokens TokenSigner
	logger *zap.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users repositories.UserRepository, hasher PasswordHasher, tokens TokenSigner, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// SignUp creates the account and issues a token for it
func (s *AuthService) SignUp(ctx context.Context, req *models.SignupRequest) (*AuthResult, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, Wrap(ErrHashingFailed, err)
	}

	user := models.NewUser(req.Name, req.Email, hash, req.Role)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, Wrap(ErrDuplicateEmail, err).WithDetail("field", "email")
		}
		return nil, Wrap(ErrDatabaseError, err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &AuthResult{User: user, Token: token}, nil
}

// SignIn checks the credentials and issues a token.
// Unknown email and wrong password return the same error.
func (s *AuthService) SignIn(ctx context.Context, req *models.SignInRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Debug("sign-in for unknown email")
			return nil, Wrap(ErrInvalidCredentials, nil)
		}
		return nil, Wrap(ErrDatabaseError, err)
	}

	ok, err := s.hasher.Verify(req.Password, user.Password)
	if err != nil {
		return nil, Wrap(ErrHashingFailed, err)
	}
	if !ok {
		s.logger.Debug("sign-in with wrong password", zap.String("user_id", user.ID.String()))
		return nil, Wrap(ErrInvalidCredentials, nil)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the account behind a verified token
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Wrap(ErrUserNotFound, err)
		}
		return nil, Wrap(ErrDatabaseError, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Sign(auth.Identity{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		return "", Wrap(ErrSigningFailed, err)
	}
	return token, nil
}
