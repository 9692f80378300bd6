package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

type registerBackend interface {
	Register(ctx context.Context, req models.RegisterRequest) error
}

type sessionGate interface {
	Evaluate(ctx context.Context) (session.State, error)
	SignIn(ctx context.Context, token string) (models.Identity, error)
	SignOut(ctx context.Context) error
}

// AuthService provides registration and the local sign-in/sign-out of a
// token issued by the backend.
type AuthService struct {
	backend   registerBackend
	session   sessionGate
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(backend registerBackend, gate sessionGate, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{backend: backend, session: gate, validator: validate, logger: logger}
}

// Register validates the sign-up form and creates the account.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid registration payload")
	}
	if err := s.backend.Register(ctx, req); err != nil {
		return err
	}
	s.logger.Info("account registered", zap.String("username", req.Username))
	return nil
}

// SignIn keeps token as the session credential.
func (s *AuthService) SignIn(ctx context.Context, token string) (models.Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return models.Identity{}, appErrors.ErrMissingCredential
	}
	identity, err := s.session.SignIn(ctx, token)
	if err != nil {
		return models.Identity{}, err
	}
	s.logger.Info("signed in", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
	return identity, nil
}

// SignOut forgets the credential and the cached user data.
func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.session.SignOut(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign out")
	}
	return nil
}

// Me evaluates the stored credential.
func (s *AuthService) Me(ctx context.Context) (session.State, error) {
	return s.session.Evaluate(ctx)
}
