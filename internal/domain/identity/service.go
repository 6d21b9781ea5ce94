// internal/domain/identity/service.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/pkg/auth"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/validation"
	"github.com/sirupsen/logrus"
)

// ProfileCreator creates the remote profile document of a new user
type ProfileCreator interface {
	CreateProfile(ctx context.Context, userID, email string) error
}

// Service handles registration, sign-in and sign-out
type Service struct {
	users     UserStore
	profiles  ProfileCreator
	revoker   TokenRevoker
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	watcher   *Watcher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new identity service. profiles may be nil.
func NewService(users UserStore, profiles ProfileCreator, revoker TokenRevoker, jwtManager *auth.JWTManager, passwords *auth.PasswordManager, watcher *Watcher, logger logrus.FieldLogger) *Service {
	return &Service{
		users:     users,
		profiles:  profiles,
		revoker:   revoker,
		jwt:       jwtManager,
		passwords: passwords,
		watcher:   watcher,
		logger:    logger.WithField("component", "identity"),
		now:       time.Now,
	}
}

// Watcher returns the identity subscription hub
func (s *Service) Watcher() *Watcher {
	return s.watcher
}

// Register creates an account and its remote profile, then signs it in
func (s *Service) Register(ctx context.Context, sessionID string, req *RegisterRequest) (*Session, error) {
	email := NormalizeEmail(req.Email)
	if !validation.IsEmail(email) {
		return nil, ErrInvalidEmail
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, newError(CodeWeakPassword, err)
		}
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrNoUser) {
		return nil, err
	}

	user := &User{Email: email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.ensureProfile(ctx, user)

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return s.startSession(ctx, sessionID, user)
}

// SignIn checks credentials and reports each failure with its own error
func (s *Service) SignIn(ctx context.Context, sessionID string, req *LoginRequest) (*Session, error) {
	email := NormalizeEmail(req.Email)
	if !validation.IsEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.passwords.VerifyPassword(req.Password, user.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrWrongPassword
		}
		return nil, newError(CodeInvalidCredential, err)
	}

	if err := s.users.TouchLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	s.ensureProfile(ctx, user)

	return s.startSession(ctx, sessionID, user)
}

// SignOut revokes the access token and clears the session's identity
func (s *Service) SignOut(ctx context.Context, sessionID, accessToken string) error {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err == nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
	}

	s.watcher.Resolve(sessionID, nil)
	return nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked.
func (s *Service) Refresh(ctx context.Context, sessionID, refreshToken string) (*Session, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, newError(CodeSessionExpired, err)
	}
	if revoked, err := s.revoker.IsRevoked(ctx, claims.ID); err != nil {
		return nil, err
	} else if revoked {
		return nil, ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	if err := s.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.WithError(err).Warn("failed to revoke rotated refresh token")
	}

	return s.startSession(ctx, sessionID, user)
}

// Authenticate resolves an access token to an identity
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, newError(CodeSessionExpired, err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrSessionExpired
	}

	return &Identity{UID: claims.UserID, Email: claims.Email}, nil
}

// ensureProfile creates the remote profile if it is missing. It is repeated
// on sign-in so a failed write at registration heals itself.
func (s *Service) ensureProfile(ctx context.Context, user *User) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.CreateProfile(ctx, user.ID, user.Email); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to create user profile")
	}
}

func (s *Service) startSession(ctx context.Context, sessionID string, user *User) (*Session, error) {
	pair, err := s.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	ident := user.Identity()
	s.watcher.Resolve(sessionID, ident)

	return &Session{
		User:         ident,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
