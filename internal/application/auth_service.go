package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// credentialsError is returned by Login for both an unknown email and a wrong
// password. Both read "invalid credentials"; the unknown-email case also
// matches domain.ErrNotFound for callers that need to tell them apart.
type credentialsError struct {
	unknownAccount bool
}

func (e credentialsError) Error() string { return "invalid credentials" }

func (e credentialsError) Unwrap() []error {
	if e.unknownAccount {
		return []error{domain.ErrAuthentication, domain.ErrNotFound}
	}
	return []error{domain.ErrAuthentication}
}

// AuthDeps are the collaborators of AuthService. Index and Publisher are optional.
type AuthDeps struct {
	Users     repo.UserRepository
	Hasher    PasswordHasher
	Tokens    TokenIssuer
	Revoked   RevocationRegistry
	Index     UserIndex
	Publisher Publisher
	AppName   string
	Logger    *logrus.Logger
}

// AuthService owns registration, login, logout and request authorization.
type AuthService struct {
	users   repo.UserRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	revoked RevocationRegistry
	index   UserIndex
	notify  notifier
	logger  *logrus.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(d AuthDeps) *AuthService {
	return &AuthService{
		users:   d.Users,
		hasher:  d.Hasher,
		tokens:  d.Tokens,
		revoked: d.Revoked,
		index:   d.Index,
		notify:  notifier{pub: d.Publisher, appName: d.AppName, logger: d.Logger},
		logger:  d.Logger,
	}
}

type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *UserView `json:"user"`
}

// Register creates an account. Email uniqueness is enforced by the store.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	name := strings.TrimSpace(in.UserName)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: user name, email and password are required", domain.ErrValidation)
	}
	if len(in.Password) > 72 {
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrValidation)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{UserName: name, Email: email, Password: digest}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.Index(ctx, u); err != nil && s.logger != nil {
			s.logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
		}
	}
	s.notify.welcome(ctx, u)
	if s.logger != nil {
		s.logger.WithField("user_id", u.ID).Info("user registered")
	}
	return toUserView(u), nil
}

// Login verifies credentials and issues a stateless session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// keep the unknown-email path as slow as a real comparison
			s.hasher.Verify(password, s.dummyDigest())
			return nil, credentialsError{unknownAccount: true}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !s.hasher.Verify(password, u.Password) {
		return nil, credentialsError{}
	}

	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}
	metricLogins.Add(1)
	return &LoginResult{Token: token, ExpiresAt: exp, User: toUserView(u)}, nil
}

// Logout revokes the token the identity was authorized with. Revoking an
// already revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, id entity.Identity) error {
	if id.Token == "" {
		return fmt.Errorf("%w: missing token", domain.ErrAuthentication)
	}
	if err := s.revoked.Revoke(ctx, id.Token, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	metricTokensRevoked.Add(1)
	return nil
}

// Authorize validates an Authorization header value of the form
// "Bearer <token>" and returns the caller identity.
func (s *AuthService) Authorize(ctx context.Context, header string) (entity.Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return entity.Identity{}, fmt.Errorf("%w: no token provided", domain.ErrAuthentication)
	}
	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return entity.Identity{}, fmt.Errorf("%w: token has been invalidated", domain.ErrAuthentication)
	}
	sub, exp, err := s.tokens.Verify(token)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: invalid token", domain.ErrAuthentication)
	}
	return entity.Identity{UserID: sub, Token: token, ExpiresAt: exp}, nil
}

// BearerToken extracts the token from "Bearer <token>".
func BearerToken(header string) (string, bool) {
	const bearer = "Bearer "
	token, ok := strings.CutPrefix(header, bearer)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
