package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskgrid.org/internal/org"
)

const defaultTokenTTL = 15 * time.Minute

// Service provides registration, login and bearer-token authentication.
type Service struct {
	users    UserStore
	orgs     org.Store
	tokenTTL time.Duration
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL overrides the access token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the auth service.
func NewService(users UserStore, orgs org.Store, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if orgs == nil {
		return nil, errors.New("organization store is required")
	}
	s := &Service{
		users:    users,
		orgs:     orgs,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Session is an issued access token plus the authenticated user.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Register creates a user inside the named organization, creating the
// organization on first use. The first account of an organization becomes its
// owner; later accounts start as viewers.
func (s *Service) Register(ctx context.Context, email, password, orgName string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return Session{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	orgName = strings.TrimSpace(orgName)
	if orgName == "" {
		return Session{}, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return Session{}, fmt.Errorf("%w: user with this email already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	tenant, err := s.orgs.FindByName(ctx, orgName)
	if errors.Is(err, org.ErrNotFound) {
		tenant = &org.Organization{Name: orgName}
		if err := s.orgs.Create(ctx, tenant); err != nil {
			return Session{}, err
		}
	} else if err != nil {
		return Session{}, err
	}

	existing, err := s.users.CountByOrganization(ctx, tenant.ID)
	if err != nil {
		return Session{}, err
	}
	role := RoleViewer
	if existing == 0 {
		role = RoleOwner
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	user := &User{
		OrganizationID: tenant.ID,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.session(*user)
}

// Login verifies credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(*user)
}

// Authenticate validates a bearer token and resolves the current actor. The
// user record is re-read so revoked accounts and role changes take effect
// without waiting for token expiry.
func (s *Service) Authenticate(ctx context.Context, token string) (Actor, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return Actor{}, ErrInvalidToken
	}
	user, err := s.users.Find(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Actor{}, ErrInvalidToken
		}
		return Actor{}, err
	}
	return user.Actor(), nil
}

func (s *Service) session(user User) (Session, error) {
	token, err := GenerateToken(user, s.tokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: s.now().UTC().Add(s.tokenTTL),
		User:      user,
	}, nil
}
