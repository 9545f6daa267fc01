// Package auth signs customers in and out and resolves bearer tokens to
// sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	entity "cafe.GO/model/entity"
	customerRepo "cafe.GO/model/repository/customer"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrNoSession          = errors.New("not signed in")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

// Session is an authenticated customer.
type Session struct {
	Token      string    `json:"token"`
	CustomerID uint      `json:"customer_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type Service struct {
	repo   *customerRepo.CustomerRepository
	ttl    time.Duration
	cost   int
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes Service construction.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, ttl time.Duration, logger *zap.Logger, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:   customerRepo.NewCustomerRepository(db),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email = normalizeEmail(email)
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	c := &entity.Customer{Email: email, FullName: strings.TrimSpace(name), PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}
	s.logger.Info("customer signed up", zap.Uint("customer_id", c.ID))
	return s.issue(ctx, c)
}

// SignIn verifies credentials and issues a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	c, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, c)
}

func (s *Service) issue(ctx context.Context, c *entity.Customer) (*Session, error) {
	row := &entity.CustomerSession{
		Token:      uuid.NewString(),
		CustomerID: c.ID,
		ExpiresAt:  s.now().Add(s.ttl),
	}
	if err := s.repo.CreateSession(ctx, row); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Session{
		Token:      row.Token,
		CustomerID: c.ID,
		Email:      c.Email,
		Name:       c.FullName,
		ExpiresAt:  row.ExpiresAt,
	}, nil
}

// SignOut revokes token. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// Current resolves token to a live session.
func (s *Service) Current(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	row, err := s.repo.FindActiveSession(ctx, token, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Session{
		Token:      row.Token,
		CustomerID: row.CustomerID,
		Email:      row.Customer.Email,
		Name:       row.Customer.FullName,
		ExpiresAt:  row.ExpiresAt,
	}, nil
}

// CleanupExpired deletes sessions past their expiry.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now())
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session attached by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
