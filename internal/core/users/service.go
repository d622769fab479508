package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/archetype/archetype/config"
	"github.com/archetype/archetype/internal/core/auth"
	"github.com/archetype/archetype/internal/core/criteria"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidQuery       = errors.New("invalid query")
)

// Fields callers may filter and order the user list on. Anything else,
// PasswordHash in particular, is dropped before it reaches the store.
var (
	FilterableFields = []string{"id", "email", "fullName", "status", "createdAt"}
	OrderableFields  = []string{"email", "fullName", "createdAt"}
)

const defaultOrderField = "createdAt"

type Service struct {
	repo   Repository
	hasher auth.Hasher
	tokens *auth.TokenService
	limits config.QueryConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, hasher auth.Hasher, tokens *auth.TokenService, limits config.QueryConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an active user and signs them in.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email, err := NewEmailAddress(req.Email)
	if err != nil {
		return nil, err
	}
	fullName, err := NewFullName(req.FullName)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	password, err := NewPasswordHash(req.Password, s.hasher)
	if err != nil {
		return nil, err
	}

	user := NewUser(NewUserID(), email, fullName, password, s.now())
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Stringer("user_id", user.ID))
	return s.authenticate(user)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email, err := NewEmailAddress(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() || !user.PasswordHash.Verify(req.Password, s.hasher) {
		return nil, ErrInvalidCredentials
	}

	return s.authenticate(user)
}

func (s *Service) authenticate(user *User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(auth.Principal{
		UserID:   user.ID.String(),
		Email:    user.Email.Value(),
		FullName: user.FullName.Value(),
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		User:        Summarize(user),
	}, nil
}

func (s *Service) Get(ctx context.Context, rawID string) (*UserSummary, error) {
	id, err := ParseUserID(rawID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	summary := Summarize(user)
	return &summary, nil
}

// List returns the users matching raw. Filters on fields outside
// FilterableFields are ignored; ordering defaults to newest first.
func (s *Service) List(ctx context.Context, raw criteria.RawQuery) (*ListResult, error) {
	c, err := s.criteria(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	found, err := s.repo.Matching(ctx, c)
	if err != nil {
		if criteria.IsInvalid(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		return nil, err
	}

	limit, _ := c.Limit()
	offset, _ := c.Offset()
	result := &ListResult{
		Users:  make([]UserSummary, 0, len(found)),
		Limit:  limit,
		Offset: offset,
	}
	for _, u := range found {
		result.Users = append(result.Users, Summarize(u))
	}
	result.Total = len(result.Users)
	return result, nil
}

func (s *Service) criteria(raw criteria.RawQuery) (*criteria.Criteria, error) {
	filters, err := criteria.FiltersFromValues(criteria.Only(raw.Filters, FilterableFields...))
	if err != nil {
		return nil, err
	}

	order, err := listOrder(raw.OrderBy, raw.OrderType)
	if err != nil {
		return nil, err
	}

	limit := s.limits.DefaultLimit
	if raw.Limit != nil {
		limit = *raw.Limit
	}
	if s.limits.MaxLimit > 0 && limit > s.limits.MaxLimit {
		limit = s.limits.MaxLimit
	}
	var offset uint32
	if raw.Offset != nil {
		offset = *raw.Offset
	}

	opts := []criteria.Option{criteria.WithOffset(offset)}
	if limit > 0 {
		opts = append(opts, criteria.WithLimit(limit))
	}
	return criteria.New(filters, &order, opts...), nil
}

func listOrder(orderBy, orderType string) (criteria.Order, error) {
	if !orderable(orderBy) {
		return criteria.NewOrder(criteria.NewOrderBy(defaultOrderField), criteria.OrderDesc), nil
	}
	if strings.TrimSpace(orderType) == "" {
		return criteria.NewOrder(criteria.NewOrderBy(orderBy), criteria.OrderAsc), nil
	}
	return criteria.OrderFromValues(orderBy, orderType)
}

func orderable(field string) bool {
	for _, f := range OrderableFields {
		if strings.EqualFold(f, strings.TrimSpace(field)) {
			return true
		}
	}
	return false
}
