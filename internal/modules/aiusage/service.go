package aiusage

import (
	"context"
	"errors"
	"time"

	"wayfarer/internal/types"
)

// Repository is implemented by *Store.
type Repository interface {
	UseToken(ctx context.Context, uid types.ID, month string) error
	EnsureUser(ctx context.Context, uid types.ID, month string) error
	Remaining(ctx context.Context, uid types.ID, month string) (int, error)
}

// Service orchestrates AI token-usage logic.
type Service struct {
	store Repository
	now   func() time.Time
}

// NewService creates a Service backed by the given Store.
func NewService(store Repository) *Service {
	return &Service{store: store, now: time.Now}
}

// UseToken deducts one token from the user's monthly allowance.
// If the user row does not exist yet it is initialised and the token is immediately consumed.
// Returns ErrInsufficientTokens when the quota for the current month is exhausted.
func (s *Service) UseToken(ctx context.Context, uid types.ID) error {
	month := monthOf(s.now())
	err := s.store.UseToken(ctx, uid, month)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid, month); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid, month)
}

func (s *Service) Remaining(ctx context.Context, uid types.ID) (int, error) {
	return s.store.Remaining(ctx, uid, monthOf(s.now()))
}
