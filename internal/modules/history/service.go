package history

import (
	"context"
	"strings"

	"wayfarer/internal/maps"
	"wayfarer/internal/types"
)

type Repository interface {
	Insert(ctx context.Context, uid types.ID, it *Item) error
	ListRecent(ctx context.Context, uid types.ID, limit int) ([]Item, error)
	Clear(ctx context.Context, uid types.ID) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a confirmed search selection.
func (s *Service) Record(ctx context.Context, uid types.ID, p maps.Place) (*Item, error) {
	if uid == "" || !p.Point.Valid() {
		return nil, ErrBadRequest
	}
	it := &Item{
		PlaceID: p.PlaceID,
		Name:    strings.TrimSpace(p.Name),
		Address: strings.TrimSpace(p.Address),
		Point:   p.Point,
	}
	if it.Name == "" {
		it.Name = it.Address
	}
	if err := s.repo.Insert(ctx, uid, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Recent lists the newest selections first.
func (s *Service) Recent(ctx context.Context, uid types.ID, limit int) ([]Item, error) {
	if uid == "" {
		return nil, ErrBadRequest
	}
	return s.repo.ListRecent(ctx, uid, ClampLimit(limit))
}

func (s *Service) Clear(ctx context.Context, uid types.ID) (int64, error) {
	if uid == "" {
		return 0, ErrBadRequest
	}
	return s.repo.Clear(ctx, uid)
}
