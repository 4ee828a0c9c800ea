package history

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wayfarer/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, uid types.ID, it *Item) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO search_history (uid, place_id, name, address, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, string(uid), it.PlaceID, it.Name, it.Address, it.Point.Lat, it.Point.Lng).Scan(&it.ID, &it.CreatedAt)
}

func (s *Store) ListRecent(ctx context.Context, uid types.ID, limit int) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, place_id, name, address, lat, lng, created_at
		FROM search_history
		WHERE uid = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, string(uid), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.PlaceID, &it.Name, &it.Address, &it.Point.Lat, &it.Point.Lng, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) Clear(ctx context.Context, uid types.ID) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM search_history WHERE uid = $1`, string(uid))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
