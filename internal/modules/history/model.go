// README: Search history model (places a user picked from the map search box).
package history

import (
	"errors"
	"time"

	"wayfarer/internal/types"
)

var ErrBadRequest = errors.New("bad request")

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

type Item struct {
	ID        int64       `json:"id"`
	PlaceID   string      `json:"placeId,omitempty"`
	Name      string      `json:"name"`
	Address   string      `json:"address,omitempty"`
	Point     types.Point `json:"coordinates"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ClampLimit keeps a requested page size inside [1, MaxLimit]; zero means DefaultLimit.
func ClampLimit(n int) int {
	switch {
	case n == 0:
		return DefaultLimit
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}
