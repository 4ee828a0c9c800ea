package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

// Geocoder is the lookup surface shared by PlacesService and CachedGeocoder.
type Geocoder interface {
	Autocomplete(ctx context.Context, query string, session SessionToken, bias *types.Point) ([]Prediction, error)
	ResolvePlace(ctx context.Context, placeID string, session SessionToken) (Place, error)
	ReverseGeocode(ctx context.Context, p types.Point) (Place, error)
}

// reverse lookups are cached at ~1m resolution.
const reversePrecision = 5

// CachedGeocoder keeps geocoding answers in Redis. A Redis failure is logged
// and the call goes straight to the wrapped Geocoder.
type CachedGeocoder struct {
	next Geocoder
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl}
}

func (c *CachedGeocoder) Autocomplete(ctx context.Context, query string, session SessionToken, bias *types.Point) ([]Prediction, error) {
	key := "geocode:ac:" + strings.ToLower(strings.TrimSpace(query))
	if bias != nil {
		key += "@" + bias.Key(1)
	}
	var out []Prediction
	if c.get(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.Autocomplete(ctx, query, session, bias)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

func (c *CachedGeocoder) ResolvePlace(ctx context.Context, placeID string, session SessionToken) (Place, error) {
	key := "geocode:place:" + placeID
	var p Place
	if c.get(ctx, key, &p) {
		return p, nil
	}
	p, err := c.next.ResolvePlace(ctx, placeID, session)
	if err != nil {
		return Place{}, err
	}
	c.set(ctx, key, p)
	return p, nil
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, pt types.Point) (Place, error) {
	key := "geocode:rev:" + pt.Key(reversePrecision)
	var p Place
	if c.get(ctx, key, &p) {
		p.Point = pt
		return p, nil
	}
	p, err := c.next.ReverseGeocode(ctx, pt)
	if err != nil {
		return Place{}, err
	}
	c.set(ctx, key, p)
	return p, nil
}

func (c *CachedGeocoder) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logger.Warn("geocode cache: get %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("geocode cache: corrupt entry %s: %v", key, err)
		return false
	}
	return true
}

func (c *CachedGeocoder) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("geocode cache: encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("geocode cache: set %s: %v", key, err)
	}
}

// Flush removes every cached geocoding answer.
func (c *CachedGeocoder) Flush(ctx context.Context) (int, error) {
	var n int
	iter := c.rdb.Scan(ctx, 0, "geocode:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return n, fmt.Errorf("flush geocode cache: %w", err)
		}
		n++
	}
	return n, iter.Err()
}
