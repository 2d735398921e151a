package shipping

import (
	"context"
	"fmt"
	"time"

	"fashion-shop/internal/cache"
	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
)

// CachedDirectory serves address master data from the cache, falling back
// to the carrier on a miss. Cache failures are logged and bypassed.
type CachedDirectory struct {
	source Directory
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Directory = (*CachedDirectory)(nil)

// NewCachedDirectory wraps source with a read-through cache.
func NewCachedDirectory(source Directory, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *CachedDirectory {
	return &CachedDirectory{
		source: source,
		cache:  c,
		ttl:    ttl,
		logger: logger.With().Str("component", "address_directory").Logger(),
	}
}

func readThrough[T any](ctx context.Context, d *CachedDirectory, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var cached []T
	hit, err := d.cache.Get(ctx, key, &cached)
	if err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("address cache read failed")
	}
	if hit {
		return cached, nil
	}

	fresh, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.cache.Set(ctx, key, fresh, d.ttl); err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("address cache write failed")
	}
	return fresh, nil
}

func (d *CachedDirectory) Provinces(ctx context.Context) ([]Province, error) {
	return readThrough(ctx, d, "address:province", d.source.Provinces)
}

func (d *CachedDirectory) Districts(ctx context.Context, provinceID int) ([]District, error) {
	return readThrough(ctx, d, fmt.Sprintf("address:district:%d", provinceID), func(ctx context.Context) ([]District, error) {
		return d.source.Districts(ctx, provinceID)
	})
}

func (d *CachedDirectory) Wards(ctx context.Context, districtID int) ([]Ward, error) {
	return readThrough(ctx, d, fmt.Sprintf("address:ward:%d", districtID), func(ctx context.Context) ([]Ward, error) {
		return d.source.Wards(ctx, districtID)
	})
}

// ProvinceName resolves a province ID to its display name.
func ProvinceName(ctx context.Context, dir Directory, provinceID int) (string, error) {
	provinces, err := dir.Provinces(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range provinces {
		if p.ID == provinceID {
			return p.Name, nil
		}
	}
	return "", model.NewValidationError("province %d does not exist", provinceID)
}

// DistrictName resolves a district of provinceID to its display name.
func DistrictName(ctx context.Context, dir Directory, provinceID, districtID int) (string, error) {
	districts, err := dir.Districts(ctx, provinceID)
	if err != nil {
		return "", err
	}
	for _, d := range districts {
		if d.ID == districtID {
			return d.Name, nil
		}
	}
	return "", model.NewValidationError("district %d does not exist in province %d", districtID, provinceID)
}

// WardName resolves a ward of districtID to its display name.
func WardName(ctx context.Context, dir Directory, districtID int, wardCode string) (string, error) {
	wards, err := dir.Wards(ctx, districtID)
	if err != nil {
		return "", err
	}
	for _, w := range wards {
		if w.Code == wardCode {
			return w.Name, nil
		}
	}
	return "", model.NewValidationError("ward %s does not exist in district %d", wardCode, districtID)
}
