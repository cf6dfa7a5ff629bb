package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "catalog:raw:"

// Repository implements outbound.CatalogRepository. The first successful
// load is kept for the life of the process; concurrent first loads share a
// single fetch.
type Repository struct {
	source   outbound.CatalogSource
	schema   Schema
	cache    outbound.CacheRepository
	cacheTTL time.Duration
	tracer   trace.Tracer
	logger   *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	// loaded is nil until the first successful Load
	loaded *food.Catalog
}

var _ outbound.CatalogRepository = (*Repository)(nil)

// NewRepository creates a catalog repository. cache may be nil.
func NewRepository(
	source outbound.CatalogSource,
	schema Schema,
	cache outbound.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Repository {
	return &Repository{
		source:   source,
		schema:   schema,
		cache:    cache,
		cacheTTL: cacheTTL,
		tracer:   otel.Tracer("github.com/nutridash/dashboard/catalog"),
		logger:   logger.Named("catalog-repository"),
	}
}

// Load returns the parsed catalog, fetching it on first use
func (r *Repository) Load(ctx context.Context) (*food.Catalog, error) {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded != nil {
		return loaded, nil
	}

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(r.source.Location(), func() (interface{}, error) {
		r.mu.RLock()
		loaded := r.loaded
		r.mu.RUnlock()
		if loaded != nil {
			return loaded, nil
		}

		c, err := r.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.loaded = c
		r.mu.Unlock()
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.logger.Debug("Catalog load shared with concurrent caller")
		}
		return res.Val.(*food.Catalog), nil
	}
}

// Reload drops the in-memory and cached copies and fetches again
func (r *Repository) Reload(ctx context.Context) (*food.Catalog, error) {
	r.mu.Lock()
	r.loaded = nil
	r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.Delete(ctx, r.cacheKey()); err != nil {
			r.logger.Warn("Failed to evict cached catalog", zap.Error(err))
		}
	}
	return r.Load(ctx)
}

func (r *Repository) fetch(ctx context.Context) (*food.Catalog, error) {
	ctx, span := r.tracer.Start(ctx, "catalog.load",
		trace.WithAttributes(
			attribute.String("catalog.source", r.source.Location()),
			attribute.String("catalog.schema", r.schema.Version),
		),
	)
	defer span.End()

	start := time.Now()
	raw, fromCache, err := r.raw(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("Catalog fetch failed",
			zap.String("source", r.source.Location()),
			zap.Error(err),
		)
		return nil, err
	}

	c, err := Parse(bytes.NewReader(raw), r.schema)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if fromCache && r.cache != nil {
			_ = r.cache.Delete(ctx, r.cacheKey())
		}
		if errors.Is(err, food.ErrColumnResolution) {
			r.logger.Error("Catalog columns could not be resolved",
				zap.String("source", r.source.Location()),
				zap.String("schema", r.schema.Version),
				zap.Error(err),
			)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("catalog.records", c.Len()))
	r.logger.Info("Catalog loaded",
		zap.String("source", r.source.Location()),
		zap.Int("records", c.Len()),
		zap.Bool("from_cache", fromCache),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

// raw returns the CSV bytes, preferring the cache
func (r *Repository) raw(ctx context.Context) ([]byte, bool, error) {
	if r.cache != nil {
		data, err := r.cache.Get(ctx, r.cacheKey())
		switch {
		case err == nil:
			return data, true, nil
		case !errors.Is(err, outbound.ErrCacheMiss):
			r.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
	}

	rc, err := r.source.Open(ctx)
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("read catalog: %w", err)
	}

	if r.cache != nil && r.cacheTTL > 0 {
		if err := r.cache.Set(ctx, r.cacheKey(), data, r.cacheTTL); err != nil {
			r.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return data, false, nil
}

func (r *Repository) cacheKey() string {
	return cacheKeyPrefix + r.source.Location()
}
