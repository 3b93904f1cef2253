package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/ericfitz/personnel/internal/telemetry"
)

// DefaultSchemaCacheTTL bounds staleness when another instance writes
const DefaultSchemaCacheTTL = 5 * time.Minute

// SchemaCache keeps the definition listings and the form document in Redis.
// Every write through the cached stores invalidates the affected keys both
// before and after the database write.
// Redis failures are logged and fall through to the database.
type SchemaCache struct {
	redis   *db.RedisDB
	keys    *db.RedisKeyBuilder
	ttl     time.Duration
	metrics *telemetry.DomainMetrics
}

// NewSchemaCache creates a cache; a non-positive ttl selects the default
func NewSchemaCache(redis *db.RedisDB, keys *db.RedisKeyBuilder, ttl time.Duration, metrics *telemetry.DomainMetrics) *SchemaCache {
	if ttl <= 0 {
		ttl = DefaultSchemaCacheTTL
	}
	return &SchemaCache{redis: redis, keys: keys, ttl: ttl, metrics: metrics}
}

func (sc *SchemaCache) get(ctx context.Context, key string, dst any) bool {
	data, ok, err := sc.redis.Get(ctx, key)
	if err != nil {
		slogging.Get().Warn("Schema cache read failed for %s: %v", key, err)
		return false
	}
	if ok {
		if err := json.Unmarshal([]byte(data), dst); err != nil {
			slogging.Get().Warn("Discarding undecodable cache entry %s: %v", key, err)
			ok = false
		}
	}
	sc.metrics.CacheLookup(ctx, ok)
	return ok
}

func (sc *SchemaCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slogging.Get().Warn("Failed to encode cache entry %s: %v", key, err)
		return
	}
	if err := sc.redis.Set(ctx, key, data, sc.ttl); err != nil {
		slogging.Get().Warn("Schema cache write failed for %s: %v", key, err)
	}
}

func (sc *SchemaCache) invalidate(ctx context.Context, keys ...string) {
	if err := sc.redis.Del(context.WithoutCancel(ctx), keys...); err != nil {
		slogging.Get().Warn("Schema cache invalidation failed: %v", err)
	}
}

func (sc *SchemaCache) invalidateDefinitions(ctx context.Context) {
	sc.invalidate(ctx, sc.keys.FieldDefinitionsKey(true), sc.keys.FieldDefinitionsKey(false))
}

// CachedFieldDefinitionStore caches List results of another store
type CachedFieldDefinitionStore struct {
	FieldDefinitionStore
	cache *SchemaCache
}

// NewCachedFieldDefinitionStore wraps store with cache
func NewCachedFieldDefinitionStore(store FieldDefinitionStore, cache *SchemaCache) *CachedFieldDefinitionStore {
	return &CachedFieldDefinitionStore{FieldDefinitionStore: store, cache: cache}
}

func (s *CachedFieldDefinitionStore) List(ctx context.Context, includeInactive bool) ([]fieldschema.Definition, error) {
	key := s.cache.keys.FieldDefinitionsKey(includeInactive)
	var defs []fieldschema.Definition
	if s.cache.get(ctx, key, &defs) {
		return defs, nil
	}
	defs, err := s.FieldDefinitionStore.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, defs)
	return defs, nil
}

func (s *CachedFieldDefinitionStore) Create(ctx context.Context, def *fieldschema.Definition) error {
	s.cache.invalidateDefinitions(ctx)
	defer s.cache.invalidateDefinitions(ctx)
	return s.FieldDefinitionStore.Create(ctx, def)
}

func (s *CachedFieldDefinitionStore) Update(ctx context.Context, name string, def *fieldschema.Definition) error {
	s.cache.invalidateDefinitions(ctx)
	defer s.cache.invalidateDefinitions(ctx)
	return s.FieldDefinitionStore.Update(ctx, name, def)
}

func (s *CachedFieldDefinitionStore) Deactivate(ctx context.Context, name string) (*fieldschema.Definition, error) {
	s.cache.invalidateDefinitions(ctx)
	defer s.cache.invalidateDefinitions(ctx)
	return s.FieldDefinitionStore.Deactivate(ctx, name)
}

func (s *CachedFieldDefinitionStore) Reactivate(ctx context.Context, name string) (*fieldschema.Definition, error) {
	s.cache.invalidateDefinitions(ctx)
	defer s.cache.invalidateDefinitions(ctx)
	return s.FieldDefinitionStore.Reactivate(ctx, name)
}

func (s *CachedFieldDefinitionStore) Delete(ctx context.Context, name string) error {
	s.cache.invalidateDefinitions(ctx)
	defer s.cache.invalidateDefinitions(ctx)
	return s.FieldDefinitionStore.Delete(ctx, name)
}

// CachedFormStore caches the form document of another store
type CachedFormStore struct {
	FormStore
	cache *SchemaCache
}

// NewCachedFormStore wraps store with cache
func NewCachedFormStore(store FormStore, cache *SchemaCache) *CachedFormStore {
	return &CachedFormStore{FormStore: store, cache: cache}
}

func (s *CachedFormStore) Get(ctx context.Context) (*FormDocument, error) {
	key := s.cache.keys.FormKey()
	var doc FormDocument
	if s.cache.get(ctx, key, &doc) {
		return &doc, nil
	}
	stored, err := s.FormStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, stored)
	return stored, nil
}

func (s *CachedFormStore) GetOrCreate(ctx context.Context, actor string) (*FormDocument, error) {
	if doc, err := s.Get(ctx); err == nil {
		return doc, nil
	}
	doc, err := s.FormStore.GetOrCreate(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("get or create form: %w", err)
	}
	s.cache.set(ctx, s.cache.keys.FormKey(), doc)
	return doc, nil
}

func (s *CachedFormStore) Save(ctx context.Context, doc *FormDocument) error {
	s.cache.invalidate(ctx, s.cache.keys.FormKey())
	defer s.cache.invalidate(ctx, s.cache.keys.FormKey())
	return s.FormStore.Save(ctx, doc)
}

func (s *CachedFormStore) Delete(ctx context.Context) error {
	s.cache.invalidate(ctx, s.cache.keys.FormKey())
	defer s.cache.invalidate(ctx, s.cache.keys.FormKey())
	return s.FormStore.Delete(ctx)
}
