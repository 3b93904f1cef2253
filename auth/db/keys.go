package db

import "fmt"

// RedisKeyBuilder builds the Redis keys used by the service
type RedisKeyBuilder struct {
	prefix string
}

// NewRedisKeyBuilder creates a key builder; every key starts with prefix
func NewRedisKeyBuilder(prefix string) *RedisKeyBuilder {
	if prefix == "" {
		prefix = "personnel"
	}
	return &RedisKeyBuilder{prefix: prefix}
}

// FieldDefinitionsKey caches the definition list
func (b *RedisKeyBuilder) FieldDefinitionsKey(includeInactive bool) string {
	if includeInactive {
		return fmt.Sprintf("%s:cache:field_definitions:all", b.prefix)
	}
	return fmt.Sprintf("%s:cache:field_definitions:active", b.prefix)
}

// FormKey caches the singleton form document
func (b *RedisKeyBuilder) FormKey() string {
	return fmt.Sprintf("%s:cache:form:current", b.prefix)
}

// RevokedTokenKey marks a revoked JWT id
func (b *RedisKeyBuilder) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("%s:revoked:token:%s", b.prefix, jti)
}
