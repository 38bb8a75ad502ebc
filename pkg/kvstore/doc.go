// Package kvstore provides the persistent key-value store behind the
// storefront's cart and language stores.
//
// Store is deliberately shaped like browser local storage: string keys,
// string values, Get/Set/Remove. Backends:
//
//   - Noop: nothing is persisted (the default when no store is injected)
//   - MemoryStore: in-process map with an optional byte quota
//   - FileStore: one JSON file on disk
//   - RedisStore: github.com/redis/go-redis/v9
//   - SQLStore: database/sql (MySQL or SQLite dialect)
//   - S3Store: aws-sdk-go-v2 S3, one object per key
//
// Prefixed namespaces any backend (one namespace per visitor) and
// Instrument adds OpenTelemetry spans and a failure hook.
//
//	backend := kvstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}))
//	store := kvstore.Instrument(kvstore.Prefixed(backend, "visitor:42:"), "redis")
package kvstore
