package main

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/terpenos/storefront/internal/config"
	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/kvstore"
)

// backend is an opened key-value store and whatever must be closed with it.
type backend struct {
	kvstore.Store
	closers []io.Closer
}

func (b *backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openBackend opens the configured store and wraps it with tracing and the
// failure hook.
func openBackend(ctx context.Context, cfg *config.Config, hook kvstore.FailureHook) (*backend, error) {
	b := &backend{}
	var store kvstore.Store

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = kvstore.NewMemoryStore()

	case config.BackendFile:
		fs, err := kvstore.OpenFile(cfg.ResolvePath(cfg.Storage.File.Path))
		if err != nil {
			return nil, errors.New("E121").Wrap(err)
		}
		store = fs

	case config.BackendRedis:
		rc := cfg.Storage.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, errors.New("E121").
				WithDetail("redis at " + rc.Addr + " did not answer").
				Wrap(err)
		}
		b.closers = append(b.closers, client)
		var opts []kvstore.RedisStoreOption
		if rc.Prefix != "" {
			opts = append(opts, kvstore.WithRedisPrefix(rc.Prefix))
		}
		store = kvstore.NewRedisStore(client, opts...)

	case config.BackendSQL:
		db, dialect, err := openSQL(ctx, cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db)
		sqlStore := kvstore.NewSQLStore(db,
			kvstore.WithSQLTableName(cfg.Storage.SQL.Table),
			kvstore.WithSQLDialect(dialect),
		)
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, errors.New("E121").Wrap(err)
		}
		store = sqlStore

	case config.BackendS3:
		sc := cfg.Storage.S3
		client := kvstore.NewS3Client(kvstore.S3Options{
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			PathStyle:       sc.PathStyle,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		store = kvstore.NewS3Store(client, sc.Bucket, sc.Prefix)

	default:
		return nil, errors.New("E120").
			WithDetail(`backend "` + cfg.Storage.Backend + `" is not supported`)
	}

	b.Store = kvstore.Instrument(store, cfg.Storage.Backend, kvstore.WithFailureHook(hook))
	return b, nil
}

func openSQL(ctx context.Context, sc config.SQLStorageConfig) (*sql.DB, kvstore.SQLDialect, error) {
	dialect, err := kvstore.DialectForDriver(sc.Driver)
	if err != nil {
		return nil, 0, errors.New("E102").Wrap(err)
	}

	driverName := "sqlite"
	if dialect == kvstore.DialectMySQL {
		driverName = "mysql"
		if _, err := mysql.ParseDSN(sc.DSN); err != nil {
			return nil, 0, errors.New("E102").
				WithDetail("storage.sql.dsn is not a valid MySQL DSN").
				Wrap(err)
		}
	}

	db, err := sql.Open(driverName, sc.DSN)
	if err != nil {
		return nil, 0, errors.New("E121").Wrap(err)
	}
	if dialect == kvstore.DialectSQLite {
		// SQLite has a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, 0, errors.New("E121").Wrap(err)
	}
	return db, dialect, nil
}
