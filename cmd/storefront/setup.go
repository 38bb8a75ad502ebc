package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/internal/config"
	"github.com/terpenos/storefront/pkg/i18n"
	"github.com/terpenos/storefront/pkg/metrics"
)

// loadConfig reads the config at path, which may be a file or a directory.
// A directory without a config file yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return config.LoadFile(path)
	}
	return config.LoadOrDefault(path)
}

// newLogger builds the process logger from the logging section.
func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// translations returns the built-in table overlaid with the configured
// translations file, if any.
func translations(cfg *config.Config) (i18n.Table, error) {
	table := i18n.DefaultTable()
	if cfg.I18n.Translations == "" {
		return table, nil
	}
	extra, err := i18n.LoadTable(cfg.ResolvePath(cfg.I18n.Translations))
	if err != nil {
		return nil, err
	}
	return table.Overlay(extra), nil
}

// appOptions converts the config into App options shared by every visitor.
func appOptions(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) ([]storefront.Option, error) {
	table, err := translations(cfg)
	if err != nil {
		return nil, err
	}
	opts := []storefront.Option{
		storefront.WithLogger(logger),
		storefront.WithTranslations(table),
		storefront.WithStorageKeys(cfg.Cart.StorageKey, cfg.I18n.StorageKey),
		storefront.WithVisitorLimits(cfg.Visitors.MaxLoaded, cfg.Visitors.Idle()),
	}
	if m != nil {
		opts = append(opts, storefront.WithMetrics(m))
	}
	return opts, nil
}
