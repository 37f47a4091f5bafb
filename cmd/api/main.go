package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"FlatAPI/internal/api"
	"FlatAPI/internal/config"
	"FlatAPI/internal/product"
	"FlatAPI/internal/user"
	"FlatAPI/pkg/kit"
)

func main() {
	service := "api"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.APIKey == config.DefaultAPIKey {
		log.Warn("API_KEY not set, using the built-in development key")
	}

	users := user.NewFileStore(filepath.Join(cfg.DataDir, "users.json"))
	products := product.NewFileStore(filepath.Join(cfg.DataDir, "products.json"))

	limiter := kit.NewFixedWindowLimiter(windowStore(cfg, log), kit.RateLimitConfig{
		Limit:      cfg.RateLimit,
		Window:     cfg.RateWindow,
		Message:    api.MsgTooManyRequests,
		TrustProxy: cfg.TrustProxy,
	}, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := api.NewHandler(api.Deps{
		Users:    users,
		Products: products,
		APIKey:   cfg.APIKey,
		Limiter:  limiter,
	}, api.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func windowStore(cfg config.Config, log *zap.Logger) kit.WindowStore {
	if cfg.RedisAddr == "" {
		return kit.NewMemoryWindowStore()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, rate limiting per instance", zap.Error(err), zap.String("addr", cfg.RedisAddr))
		_ = rdb.Close()
		return kit.NewMemoryWindowStore()
	}

	log.Info("rate limiter backed by redis", zap.String("addr", cfg.RedisAddr))
	return kit.NewRedisWindowStore(rdb, "ratelimit")
}
