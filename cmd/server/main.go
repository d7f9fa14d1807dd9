package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/aggregator"
	"github.com/dharmasatrya/tripplanner/internal/cache"
	"github.com/dharmasatrya/tripplanner/internal/config"
	"github.com/dharmasatrya/tripplanner/internal/handler"
	"github.com/dharmasatrya/tripplanner/internal/pkg/logger"
	"github.com/dharmasatrya/tripplanner/internal/providers"
	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
	"github.com/dharmasatrya/tripplanner/internal/recommend"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"), ".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	flights, hotels := initializeProviders(cfg, zl)
	zl.Info("providers initialized",
		zap.String("flights", flights.Name()),
		zap.String("hotels", hotels.Name()))

	generator := recommend.NewOpenAIGenerator(recommend.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, zl.Named("llm"))

	rateLimiter := ratelimit.NewProviderLimiter(limit(cfg.RateLimit.Default), map[string]ratelimit.Limit{
		flights.Name():           limit(cfg.RateLimit.Serp),
		"serpapi_hotels":         limit(cfg.RateLimit.Serp),
		"booking":                limit(cfg.RateLimit.Apify),
		aggregator.LLMLimiterKey: limit(cfg.RateLimit.LLM),
	})

	resultCache := initializeCache(cfg.Cache, zl)
	defer func() { _ = resultCache.Close() }()

	agg := aggregator.NewAggregator(flights, hotels, recommend.NewClient(generator, zl), aggregator.Config{
		MaxRetries:    cfg.Provider.MaxRetries,
		RetryDelays:   cfg.Provider.RetryDelays,
		MaxConcurrent: cfg.Provider.MaxConcurrent,
		Currency:      cfg.Provider.Currency,
		RateLimiter:   rateLimiter,
		Cache:         resultCache,
	}, zl)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(logger.EchoLogger(zl, "/health"))

	handler.NewSearchHandler(agg, zl).Register(e)

	go func() {
		zl.Info("starting trip planner server", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
}

func initializeProviders(cfg *config.Config, zl *zap.Logger) (providers.FlightProvider, providers.HotelProvider) {
	serp := providers.SerpConfig{
		APIKey:   cfg.Serp.APIKey,
		BaseURL:  cfg.Serp.BaseURL,
		Currency: cfg.Provider.Currency,
		Timeout:  cfg.Provider.Timeout,
	}
	flights := providers.NewSerpFlightProvider(serp, cfg.Provider.MaxConcurrent, zl)

	if cfg.Provider.HotelProvider == config.HotelProviderGoogle {
		return flights, providers.NewSerpHotelProvider(serp, zl)
	}
	return flights, providers.NewBookingHotelProvider(providers.BookingConfig{
		APIKey:   cfg.Apify.APIKey,
		BaseURL:  cfg.Apify.BaseURL,
		Actor:    cfg.Apify.BookingActor,
		Currency: cfg.Provider.Currency,
		MaxItems: cfg.Apify.MaxItems,
		Timeout:  cfg.Provider.Timeout,
	}, zl)
}

func initializeCache(cfg config.CacheConfig, zl *zap.Logger) cache.Cache {
	if !cfg.Enabled {
		zl.Info("cache disabled")
		return cache.NewNoOpCache()
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		TTL:      cfg.TTL,
	})
	if err != nil {
		zl.Fatal("failed to connect to redis", zap.Error(err))
	}
	zl.Info("redis cache enabled",
		zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
		zap.Duration("ttl", cfg.TTL))
	return redisCache
}

func limit(l config.RateLimit) ratelimit.Limit {
	return ratelimit.Limit{RequestsPerSecond: l.RPS, BurstSize: l.Burst}
}
