package aggregator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/cache"
	"github.com/dharmasatrya/tripplanner/internal/corpus"
	"github.com/dharmasatrya/tripplanner/internal/fanout"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/providers"
	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
	"github.com/dharmasatrya/tripplanner/internal/recommend"
)

// LLMLimiterKey is the rate limiter bucket shared by all text generation calls.
const LLMLimiterKey = "llm"

// Recommender is the text generation side of the pipeline.
type Recommender interface {
	Recommend(ctx context.Context, kind models.Kind, corpus string) (string, error)
	SynthesizeItinerary(ctx context.Context, in recommend.ItineraryInput) (string, error)
}

type Config struct {
	MaxRetries    int
	RetryDelays   []time.Duration
	MaxConcurrent int
	Currency      string
	RateLimiter   *ratelimit.ProviderLimiter
	Cache         cache.Cache
}

// Aggregator runs provider searches, asks for recommendations and builds
// itineraries from the selected results.
type Aggregator struct {
	flights     providers.FlightProvider
	hotels      providers.HotelProvider
	recommender Recommender
	formatter   *corpus.Formatter
	config      Config
	logger      *zap.Logger
}

func NewAggregator(flights providers.FlightProvider, hotels providers.HotelProvider, recommender Recommender, config Config, logger *zap.Logger) *Aggregator {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = fanout.DefaultMaxConcurrent
	}
	if config.Cache == nil {
		config.Cache = cache.NewNoOpCache()
	}
	return &Aggregator{
		flights:     flights,
		hotels:      hotels,
		recommender: recommender,
		formatter:   corpus.NewFormatter(config.Currency),
		config:      config,
		logger:      logger.Named("aggregator"),
	}
}

// fetchFlights consults the cache, then the provider with rate limiting and
// retries.
func (a *Aggregator) fetchFlights(ctx context.Context, req models.FlightRequest, log *zap.Logger) ([]models.FlightOption, error) {
	name := a.flights.Name()
	if cached, ok := a.config.Cache.GetFlights(ctx, name, req); ok {
		log.Info("flight cache hit", zap.String("provider", name))
		return cached, nil
	}

	flights, err := withRetry(ctx, a, name, log, func(ctx context.Context) ([]models.FlightOption, error) {
		return a.flights.SearchFlights(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if err := a.config.Cache.SetFlights(ctx, name, req, flights); err != nil {
		log.Warn("failed to cache flights", zap.Error(err))
	}
	return flights, nil
}

func (a *Aggregator) fetchHotels(ctx context.Context, req models.HotelRequest, log *zap.Logger) ([]models.HotelOption, error) {
	// Non-positive stays never reach the provider or the cache.
	if _, err := req.Nights(); err != nil {
		return nil, err
	}

	name := a.hotels.Name()
	if cached, ok := a.config.Cache.GetHotels(ctx, name, req); ok {
		log.Info("hotel cache hit", zap.String("provider", name), zap.String("location", req.Location))
		return cached, nil
	}

	hotels, err := withRetry(ctx, a, name, log, func(ctx context.Context) ([]models.HotelOption, error) {
		return a.hotels.SearchHotels(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if err := a.config.Cache.SetHotels(ctx, name, req, hotels); err != nil {
		log.Warn("failed to cache hotels", zap.Error(err))
	}
	return hotels, nil
}

// withRetry waits on the provider's rate limit before every attempt and
// retries only errors the provider marks as retryable.
func withRetry[T any](ctx context.Context, a *Aggregator, provider string, log *zap.Logger, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		if attempt > 0 && len(a.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(a.config.RetryDelays) {
				delayIdx = len(a.config.RetryDelays) - 1
			}

			select {
			case <-time.After(a.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		if a.config.RateLimiter != nil {
			if err := a.config.RateLimiter.Wait(ctx, provider); err != nil {
				return zero, err
			}
		}

		v, err := call(ctx)
		if err == nil {
			return v, nil
		}

		lastErr = err
		if !providers.IsRetryable(err) {
			return zero, err
		}
		log.Warn("provider attempt failed",
			zap.String("provider", provider),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return zero, lastErr
}

// recommend returns generated text, or the failure placeholder for kind.
func (a *Aggregator) recommend(ctx context.Context, kind models.Kind, text string, log *zap.Logger) string {
	if a.config.RateLimiter != nil {
		if err := a.config.RateLimiter.Wait(ctx, LLMLimiterKey); err != nil {
			log.Warn("recommendation skipped", zap.String("kind", string(kind)), zap.Error(err))
			return recommend.FailurePlaceholder(kind)
		}
	}

	out, err := a.recommender.Recommend(ctx, kind, text)
	if err != nil {
		log.Warn("recommendation failed", zap.String("kind", string(kind)), zap.Error(err))
		return recommend.FailurePlaceholder(kind)
	}
	return out
}

// synthesize returns the itinerary text. Validation errors are returned so
// callers can decide whether to surface them; other failures become the
// itinerary placeholder.
func (a *Aggregator) synthesize(ctx context.Context, in recommend.ItineraryInput, log *zap.Logger) (string, error) {
	if a.config.RateLimiter != nil {
		if err := a.config.RateLimiter.Wait(ctx, LLMLimiterKey); err != nil {
			log.Warn("itinerary skipped", zap.Error(err))
			return recommend.ItineraryFailure, nil
		}
	}

	out, err := a.recommender.SynthesizeItinerary(ctx, in)
	if err != nil {
		var ve models.ValidationError
		if errors.As(err, &ve) {
			return "", err
		}
		log.Warn("itinerary generation failed", zap.Error(err))
		return recommend.ItineraryFailure, nil
	}
	return out, nil
}
