package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

// Cache stores normalized provider results keyed by provider and request.
type Cache interface {
	GetFlights(ctx context.Context, provider string, req models.FlightRequest) ([]models.FlightOption, bool)
	SetFlights(ctx context.Context, provider string, req models.FlightRequest, flights []models.FlightOption) error
	GetHotels(ctx context.Context, provider string, req models.HotelRequest) ([]models.HotelOption, bool)
	SetHotels(ctx context.Context, provider string, req models.HotelRequest, hotels []models.HotelOption) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      15 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultRedisConfig().TTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) GetFlights(ctx context.Context, provider string, req models.FlightRequest) ([]models.FlightOption, bool) {
	var flights []models.FlightOption
	ok := c.get(ctx, FlightKey(provider, req), &flights)
	return flights, ok
}

func (c *RedisCache) SetFlights(ctx context.Context, provider string, req models.FlightRequest, flights []models.FlightOption) error {
	return c.set(ctx, FlightKey(provider, req), flights)
}

func (c *RedisCache) GetHotels(ctx context.Context, provider string, req models.HotelRequest) ([]models.HotelOption, bool) {
	var hotels []models.HotelOption
	ok := c.get(ctx, HotelKey(provider, req), &hotels)
	return hotels, ok
}

func (c *RedisCache) SetHotels(ctx context.Context, provider string, req models.HotelRequest, hotels []models.HotelOption) error {
	return c.set(ctx, HotelKey(provider, req), hotels)
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetFlights(context.Context, string, models.FlightRequest) ([]models.FlightOption, bool) {
	return nil, false
}

func (c *NoOpCache) SetFlights(context.Context, string, models.FlightRequest, []models.FlightOption) error {
	return nil
}

func (c *NoOpCache) GetHotels(context.Context, string, models.HotelRequest) ([]models.HotelOption, bool) {
	return nil, false
}

func (c *NoOpCache) SetHotels(context.Context, string, models.HotelRequest, []models.HotelOption) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func FlightKey(provider string, req models.FlightRequest) string {
	return hashKey("flights:", struct {
		Provider     string
		Origin       string
		Destination  string
		OutboundDate string
		ReturnDate   string
	}{provider, req.Origin, req.Destination, req.OutboundDate, req.ReturnDate})
}

func HotelKey(provider string, req models.HotelRequest) string {
	return hashKey("hotels:", struct {
		Provider string
		Location string
		CheckIn  string
		CheckOut string
	}{provider, req.Location, req.CheckInDate, req.CheckOutDate})
}

func hashKey(prefix string, keyData any) string {
	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return prefix + hex.EncodeToString(hash[:])
}
