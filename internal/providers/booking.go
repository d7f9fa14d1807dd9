package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const (
	DefaultApifyBaseURL = "https://api.apify.com"
	DefaultBookingActor = "voyager~fast-booking-scraper"
)

type BookingConfig struct {
	APIKey   string
	BaseURL  string
	Actor    string
	Currency string
	MaxItems int
	Timeout  time.Duration
}

// BookingHotelProvider searches Booking.com through an Apify scraper actor.
// The actor quotes whole-stay totals, which are converted to nightly prices.
type BookingHotelProvider struct {
	config BookingConfig
	client *jsonClient
	logger *zap.Logger
}

func NewBookingHotelProvider(cfg BookingConfig, logger *zap.Logger) *BookingHotelProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultApifyBaseURL
	}
	if cfg.Actor == "" {
		cfg.Actor = DefaultBookingActor
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &BookingHotelProvider{
		config: cfg,
		client: newJSONClient(cfg.BaseURL, cfg.Timeout),
		logger: logger.Named("booking"),
	}
}

func (p *BookingHotelProvider) Name() string {
	return "booking"
}

type bookingInput struct {
	Search           string `json:"search"`
	MaxItems         int    `json:"maxItems"`
	PropertyType     string `json:"propertyType"`
	SortBy           string `json:"sortBy"`
	MinScore         string `json:"minScore"`
	StarsCountFilter string `json:"starsCountFilter"`
	Currency         string `json:"currency"`
	Language         string `json:"language"`
	CheckIn          string `json:"checkIn"`
	CheckOut         string `json:"checkOut"`
	Rooms            int    `json:"rooms"`
	Adults           int    `json:"adults"`
	Children         int    `json:"children"`
	MinMaxPrice      string `json:"minMaxPrice"`
}

func (p *BookingHotelProvider) SearchHotels(ctx context.Context, req models.HotelRequest) ([]models.HotelOption, error) {
	nights, err := req.Nights()
	if err != nil {
		p.logger.Warn("rejecting stay before provider call",
			zap.String("location", req.Location),
			zap.String("check_in_date", req.CheckInDate),
			zap.String("check_out_date", req.CheckOutDate),
			zap.Error(err))
		return nil, err
	}
	if p.config.APIKey == "" {
		return nil, NewProviderError(p.Name(), KindCredentials, ErrMissingCredentials)
	}

	p.logger.Info("searching hotels", zap.String("location", req.Location), zap.Int("nights", nights))

	input := bookingInput{
		Search:           req.Location,
		MaxItems:         p.config.MaxItems,
		PropertyType:     "Hostels",
		SortBy:           "distance_from_search",
		MinScore:         "8",
		StarsCountFilter: "any",
		Currency:         p.config.Currency,
		Language:         "en-gb",
		CheckIn:          req.CheckInDate,
		CheckOut:         req.CheckOutDate,
		Rooms:            1,
		Adults:           1,
		Children:         0,
		MinMaxPrice:      "0-999999",
	}

	query := url.Values{}
	query.Set("token", p.config.APIKey)
	path := fmt.Sprintf("/v2/acts/%s/run-sync-get-dataset-items", strings.ReplaceAll(p.config.Actor, "/", "~"))

	res, err := p.client.post(ctx, path, query, input)
	if err != nil {
		return nil, NewProviderError(p.Name(), KindUpstream, err)
	}
	if msg, ok := payloadError(res); ok {
		return nil, NewProviderError(p.Name(), KindPayload, errors.New(msg))
	}
	if !res.IsArray() {
		return nil, NewProviderError(p.Name(), KindUpstream, fmt.Errorf("unexpected dataset shape: %s", res.Type))
	}

	items := res.Array()
	hotels := make([]models.HotelOption, 0, len(items))
	for i, raw := range items {
		hotel, err := normalizeBookingHotel(raw, nights)
		if err != nil {
			p.logger.Warn("skipping malformed hotel record", zap.Int("index", i), zap.Error(err))
			continue
		}
		hotels = append(hotels, hotel)
	}
	if len(hotels) == 0 {
		return nil, ErrNoResults
	}

	p.logger.Info("found hotels", zap.String("location", req.Location), zap.Int("count", len(hotels)))
	return hotels, nil
}

// normalizeBookingHotel converts the stay total to a nightly price. nights
// must be positive.
func normalizeBookingHotel(raw gjson.Result, nights int) (models.HotelOption, error) {
	if !raw.IsObject() {
		return models.HotelOption{}, fmt.Errorf("record is %s, not an object", raw.Type)
	}
	total, err := floatField(raw, "price")
	if err != nil {
		return models.HotelOption{}, err
	}
	rating, err := floatField(raw, "rating")
	if err != nil {
		return models.HotelOption{}, err
	}
	return models.HotelOption{
		Name:     stringField(raw, "name", "Unknown Hotel"),
		Price:    NightlyPrice(total, nights),
		Rating:   rating,
		Location: stringField(raw, "address", "N/A"),
		Link:     stringField(raw, "url", "N/A"),
	}, nil
}

// NightlyPrice divides a stay total by its night count. Callers reject
// non-positive stays first; 0 is returned rather than dividing by them.
func NightlyPrice(total float64, nights int) float64 {
	if nights <= 0 {
		return 0
	}
	return total / float64(nights)
}
