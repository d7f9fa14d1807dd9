package providers

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

// SerpHotelProvider searches Google Hotels through SerpAPI. Prices are
// quoted per night by the provider.
type SerpHotelProvider struct {
	search serpSearch
	logger *zap.Logger
}

func NewSerpHotelProvider(cfg SerpConfig, logger *zap.Logger) *SerpHotelProvider {
	return &SerpHotelProvider{
		search: newSerpSearch("serpapi_hotels", cfg),
		logger: logger.Named("serpapi_hotels"),
	}
}

func (p *SerpHotelProvider) Name() string {
	return p.search.name
}

func (p *SerpHotelProvider) SearchHotels(ctx context.Context, req models.HotelRequest) ([]models.HotelOption, error) {
	if _, err := req.Nights(); err != nil {
		return nil, err
	}

	p.logger.Info("searching hotels", zap.String("location", req.Location))

	values := p.search.baseParams("google_hotels")
	values.Set("q", req.Location)
	values.Set("check_in_date", req.CheckInDate)
	values.Set("check_out_date", req.CheckOutDate)
	values.Set("sort_by", "3")
	values.Set("rating", "8")
	values.Set("property_types", "14")

	res, err := p.search.run(ctx, values)
	if err != nil {
		return nil, err
	}

	properties := arrayField(res, "properties")
	hotels := make([]models.HotelOption, 0, len(properties))
	for i, raw := range properties {
		hotel, err := normalizeSerpHotel(raw)
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

func normalizeSerpHotel(raw gjson.Result) (models.HotelOption, error) {
	if !raw.IsObject() {
		return models.HotelOption{}, fmt.Errorf("record is %s, not an object", raw.Type)
	}
	price, err := floatField(raw, "rate_per_night.extracted_lowest")
	if err != nil {
		return models.HotelOption{}, err
	}
	rating, err := floatField(raw, "overall_rating")
	if err != nil {
		return models.HotelOption{}, err
	}
	return models.HotelOption{
		Name:     stringField(raw, "name", "Unknown Hotel"),
		Price:    price,
		Rating:   rating,
		Location: stringField(raw, "location", "N/A"),
		Link:     stringField(raw, "link", "N/A"),
	}, nil
}
