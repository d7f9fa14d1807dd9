package providers

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultSerpBaseURL = "https://serpapi.com"

type SerpConfig struct {
	APIKey   string
	BaseURL  string
	Currency string
	Language string
	Country  string
	Timeout  time.Duration
}

func (c SerpConfig) withDefaults() SerpConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultSerpBaseURL
	}
	if c.Currency == "" {
		c.Currency = "INR"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Country == "" {
		c.Country = "in"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// serpSearch runs one SerpAPI engine query and classifies its failures.
type serpSearch struct {
	name   string
	config SerpConfig
	client *jsonClient
}

func newSerpSearch(name string, cfg SerpConfig) serpSearch {
	cfg = cfg.withDefaults()
	return serpSearch{
		name:   name,
		config: cfg,
		client: newJSONClient(cfg.BaseURL, cfg.Timeout),
	}
}

func (s serpSearch) baseParams(engine string) url.Values {
	params := url.Values{}
	params.Set("engine", engine)
	params.Set("hl", s.config.Language)
	params.Set("gl", s.config.Country)
	params.Set("currency", s.config.Currency)
	return params
}

func (s serpSearch) run(ctx context.Context, params url.Values) (gjson.Result, error) {
	if s.config.APIKey == "" {
		return gjson.Result{}, NewProviderError(s.name, KindCredentials, ErrMissingCredentials)
	}
	params.Set("api_key", s.config.APIKey)

	res, err := s.client.get(ctx, "/search.json", params)
	if err != nil {
		return gjson.Result{}, NewProviderError(s.name, KindUpstream, err)
	}
	if msg, ok := payloadError(res); ok {
		return gjson.Result{}, NewProviderError(s.name, KindPayload, errors.New(msg))
	}
	return res, nil
}

// payloadError extracts an explicit provider error, either a plain string
// or an object with a message member.
func payloadError(res gjson.Result) (string, bool) {
	e := res.Get("error")
	if !e.Exists() || e.Type == gjson.Null {
		return "", false
	}
	if e.IsObject() {
		if msg := e.Get("message").String(); msg != "" {
			return msg, true
		}
		return e.Raw, true
	}
	return e.String(), true
}
