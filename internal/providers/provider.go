package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type FlightProvider interface {
	Name() string
	SearchFlights(ctx context.Context, req models.FlightRequest) ([]models.FlightOption, error)
}

type HotelProvider interface {
	Name() string
	SearchHotels(ctx context.Context, req models.HotelRequest) ([]models.HotelOption, error)
}

// ErrNoResults reports a well-formed provider call that produced no usable
// records. It is never wrapped in a ProviderError.
var ErrNoResults = errors.New("no results found")

var ErrMissingCredentials = errors.New("api key is not configured")

type ErrorKind string

const (
	KindUpstream    ErrorKind = "upstream"
	KindCredentials ErrorKind = "credentials"
	KindPayload     ErrorKind = "payload"
)

type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call could succeed. Missing
// credentials and explicit error payloads will not change on retry.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindUpstream
}

func NewProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Err:      err,
	}
}

// IsRetryable reports whether err is a retryable ProviderError.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}
