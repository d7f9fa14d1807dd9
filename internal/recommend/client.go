// Package recommend asks a text generator to pick among search results and
// to write itineraries.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

var (
	ErrEmptyOutput = errors.New("text generator returned no output")
	ErrUnknownKind = errors.New("unknown recommendation kind")
)

const ItineraryFailure = "Unable to generate itinerary due to an error. Please try again later."

// FailurePlaceholder is the text reported in place of a recommendation that
// could not be generated.
func FailurePlaceholder(kind models.Kind) string {
	return fmt.Sprintf("Unable to generate %s recommendation due to an error.", kind)
}

// ItineraryInput carries narrowed flight and hotel text for one trip.
type ItineraryInput struct {
	Destination  string
	Flights      string
	Hotels       string
	CheckIn      string
	CheckOut     string
	Instructions string
}

type Client struct {
	generator Generator
	logger    *zap.Logger
}

func NewClient(generator Generator, logger *zap.Logger) *Client {
	return &Client{
		generator: generator,
		logger:    logger.Named("recommend"),
	}
}

// Recommend asks for a pick among the options described by corpus.
func (c *Client) Recommend(ctx context.Context, kind models.Kind, corpus string) (string, error) {
	prompt, err := recommendationPrompt(kind, corpus)
	if err != nil {
		return "", err
	}

	c.logger.Info("requesting recommendation", zap.String("kind", string(kind)))
	out, err := c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s recommendation: %w", kind, err)
	}
	return out, nil
}

// SynthesizeItinerary writes a day-by-day plan. A stay whose checkout is not
// after checkin is rejected with a ValidationError before any generation.
func (c *Client) SynthesizeItinerary(ctx context.Context, in ItineraryInput) (string, error) {
	days, err := models.NightsBetween(in.CheckIn, in.CheckOut)
	if err != nil {
		return "", err
	}

	c.logger.Info("requesting itinerary",
		zap.String("destination", in.Destination),
		zap.Int("days", days))
	out, err := c.generate(ctx, itineraryPrompt(in, days))
	if err != nil {
		return "", fmt.Errorf("itinerary: %w", err)
	}
	return StripCodeFence(out), nil
}

func (c *Client) generate(ctx context.Context, p Prompt) (string, error) {
	out, err := c.generator.Generate(ctx, p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}

var codeFence = regexp.MustCompile("^```(?:markdown|md)?[ \\t]*\\n?([\\s\\S]*?)\\n?```$")

// StripCodeFence removes a markdown code fence wrapping the whole text.
func StripCodeFence(md string) string {
	md = strings.TrimSpace(md)
	if m := codeFence.FindStringSubmatch(md); m != nil {
		return strings.TrimSpace(m[1])
	}
	return md
}
