package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type fakeGenerator struct {
	out     string
	err     error
	prompts []Prompt
}

func (f *fakeGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.out, f.err
}

func TestClient_Recommend(t *testing.T) {
	gen := &fakeGenerator{out: "Recommended Departure Flight: 1\nRecommended Return Flight: 2"}
	c := NewClient(gen, zap.NewNop())

	out, err := c.Recommend(context.Background(), models.KindFlights, "**Departure Flight 1:** ...")
	require.NoError(t, err)
	assert.Equal(t, gen.out, out)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0].System, "AI Flight Analyst")
	assert.Contains(t, gen.prompts[0].User, "Recommended Departure Flight: <number>")
	assert.Contains(t, gen.prompts[0].User, "Data to analyze:\n**Departure Flight 1:** ...")
}

func TestClient_RecommendHotels(t *testing.T) {
	gen := &fakeGenerator{out: "Recommended Hotel: 2"}
	c := NewClient(gen, zap.NewNop())

	_, err := c.Recommend(context.Background(), models.KindHotels, "hotels")
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0].System, "AI Hotel Analyst")
	assert.Contains(t, gen.prompts[0].User, "Recommended Hotel: <number>")
}

func TestClient_RecommendFailures(t *testing.T) {
	t.Run("generator error", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		c := NewClient(&fakeGenerator{err: boom}, zap.NewNop())
		_, err := c.Recommend(context.Background(), models.KindHotels, "x")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("blank output", func(t *testing.T) {
		c := NewClient(&fakeGenerator{out: "  \n "}, zap.NewNop())
		_, err := c.Recommend(context.Background(), models.KindFlights, "x")
		assert.ErrorIs(t, err, ErrEmptyOutput)
	})

	t.Run("unknown kind", func(t *testing.T) {
		gen := &fakeGenerator{out: "x"}
		c := NewClient(gen, zap.NewNop())
		_, err := c.Recommend(context.Background(), "cars", "x")
		assert.ErrorIs(t, err, ErrUnknownKind)
		assert.Empty(t, gen.prompts)
	})
}

func TestClient_SynthesizeItinerary(t *testing.T) {
	gen := &fakeGenerator{out: "```markdown\n# Goa Trip\n## Day 1\n```"}
	c := NewClient(gen, zap.NewNop())

	out, err := c.SynthesizeItinerary(context.Background(), ItineraryInput{
		Destination:  "Goa",
		Flights:      "**Selected Departure Flight**",
		Hotels:       "**Selected Hotel 1**",
		CheckIn:      "2025-07-01",
		CheckOut:     "2025-07-05",
		Instructions: "vegetarian food only",
	})
	require.NoError(t, err)
	assert.Equal(t, "# Goa Trip\n## Day 1", out)

	require.Len(t, gen.prompts, 1)
	user := gen.prompts[0].User
	assert.Contains(t, user, "create a 4-day itinerary")
	assert.Contains(t, user, "**Travel Dates**: 2025-07-01 to 2025-07-05 (4 days)")
	assert.Contains(t, user, "**Special Instructions**: vegetarian food only")
	assert.Contains(t, gen.prompts[0].System, "AI Travel Planner")
}

func TestClient_SynthesizeItinerary_RejectsNonPositiveStay(t *testing.T) {
	for _, checkOut := range []string{"2025-07-01", "2025-06-20"} {
		gen := &fakeGenerator{out: "never"}
		c := NewClient(gen, zap.NewNop())

		out, err := c.SynthesizeItinerary(context.Background(), ItineraryInput{
			Destination: "Goa",
			CheckIn:     "2025-07-01",
			CheckOut:    checkOut,
		})
		assert.Empty(t, out)
		assert.ErrorIs(t, err, models.ErrNonPositiveStay)

		var ve models.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Empty(t, gen.prompts, "generator must not be called")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "markdown fence", in: "```markdown\n# Title\ntext\n```", want: "# Title\ntext"},
		{name: "bare fence", in: "  ```\n# Title\n```  ", want: "# Title"},
		{name: "no fence", in: "# Title\n\ntext", want: "# Title\n\ntext"},
		{name: "inner fence kept", in: "# Title\n```\ncode\n```\nend", want: "# Title\n```\ncode\n```\nend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestFailurePlaceholder(t *testing.T) {
	assert.Equal(t, "Unable to generate flights recommendation due to an error.", FailurePlaceholder(models.KindFlights))
	assert.Equal(t, "Unable to generate hotels recommendation due to an error.", FailurePlaceholder(models.KindHotels))
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gemini-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "pick one", body.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gemini-2.0-flash",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Recommended Hotel: 1"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "gemini-key", BaseURL: srv.URL + "/v1"}, zap.NewNop())
	out, err := gen.Generate(context.Background(), Prompt{System: "You are a planner.", User: "pick one"})
	require.NoError(t, err)
	assert.Equal(t, "Recommended Hotel: 1", out)
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		gen := NewOpenAIGenerator(OpenAIConfig{}, zap.NewNop())
		_, err := gen.Generate(context.Background(), Prompt{User: "x"})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "rate_limit", "code": 429}}`))
		}))
		defer srv.Close()

		gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
		_, err := gen.Generate(context.Background(), Prompt{User: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
		}))
		defer srv.Close()

		gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
		_, err := gen.Generate(context.Background(), Prompt{User: "x"})
		assert.ErrorIs(t, err, ErrEmptyOutput)
	})
}
