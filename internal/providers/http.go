package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// jsonClient issues provider calls and hands back the raw payload as a
// gjson.Result so each adapter can pick fields out of arbitrary shapes.
type jsonClient struct {
	baseURL    string
	httpClient *http.Client
}

func newJSONClient(baseURL string, timeout time.Duration) *jsonClient {
	return &jsonClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *jsonClient) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *jsonClient) post(ctx context.Context, path string, query url.Values, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, query), bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *jsonClient) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do returns the decoded body on success, and also on failure statuses whose
// body carries an "error" member so callers can report the explicit payload.
func (c *jsonClient) do(req *http.Request) (gjson.Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("provider returned status %d with non-JSON body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	result := gjson.ParseBytes(body)
	if resp.StatusCode >= http.StatusBadRequest && !result.Get("error").Exists() {
		return gjson.Result{}, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// intField reads an integer field, truncating fractional values. A missing
// field yields 0; a present field that is not numeric is an error.
func intField(r gjson.Result, path string) (int, error) {
	f, err := floatField(r, path)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func floatField(r gjson.Result, path string) (float64, error) {
	v := r.Get(path)
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not numeric: %q", path, v.Str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q has unexpected type %s", path, v.Type)
	}
}

// arrayField returns the elements at path, or nil when the value is missing
// or not an array. gjson's Array wraps scalars and objects in a one element
// slice.
func arrayField(r gjson.Result, path string) []gjson.Result {
	v := r.Get(path)
	if !v.IsArray() {
		return nil
	}
	return v.Array()
}

func stringField(r gjson.Result, path, fallback string) string {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return fallback
	}
	return v.String()
}
