package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aixcyberchallenge/data-form/internal/fetch"
	"github.com/aixcyberchallenge/data-form/internal/types"
)

var tracer = otel.Tracer("github.com/aixcyberchallenge/data-form/internal/dataapi")

const (
	DataPath = "/data"

	// Cause reported when a failed response carries no usable message
	GenericRequestError = "request error"

	maxBodyBytes = 1 << 20
)

// Client for the data API's /data endpoint
type Client struct {
	httpClient *http.Client
	fetcher    fetch.Fetcher
	endpoint   string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		fetcher:    fetch.NewHTTPFetcher(httpClient),
		endpoint:   strings.TrimRight(baseURL, "/") + DataPath,
	}
}

// Full URL of the data endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Save posts `submission` once. Any non 2xx answer or transport failure is a *RequestError.
// The success body is returned as-is and may be nil when the server sent no JSON.
func (c *Client) Save(ctx context.Context, submission types.Submission) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Client.Save", trace.WithAttributes(
		attribute.String("endpoint", c.endpoint),
		attribute.String("key", submission.Key),
	))
	defer span.End()

	payload, err := json.Marshal(submission)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal submission")
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct request")
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send request")
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read response body")
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Message:    messageFromBody(body),
		}
		span.RecordError(reqErr)
		span.SetStatus(codes.Error, "unsuccessful status code")
		return nil, reqErr
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "saved submission")
	// success is the status code alone, a body that is not JSON is dropped
	if !json.Valid(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// Fetch reads whatever the data endpoint returns for GET
func (c *Client) Fetch(ctx context.Context) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Client.Fetch", trace.WithAttributes(
		attribute.String("endpoint", c.endpoint),
	))
	defer span.End()

	reader, err := c.fetcher.Fetch(ctx, c.endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, &RequestError{Err: err}
	}
	defer reader.Close()

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read body")
		return nil, &RequestError{Err: err}
	}

	if !json.Valid(body) {
		err = fmt.Errorf("response from %s is not JSON", c.endpoint)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid json")
		return nil, &RequestError{Err: err}
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched data")
	return json.RawMessage(body), nil
}

func messageFromBody(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		return GenericRequestError
	}
	return parsed.Message
}
