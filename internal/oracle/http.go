package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"aibacktest/types"
)

// ErrOracleUnavailable is returned when every attempt against the oracle
// endpoint failed.
var ErrOracleUnavailable = errors.New("oracle unavailable")

const defaultBackoff = 250 * time.Millisecond

// HTTPOracle asks a remote recommendation service over HTTP. The service
// receives the Request as JSON and replies with either a decision object or
// free text; free text goes through the extractor.
type HTTPOracle struct {
	url      string
	client   *http.Client
	attempts int
	log      *slog.Logger
}

// NewHTTPOracle creates a client for the given endpoint. attempts below 1 is
// treated as 1.
func NewHTTPOracle(url string, timeout time.Duration, attempts int, log *slog.Logger) *HTTPOracle {
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPOracle{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
		log:      log,
	}
}

// Decide posts the request and parses the answer. Transport errors and
// non-2xx replies are retried with doubling backoff; a malformed body is not
// an error, it falls through to extraction.
func (o *HTTPOracle) Decide(ctx context.Context, req Request) (*types.RawDecision, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode oracle request: %w", err)
	}

	var lastErr error
	backoff := defaultBackoff
	for attempt := 0; attempt < o.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := o.post(ctx, payload)
		if err != nil {
			lastErr = err
			o.log.Warn("oracle request failed", "attempt", attempt+1, "err", err)
			continue
		}
		return decodeAnswer(body), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, lastErr)
}

func (o *HTTPOracle) post(ctx context.Context, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}
	return body, nil
}

// decodeAnswer prefers a well-formed decision object; anything else goes
// through the free-text extractor.
func decodeAnswer(body []byte) *types.RawDecision {
	var raw types.RawDecision
	if err := json.Unmarshal(body, &raw); err == nil && raw.Action != "" {
		return &raw
	}
	return ExtractDecision(string(body))
}
