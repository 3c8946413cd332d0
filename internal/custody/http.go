package custody

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
)

const maxResponseBody = 1 << 20

// Config holds the custody service settings
type Config struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

type httpTransferer struct {
	url    string
	secret string
	http   adapter.HTTPClient
	json   adapter.JSON
	clock  adapter.Clock
}

// NewHTTPTransferer creates a Transferer that posts signed canonical JSON to the custody service
func NewHTTPTransferer(cfg Config, httpClient adapter.HTTPClient, jsonAdapter adapter.JSON, clock adapter.Clock) Transferer {
	return &httpTransferer{
		url:    strings.TrimRight(cfg.URL, "/") + "/v1/transfers",
		secret: cfg.Secret,
		http:   httpClient,
		json:   jsonAdapter,
		clock:  clock,
	}
}

// Transfer posts the request. 2xx and 409 (already executed) are success,
// 429 and 5xx are retryable and any other status is permanent.
func (t *httpTransferer) Transfer(ctx context.Context, req TransferRequest) (*Receipt, error) {
	body, err := t.json.MarshalCanonical(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to encode transfer: %w", err))
	}

	timestamp := t.clock.Now().Unix()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HEADER_IDEMPOTENCY_KEY, req.IdempotencyKey)
	httpReq.Header.Set(HEADER_TIMESTAMP, strconv.FormatInt(timestamp, 10))
	httpReq.Header.Set(HEADER_SIGNATURE, Sign(t.secret, timestamp, req.IdempotencyKey, body))

	resp, err := t.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("custody request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WarnCtx(ctx, "failed to close response body", zap.Error(err))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read custody response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		receipt := &Receipt{Reference: req.IdempotencyKey}
		if len(bytes.TrimSpace(respBody)) > 0 {
			if err := t.json.Unmarshal(respBody, receipt); err != nil {
				return nil, backoff.Permanent(fmt.Errorf("failed to decode custody receipt: %w", err))
			}
		}
		return receipt, nil
	case resp.StatusCode == http.StatusConflict:
		return &Receipt{Reference: req.IdempotencyKey, Duplicate: true}, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("custody unavailable (%d): %s", resp.StatusCode, string(respBody))
	default:
		return nil, backoff.Permanent(fmt.Errorf("custody rejected transfer (%d): %s", resp.StatusCode, string(respBody)))
	}
}
