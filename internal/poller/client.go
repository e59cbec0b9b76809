package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wrtrack/internal/history"
	"wrtrack/internal/metrics"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; the client only ever talks to one upstream host
const (
	defaultMaxIdleConns    = 10
	defaultMaxConnsPerHost = 2
	defaultIdleConnTimeout = 60 * time.Second
)

// UpstreamError indicates every fetch attempt within one poll cycle failed.
// The cycle is abandoned, but the process keeps running and retries on the
// next scheduled cycle.
type UpstreamError struct {
	Endpoint string
	Attempts int
	Err      error // last attempt's failure
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ClientOptions configures a [Client].
type ClientOptions struct {
	// Endpoint is the batch-query URL of the records API. It must already
	// be validated; the config layer does that at startup.
	Endpoint string

	// MaxAttempts is the number of fetch attempts per poll cycle.
	MaxAttempts int

	// RetryWait is the flat interval between attempts. The upstream is
	// rate-sensitive; a fixed cadence with no jitter is deliberate.
	RetryWait time.Duration

	// RequestTimeout bounds a single attempt. A stalled connection counts
	// as a failed attempt for retry purposes.
	RequestTimeout time.Duration
}

// Client fetches the current world records for a set of courses in one
// batched HTTP request, retrying any failure with a flat wait between
// attempts.
//
// Attempts are strictly sequential: one attempt completes, success or
// failure, before the wait for the next begins.
type Client struct {
	httpClient *http.Client
	opts       ClientOptions
	logger     *slog.Logger
	metrics    *metrics.Metrics

	now func() time.Time // stubbed in tests
}

// NewClient creates a [Client] for the configured upstream endpoint.
//
// Timeouts are applied per attempt via context, not as a global client
// timeout, so the retry loop stays in control of pacing.
func NewClient(opts ClientOptions, logger *slog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    defaultMaxIdleConns,
				MaxConnsPerHost: defaultMaxConnsPerHost,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		},
		opts:    opts,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Fetch requests the current record for every course in one batched GET,
// retrying up to MaxAttempts with RetryWait between attempts. A transport
// failure, a non-2xx status, or an unparseable body each count as one failed
// attempt and are logged without aborting the loop.
//
// Returns an [UpstreamError] once attempts are exhausted, or the context's
// error if it is cancelled while waiting to retry.
func (c *Client) Fetch(ctx context.Context, courseIDs []string) ([]history.Observation, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		c.metrics.IncFetchAttempt()

		observations, err := c.fetchOnce(ctx, courseIDs)
		if err == nil {
			return observations, nil
		}
		lastErr = err
		c.logger.Warn("fetch attempt failed",
			"attempt", attempt,
			"max_attempts", c.opts.MaxAttempts,
			"error", err,
		)

		if attempt == c.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.opts.RetryWait):
		}
	}
	return nil, &UpstreamError{Endpoint: c.opts.Endpoint, Attempts: c.opts.MaxAttempts, Err: lastErr}
}

// courseRecord is the per-course payload of the batch response.
type courseRecord struct {
	ID            string `json:"id"`
	WorldRecordMs int64  `json:"world_record_ms"`
	Holder        struct {
		Code string `json:"code"`
	} `json:"holder"`
}

// batchResponse is the upstream batch-query response body.
type batchResponse struct {
	Courses []courseRecord `json:"courses"`
}

// fetchOnce performs a single batch request and parses the response.
func (c *Client) fetchOnce(ctx context.Context, courseIDs []string) ([]history.Observation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.batchURL(courseIDs), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var parsed batchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response body: %w", err)
	}

	// observedAt is stamped once at parse time: every course in the batch
	// shares the fetch-completion timestamp.
	observedAt := c.now().UnixMilli()

	observations := make([]history.Observation, 0, len(parsed.Courses))
	for _, rec := range parsed.Courses {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("parse response body: course entry without id")
		}
		observations = append(observations, history.Observation{
			CourseID:   id,
			Value:      rec.WorldRecordMs,
			HolderID:   rec.Holder.Code,
			ObservedAt: observedAt,
		})
	}
	return observations, nil
}

// batchURL joins the normalized course ids into one comma-joined batch
// query. The endpoint was validated at config load.
func (c *Client) batchURL(courseIDs []string) string {
	u, err := url.Parse(c.opts.Endpoint)
	if err != nil {
		return c.opts.Endpoint
	}
	q := u.Query()
	q.Set("course_ids", strings.Join(courseIDs, ","))
	u.RawQuery = q.Encode()
	return u.String()
}

// Close releases idle connections in the client's pool. The client remains
// usable afterwards; new connections are established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
