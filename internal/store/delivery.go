package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/record"
)

// DeliveryConfig configures the downstream delivery endpoint
type DeliveryConfig struct {
	Endpoint       string `json:"endpoint"`
	Gzip           bool   `json:"gzip"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	MaxRetries     int    `json:"maxRetries"`
	BackoffMs      int    `json:"backoffMs"`
	BackoffMaxMs   int    `json:"backoffMaxMs"`
	User           string `json:"user"`
	Pass           string `json:"pass"`
}

// DeliveryStore is a persistence boundary that hands records to a
// downstream system over HTTP instead of writing them locally. Header
// identities are assigned before posting so a retried request carries the
// same identity and the receiver can deduplicate within one attempt.
type DeliveryStore struct {
	client       *http.Client
	endpoint     string
	gzip         bool
	maxRetries   int
	backoffMs    int
	backoffMaxMs int
	authHeader   string
	log          *logger.Logger
}

// headerEnvelope is the wire shape for one persisted header
type headerEnvelope struct {
	Table  string                 `json:"table"`
	Record map[string]interface{} `json:"record"`
}

// lineEnvelope is the wire shape for one line batch
type lineEnvelope struct {
	Table   string                   `json:"table"`
	Records []map[string]interface{} `json:"records"`
}

// NewDeliveryStore creates a delivery-backed store
func NewDeliveryStore(cfg DeliveryConfig, log *logger.Logger) *DeliveryStore {
	authHeader := ""
	if cfg.User != "" && cfg.Pass != "" {
		credentials := cfg.User + ":" + cfg.Pass
		authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &DeliveryStore{
		client:       &http.Client{Timeout: time.Duration(timeout) * time.Second},
		endpoint:     cfg.Endpoint,
		gzip:         cfg.Gzip,
		maxRetries:   cfg.MaxRetries,
		backoffMs:    cfg.BackoffMs,
		backoffMaxMs: cfg.BackoffMaxMs,
		authHeader:   authHeader,
		log:          log,
	}
}

// PersistHeader posts the header to the downstream endpoint and returns the
// locally assigned identity
func (s *DeliveryStore) PersistHeader(ctx context.Context, h record.Header) (string, error) {
	id := uuid.New().String()
	h.SetID(id)

	payload := headerEnvelope{Table: h.Table(), Record: h.Document()}
	if err := s.post(ctx, "/headers", h.Table(), 1, payload); err != nil {
		return "", err
	}
	return id, nil
}

// PersistLines posts the line batch per table to the downstream endpoint
func (s *DeliveryStore) PersistLines(ctx context.Context, lines []record.Line) error {
	byTable := make(map[string][]map[string]interface{})
	for _, l := range lines {
		byTable[l.Table()] = append(byTable[l.Table()], l.Document())
	}

	for table, records := range byTable {
		payload := lineEnvelope{Table: table, Records: records}
		if err := s.post(ctx, "/lines", table, len(records), payload); err != nil {
			return err
		}
	}
	return nil
}

// post sends one payload with retry and exponential backoff
func (s *DeliveryStore) post(ctx context.Context, path, table string, count int, payload interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(s.backoffMs) * time.Duration(1<<uint(attempt-1)) * time.Millisecond
			if s.backoffMaxMs > 0 && backoff > time.Duration(s.backoffMaxMs)*time.Millisecond {
				backoff = time.Duration(s.backoffMaxMs) * time.Millisecond
			}
			if httpErr, ok := lastErr.(*HTTPError); ok && httpErr.RetryAfter > 0 {
				backoff = httpErr.RetryAfter
			}

			s.log.Warnf("delivery retry %d for %s: %v", attempt, table, lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := s.postOnce(ctx, path, table, count, payload)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// postOnce marshals, optionally compresses, and sends one request
func (s *DeliveryStore) postOnce(ctx context.Context, path, table string, count int, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	var body io.Reader = bytes.NewReader(jsonData)
	contentEncoding := ""
	if s.gzip {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(jsonData); err != nil {
			return fmt.Errorf("gzip error: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("gzip close error: %w", err)
		}
		body = &buf
		contentEncoding = "gzip"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("create request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if contentEncoding != "" {
		req.Header.Set("Content-Encoding", contentEncoding)
	}
	if s.authHeader != "" {
		req.Header.Set("Authorization", s.authHeader)
	}
	req.Header.Set("X-Mapper-Table", table)
	req.Header.Set("X-Mapper-RecordCount", strconv.Itoa(count))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	// 409 means the receiver already has this identity; treat as delivered
	if resp.StatusCode == 200 || resp.StatusCode == 201 || resp.StatusCode == 409 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// HTTPError represents a non-success delivery response
type HTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// isRetryable reports whether the delivery error is worth retrying
func isRetryable(err error) bool {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		// Network errors are retryable
		return true
	}
	if httpErr.StatusCode == 429 || httpErr.StatusCode >= 500 {
		return true
	}
	return false
}

// parseRetryAfter parses a Retry-After header given in seconds
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
