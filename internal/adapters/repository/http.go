package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/port"
)

// DefaultHTTPTimeout caps a single HTTP exchange when the caller's context
// carries no earlier deadline.
const DefaultHTTPTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 512

// APIError is a non-2xx response from a configuration server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes onto the store's sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return port.ErrNotFound
	case http.StatusConflict:
		return port.ErrAlreadyExists
	default:
		return nil
	}
}

// httpDoer performs JSON and form requests against one base URL and logs
// each exchange with a request id.
type httpDoer struct {
	base     string
	http     *http.Client
	username string
	password string
	logger   *zap.Logger
}

func newHTTPDoer(baseURL string, client *http.Client, logger *zap.Logger) (*httpDoer, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpDoer{
		base:   strings.TrimRight(u.String(), "/"),
		http:   client,
		logger: logger,
	}, nil
}

// do sends the request and returns the raw body of a 2xx response.
// body may be nil, an io.Reader sent as-is with contentType, or any value
// encoded as JSON.
func (d *httpDoer) do(ctx context.Context, method, path string, query url.Values, body any, contentType string) ([]byte, error) {
	endpoint := d.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = strings.NewReader(string(data))
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if d.username != "" {
		req.SetBasicAuth(d.username, d.password)
	}

	log := d.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	start := time.Now()

	resp, err := d.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	log.Debug("request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a body,
// falling back to the trimmed text.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}

// isBlank reports whether a response body carries no document.
func isBlank(body []byte) bool {
	s := strings.TrimSpace(string(body))
	return s == "" || s == "null" || s == `""` || s == "{}"
}

func decodeJSON(data []byte, v any, what string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", what, err)
	}
	return nil
}

// isNotFound reports whether err means the entry does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, port.ErrNotFound)
}
