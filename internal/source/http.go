package source

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

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// CompanyPath is the backend endpoint serving company payloads.
const CompanyPath = "/api/get_company"

const maxErrorBody = 512

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Client   *http.Client
	Logger   *slog.Logger
}

// HTTPSource fetches payloads from the backend API using HTTP basic auth.
type HTTPSource struct {
	base     *url.URL
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPSource validates cfg and returns a source.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("http source requires a base URL")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &HTTPSource{
		base:     base,
		username: cfg.Username,
		password: cfg.Password,
		client:   client,
		logger:   logger,
	}, nil
}

// Fetch requests the company selected by q.
func (s *HTTPSource) Fetch(ctx context.Context, q core.Query) (*core.Payload, error) {
	if q.IsZero() {
		return nil, core.ErrQueryRequired
	}

	u := *s.base
	u.Path += CompanyPath
	params := url.Values{}
	if q.Ticker != "" {
		params.Set("ticker", q.Ticker)
	} else {
		params.Set("company", q.Company)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.username != "" || s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company data: %w", err)
	}
	defer resp.Body.Close()

	s.logger.Debug("fetched company",
		slog.String("query", q.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, q)
	}

	var payload core.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode company data: %w", err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("failed to fetch company data: %s", payload.Message())
	}
	return &payload, nil
}

// statusError turns a non-2xx response into an error, preferring the
// backend's own "detail" message.
func statusError(resp *http.Response, q core.Query) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope core.Payload
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &envelope) == nil && (envelope.Error != "" || envelope.Detail != "") {
		msg = envelope.Message()
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s (%s)", core.ErrNotFound, q, msg)
	}
	return fmt.Errorf("failed to fetch company data: %s: %s", resp.Status, msg)
}
