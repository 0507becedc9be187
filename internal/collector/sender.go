package collector

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	maxResponseBody   = 64 << 10
	maxErrorDetail    = 256
	defaultUserAgent  = "vesagent"
	defaultBreakerMax = 5
)

// Sender posts one encoded request body to a listener path.
// Params: ctx bounds the request; path listener path relative to the base URL; body JSON body.
// Returns: 2xx response body or *TransportError.
type Sender interface {
	Send(ctx context.Context, path string, body []byte) ([]byte, error)
}

// BreakerConfig configures the sender circuit breaker.
// Params: Failures consecutive transient failures that open the breaker; Timeout open period.
// Returns: breaker settings.
type BreakerConfig struct {
	Enabled  bool
	Failures uint32
	Timeout  time.Duration
}

// SenderConfig describes the collector endpoint and client behavior.
// Params: BaseURL scheme://host:port; RateLimit requests per second (0 = unlimited).
// Returns: HTTP sender settings.
type SenderConfig struct {
	BaseURL            string
	Username           string
	Password           string
	Timeout            time.Duration
	RateLimit          float64
	InsecureSkipVerify bool
	CAFile             string
	UserAgent          string
	Breaker            BreakerConfig
	Logger             *slog.Logger
}

// HTTPSender posts VES JSON bodies with basic auth.
type HTTPSender struct {
	baseURL   string
	username  string
	password  string
	userAgent string

	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewHTTPSender creates an HTTP sender.
// Params: cfg endpoint, credentials, TLS, breaker and rate limit settings.
// Returns: sender or configuration error.
func NewHTTPSender(cfg SenderConfig) (*HTTPSender, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("collector base url is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("collector base url %q must start with http:// or https://", baseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify || cfg.CAFile != "" {
		tlsConfig := &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}
		if cfg.CAFile != "" {
			pem, err := os.ReadFile(cfg.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca_file %q: %w", cfg.CAFile, err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("ca_file %q contains no PEM certificates", cfg.CAFile)
			}
			tlsConfig.RootCAs = pool
		}
		transport.TLSClientConfig = tlsConfig
	}

	sender := &HTTPSender{
		baseURL:   baseURL,
		username:  cfg.Username,
		password:  cfg.Password,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
	if sender.userAgent == "" {
		sender.userAgent = defaultUserAgent
	}

	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		sender.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if cfg.Breaker.Enabled {
		failures := cfg.Breaker.Failures
		if failures == 0 {
			failures = defaultBreakerMax
		}
		sender.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        baseURL,
			MaxRequests: 1,
			Timeout:     cfg.Breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn(
					"collector circuit breaker state changed",
					slog.String("collector", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		})
	}

	return sender, nil
}

// Send posts body to baseURL+path through the breaker and rate limiter.
// Params: ctx request context; path listener path; body encoded events.
// Returns: 2xx response body or *TransportError.
func (s *HTTPSender) Send(ctx context.Context, path string, body []byte) ([]byte, error) {
	if s.breaker == nil {
		return s.post(ctx, path, body)
	}

	// Permanent errors are reported as breaker successes.
	var permanent error
	result, err := s.breaker.Execute(func() (interface{}, error) {
		response, err := s.post(ctx, path, body)
		if err != nil && IsPermanent(err) {
			permanent = err
			return nil, nil
		}
		return response, err
	})
	if permanent != nil {
		return nil, permanent
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Err: fmt.Errorf("%w: %v", ErrBreakerOpen, err)}
	}
	if err != nil {
		return nil, err
	}
	response, _ := result.([]byte)
	return response, nil
}

// post performs one HTTP POST.
// Params: ctx request context; path listener path; body encoded events.
// Returns: response body on 2xx or classified transport error.
func (s *HTTPSender) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	url := s.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Permanent: true, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if s.username != "" || s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("POST %s: %w", url, err)}
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(payload))
		if len(detail) > maxErrorDetail {
			detail = detail[:maxErrorDetail]
		}
		return nil, classifyStatus(resp.StatusCode, detail)
	}
	if readErr != nil {
		s.logger.Debug("read collector response failed", slog.String("error", readErr.Error()))
		return nil, nil
	}
	return payload, nil
}

// Close releases idle connections.
// Params: none.
// Returns: nil.
func (s *HTTPSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
