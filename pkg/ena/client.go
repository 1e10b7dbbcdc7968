// Package ena retrieves batched nucleotide sequences from the ENA browser
// bulk FASTA endpoint.
package ena

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/dorbarker/gogetem/pkg/batch"
	"github.com/dorbarker/gogetem/pkg/logging"
)

// Prometheus metrics for archive operations.
var (
	enaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gogetem_ena_requests_total",
		Help: "Total archive requests by status",
	}, []string{"status"})

	enaRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gogetem_ena_request_duration_seconds",
		Help:    "Archive request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	enaErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gogetem_ena_errors_total",
		Help: "Total archive errors by class",
	}, []string{"class"})

	enaEmptyPayloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gogetem_ena_empty_payloads_total",
		Help: "Total successful archive responses carrying no sequence data",
	})
)

// DefaultBaseURL is the ENA browser bulk FASTA endpoint. Batch keys are
// appended to it directly.
const DefaultBaseURL = "https://www.ebi.ac.uk/ena/browser/api/fasta/"

// Config holds the fetch client configuration.
type Config struct {
	// BaseURL is the bulk FASTA endpoint batch keys are appended to
	BaseURL string

	// UserAgent identifies this tool to the archive
	UserAgent string

	// Timeout bounds one batch retrieval
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "gogetem (https://github.com/dorbarker/gogetem)",
		Timeout:   60 * time.Second,
	}
}

// Client fetches batched sequences from the archive.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new fetch client. Zero config fields fall back to the
// defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("ena"),
	}
}

// FetchBatch retrieves one batch and returns its decompressed FASTA text.
// An empty string with a nil error means the archive had nothing for this
// batch; the caller treats that as transient and retries later. Transport,
// protocol, and decode failures return an *ArchiveError and are fatal to
// the run.
func (c *Client) FetchBatch(ctx context.Context, key batch.Key) (string, error) {
	endpoint := c.config.BaseURL + string(key) + "?download=true&gzip=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	enaRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		enaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		enaRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().
			Err(err).
			Int("accessions", len(key.Accessions())).
			Msg("Archive request failed")
		return "", &ArchiveError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	enaRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		enaErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Int("accessions", len(key.Accessions())).
			Msg("Archive request error")
		return "", &ArchiveError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		enaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return "", &ArchiveError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response",
			Err:        err,
		}
	}

	// The archive signals "nothing for this batch" with an empty success body
	if len(raw) == 0 {
		enaEmptyPayloadsTotal.Inc()
		c.logger.Warn().
			Int("accessions", len(key.Accessions())).
			Msg("Archive returned empty payload")
		return "", nil
	}

	text, err := gunzip(raw)
	if err != nil {
		enaErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return "", &ArchiveError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decompress payload",
			Err:        err,
		}
	}

	if len(text) == 0 {
		enaEmptyPayloadsTotal.Inc()
		c.logger.Warn().
			Int("accessions", len(key.Accessions())).
			Msg("Archive returned empty payload")
		return "", nil
	}

	c.logger.Debug().
		Int("accessions", len(key.Accessions())).
		Int("bytes", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Batch retrieved")

	return text, nil
}

// gunzip decompresses a gzip payload into text.
func gunzip(data []byte) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()

	text, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
