// Package uniprot queries the UniProt SPARQL endpoint for protein records
// classified under Gene Ontology terms.
package uniprot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/dorbarker/gogetem/pkg/logging"
)

// Prometheus metrics for knowledge base operations.
var (
	sparqlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gogetem_sparql_requests_total",
		Help: "Total SPARQL requests by status",
	}, []string{"status"})

	sparqlRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gogetem_sparql_request_duration_seconds",
		Help:    "SPARQL request duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	sparqlRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gogetem_sparql_rows_total",
		Help: "Total result rows returned across all queries",
	})
)

// DefaultEndpoint is the public UniProt SPARQL endpoint.
const DefaultEndpoint = "https://sparql.uniprot.org/sparql"

// Config holds the knowledge base client configuration.
type Config struct {
	// Endpoint is the SPARQL endpoint URL
	Endpoint string

	// UserAgent identifies this tool to the endpoint
	UserAgent string

	// Timeout bounds one query round trip. Classification queries over
	// broad GO terms can run long on the public endpoint.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:  DefaultEndpoint,
		UserAgent: "gogetem (https://github.com/dorbarker/gogetem)",
		Timeout:   120 * time.Second,
	}
}

// Client queries the UniProt SPARQL endpoint.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new knowledge base client. Zero config fields fall back to
// the defaults.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
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
		logger: logging.NewLogger("uniprot"),
	}
}

// Search runs the classification query for the GO terms and returns the
// matching records in endpoint order. Terms are validated before any
// network activity.
func (c *Client) Search(ctx context.Context, terms []string, includeAminoAcids bool, limit int) ([]Record, error) {
	if err := ValidateTerms(terms); err != nil {
		return nil, err
	}

	query := BuildQuery(terms, includeAminoAcids, limit)

	c.logger.Debug().
		Int("terms", len(terms)).
		Int("limit", limit).
		Bool("amino_acids", includeAminoAcids).
		Msg("Executing SPARQL query")

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	sparqlRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		sparqlRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Msg("SPARQL request failed")
		return nil, fmt.Errorf("query knowledge base: %w", err)
	}
	defer resp.Body.Close()

	sparqlRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Msg("SPARQL query rejected")
		return nil, fmt.Errorf("knowledge base returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	records, err := decodeResults(resp.Body)
	if err != nil {
		return nil, err
	}

	sparqlRowsTotal.Add(float64(len(records)))

	c.logger.Info().
		Int("records", len(records)).
		Int("terms", len(terms)).
		Dur("duration", time.Since(start)).
		Msg("Knowledge base query complete")

	return records, nil
}

// sparqlResults mirrors the SPARQL 1.1 JSON results format, reduced to the
// fields this client selects.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// decodeResults flattens a SPARQL JSON response into records. Unbound
// variables (aa_sequence when not selected) become empty strings.
func decodeResults(r io.Reader) ([]Record, error) {
	var res sparqlResults
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	records := make([]Record, 0, len(res.Results.Bindings))
	for _, binding := range res.Results.Bindings {
		records = append(records, Record{
			Protein:    binding["protein"].Value,
			Name:       binding["name"].Value,
			Link:       binding["link"].Value,
			AASequence: binding["aa_sequence"].Value,
		})
	}

	return records, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
