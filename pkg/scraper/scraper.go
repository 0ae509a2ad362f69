// Package scraper fetches public Fiverr gig data, either by running the
// configured scraper script or through a scraping proxy.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/b0ase/portal/pkg/config"
)

var (
	ErrNotConfigured = errors.New("scraper api key not configured")
	ErrInvalidURL    = errors.New("target url must be an https fiverr.com url")
	ErrTimeout       = errors.New("scraper timed out")
	ErrNoData        = errors.New("no gig data found")
)

const BaseFiverrURL = "https://www.fiverr.com"

// Gig is the normalized record returned by every backend.
type Gig struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	SellerName   string   `json:"seller_name,omitempty"`
	SellerURL    string   `json:"seller_url,omitempty"`
	Price        string   `json:"price,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewsCount *int64   `json:"reviews_count,omitempty"`
}

// Runner scrapes a single Fiverr URL.
type Runner interface {
	Scrape(ctx context.Context, targetURL string) (*Gig, error)
}

// ExitError reports a scraper process that exited with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("scraper exited with code %d: %s", e.Code, e.Stderr)
}

// OutputError reports output that could not be read as a gig.
type OutputError struct {
	Raw    string
	Reason string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("invalid scraper output (%s): %.200s", e.Reason, e.Raw)
}

// UpstreamError reports a non-2xx answer from the scraping proxy.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("scraping proxy responded with status %d", e.Status)
}

// New returns the backend selected by cfg.Scraper.Mode.
func New(cfg *config.Config) (Runner, error) {
	s := cfg.Scraper
	switch s.Mode {
	case config.ScraperModeProcess, "":
		return NewProcessRunner(s.Command, s.APIKey, s.TimeoutSeconds), nil
	case config.ScraperModeHTTP:
		return NewHTTPRunner(s.ProxyURL, s.APIKey, s.TimeoutSeconds), nil
	default:
		return nil, fmt.Errorf("unknown scraper mode %q", s.Mode)
	}
}

// ValidateTarget accepts only https URLs on fiverr.com or its subdomains.
func ValidateTarget(target string) error {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || u.Scheme != "https" {
		return ErrInvalidURL
	}
	host := strings.ToLower(u.Hostname())
	if host != "fiverr.com" && !strings.HasSuffix(host, ".fiverr.com") {
		return ErrInvalidURL
	}
	return nil
}
