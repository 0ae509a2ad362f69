package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"golang.org/x/net/html"
)

const propsScriptID = "perseus-initial-props"

// HTTPRunner fetches the page through a scraping proxy that takes api_key and url
// query parameters, then reads the embedded initial props.
type HTTPRunner struct {
	proxyURL string
	apiKey   string
	client   *req.Client
}

func NewHTTPRunner(proxyURL, apiKey string, timeoutSeconds int) *HTTPRunner {
	client := req.C()
	if timeoutSeconds > 0 {
		client.SetTimeout(time.Duration(timeoutSeconds) * time.Second)
	}
	return &HTTPRunner{
		proxyURL: proxyURL,
		apiKey:   apiKey,
		client:   client,
	}
}

func (h *HTTPRunner) Scrape(ctx context.Context, targetURL string) (*Gig, error) {
	if h.apiKey == "" {
		return nil, ErrNotConfigured
	}
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("api_key", h.apiKey).
		SetQueryParam("url", targetURL).
		Get(h.proxyURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	if !resp.IsSuccessState() {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	props, err := extractProps(resp.String())
	if err != nil {
		return nil, err
	}
	return parseProps(props)
}

// extractProps returns the text of <script id="perseus-initial-props">.
func extractProps(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", &OutputError{Raw: page, Reason: "unparseable html"}
	}

	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val == propsScriptID {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	if found == nil || found.FirstChild == nil {
		return "", ErrNoData
	}
	var b strings.Builder
	for c := found.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
