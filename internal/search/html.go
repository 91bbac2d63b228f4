package search

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"

	"github.com/plumeworks/plume/internal/logging"
)

const defaultHTMLEndpoint = "https://html.duckduckgo.com/html/"

// HTML scrapes the DuckDuckGo HTML endpoint, the only general web search
// that works without an API key. DuckDuckGo answers rate-limited clients
// with 202, so that status is retryable here.
type HTML struct {
	endpoint string
	client   *retryablehttp.Client
	logger   *log.Logger
}

var _ Provider = (*HTML)(nil)

// HTMLOption configures an HTML provider.
type HTMLOption func(*HTML)

// WithHTMLEndpoint overrides the search endpoint. Tests point this at a
// local server.
func WithHTMLEndpoint(endpoint string) HTMLOption {
	return func(h *HTML) {
		h.endpoint = strings.TrimRight(endpoint, "/") + "/"
	}
}

// WithHTMLLogger overrides the default logger.
func WithHTMLLogger(logger *log.Logger) HTMLOption {
	return func(h *HTML) {
		h.logger = logger
	}
}

// NewHTML creates an HTML provider against DuckDuckGo.
func NewHTML(opts ...HTMLOption) *HTML {
	h := &HTML{
		endpoint: defaultHTMLEndpoint,
		client:   newHTTPClient("search.html", http.StatusAccepted),
		logger:   logging.New("search.html"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements Provider.
func (h *HTML) Name() string { return "html" }

// Enabled implements Provider. The HTML endpoint needs no API key.
func (h *HTML) Enabled() bool { return true }

// Search implements Provider by scraping the result page.
func (h *HTML) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{"q": {query}}
	body, err := fetchBody(ctx, h.client, h.endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	results := parseResultPage(body)
	h.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// SearchInDomain implements Provider with a site: operator.
func (h *HTML) SearchInDomain(ctx context.Context, query, domain string) ([]Result, error) {
	return h.Search(ctx, "site:"+domain+" "+query)
}

// RelatedTopics implements Provider. The HTML endpoint exposes no related
// topic data.
func (h *HTML) RelatedTopics(ctx context.Context, topic string) ([]string, error) {
	return nil, nil
}

// TopicSummary implements Provider using the first result snippet.
func (h *HTML) TopicSummary(ctx context.Context, topic string) (string, error) {
	results, err := h.Search(ctx, topic)
	if err != nil {
		return "", err
	}
	for _, r := range results {
		if r.Snippet != "" {
			return r.Snippet, nil
		}
	}
	return "", nil
}

// ValidateTopic implements Provider by matching the topic against result
// titles.
func (h *HTML) ValidateTopic(ctx context.Context, topic string) (float64, error) {
	results, err := h.Search(ctx, topic)
	if err != nil {
		return 0, err
	}
	titles := make([]string, 0, len(results))
	for _, r := range results {
		titles = append(titles, r.Title)
	}
	return labelScore(topic, titles), nil
}

// parseResultPage walks the result markup: each hit is an anchor with class
// result__a, followed by a result__snippet element.
func parseResultPage(body []byte) []Result {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				resultURL := decodeResultURL(attrValue(n, "href"))
				results = append(results, Result{
					Title:       nodeText(n),
					URL:         resultURL,
					Reliability: ReliabilityFromURL(resultURL),
				})
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = nodeText(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// decodeResultURL unwraps DuckDuckGo's redirect links, which carry the real
// destination in the uddg query parameter.
func decodeResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && u.Host != "" {
		u.Scheme = "https"
		return u.String()
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText collects and whitespace-normalizes the text under a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
