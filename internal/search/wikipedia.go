package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/plumeworks/plume/internal/logging"
)

const (
	defaultWikipediaAPI  = "https://en.wikipedia.org/w/api.php"
	defaultWikipediaREST = "https://en.wikipedia.org/api/rest_v1"
	wikipediaSearchLimit = 10
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Wikipedia searches the MediaWiki action API and reads summaries from the
// REST API. It needs no credentials, which makes it the default provider.
type Wikipedia struct {
	apiBase  string
	restBase string
	client   *retryablehttp.Client
	logger   *log.Logger
}

var _ Provider = (*Wikipedia)(nil)

// WikipediaOption configures a Wikipedia provider.
type WikipediaOption func(*Wikipedia)

// WithWikipediaEndpoints overrides the action and REST API base URLs. Tests
// point these at a local server.
func WithWikipediaEndpoints(apiBase, restBase string) WikipediaOption {
	return func(w *Wikipedia) {
		w.apiBase = strings.TrimRight(apiBase, "/")
		w.restBase = strings.TrimRight(restBase, "/")
	}
}

// WithWikipediaLogger overrides the default logger.
func WithWikipediaLogger(logger *log.Logger) WikipediaOption {
	return func(w *Wikipedia) {
		w.logger = logger
	}
}

// NewWikipedia creates a Wikipedia provider against the public APIs.
func NewWikipedia(opts ...WikipediaOption) *Wikipedia {
	w := &Wikipedia{
		apiBase:  defaultWikipediaAPI,
		restBase: defaultWikipediaREST,
		client:   newHTTPClient("search.wikipedia"),
		logger:   logging.New("search.wikipedia"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements Provider.
func (w *Wikipedia) Name() string { return "wikipedia" }

// Enabled implements Provider. Wikipedia needs no API key.
func (w *Wikipedia) Enabled() bool { return true }

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Search implements Provider using action=query list=search.
func (w *Wikipedia) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprintf("%d", wikipediaSearchLimit)},
		"format":   {"json"},
		"utf8":     {"1"},
	}

	var decoded wikipediaSearchResponse
	if err := fetchJSON(ctx, w.client, w.apiBase+"?"+params.Encode(), &decoded); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(decoded.Query.Search))
	for _, hit := range decoded.Query.Search {
		pageURL := wikipediaPageURL(hit.Title)
		results = append(results, Result{
			Title:       hit.Title,
			URL:         pageURL,
			Snippet:     stripHTML(hit.Snippet),
			Reliability: ReliabilityFromURL(pageURL),
		})
	}
	w.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// SearchInDomain implements Provider. Wikipedia is a single site, so domain
// scoping degrades to a plain search.
func (w *Wikipedia) SearchInDomain(ctx context.Context, query, domain string) ([]Result, error) {
	w.logger.Debug("domain scoping not supported, running plain search", "domain", domain)
	return w.Search(ctx, query)
}

// RelatedTopics implements Provider using the opensearch endpoint, which
// returns title completions for a prefix.
func (w *Wikipedia) RelatedTopics(ctx context.Context, topic string) ([]string, error) {
	params := url.Values{
		"action": {"opensearch"},
		"search": {topic},
		"limit":  {fmt.Sprintf("%d", wikipediaSearchLimit)},
		"format": {"json"},
	}

	// Opensearch responds with a positional array:
	// [query, [titles], [descriptions], [urls]].
	var decoded []json.RawMessage
	if err := fetchJSON(ctx, w.client, w.apiBase+"?"+params.Encode(), &decoded); err != nil {
		return nil, err
	}
	if len(decoded) < 2 {
		return nil, nil
	}
	var titles []string
	if err := json.Unmarshal(decoded[1], &titles); err != nil {
		return nil, fmt.Errorf("search: decoding opensearch titles: %w", err)
	}

	related := make([]string, 0, len(titles))
	for _, t := range titles {
		if strings.EqualFold(t, topic) {
			continue
		}
		related = append(related, t)
	}
	return related, nil
}

type wikipediaSummaryResponse struct {
	Extract string `json:"extract"`
}

// TopicSummary implements Provider using the REST page summary endpoint. An
// unknown page is not an error, just an empty summary.
func (w *Wikipedia) TopicSummary(ctx context.Context, topic string) (string, error) {
	title := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))

	var decoded wikipediaSummaryResponse
	err := fetchJSON(ctx, w.client, w.restBase+"/page/summary/"+title, &decoded)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	return decoded.Extract, nil
}

// ValidateTopic implements Provider by matching the topic against search
// result titles.
func (w *Wikipedia) ValidateTopic(ctx context.Context, topic string) (float64, error) {
	results, err := w.Search(ctx, topic)
	if err != nil {
		return 0, err
	}
	titles := make([]string, 0, len(results))
	for _, r := range results {
		titles = append(titles, r.Title)
	}
	return labelScore(topic, titles), nil
}

func wikipediaPageURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// stripHTML removes markup tags and resolves entities in API snippets.
func stripHTML(s string) string {
	return html.UnescapeString(htmlTagPattern.ReplaceAllString(s, ""))
}
