package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/plumeworks/plume/internal/logging"
)

const (
	defaultWikidataAPI  = "https://www.wikidata.org/w/api.php"
	wikidataSearchLimit = 10
)

// Wikidata resolves topics against the Wikidata entity database. Its search
// is label-based, which makes it the best topic validator: an entity whose
// label matches the topic is strong evidence the topic is real.
type Wikidata struct {
	apiBase string
	client  *retryablehttp.Client
	logger  *log.Logger
}

var _ Provider = (*Wikidata)(nil)

// WikidataOption configures a Wikidata provider.
type WikidataOption func(*Wikidata)

// WithWikidataEndpoint overrides the API base URL. Tests point this at a
// local server.
func WithWikidataEndpoint(apiBase string) WikidataOption {
	return func(w *Wikidata) {
		w.apiBase = strings.TrimRight(apiBase, "/")
	}
}

// WithWikidataLogger overrides the default logger.
func WithWikidataLogger(logger *log.Logger) WikidataOption {
	return func(w *Wikidata) {
		w.logger = logger
	}
}

// NewWikidata creates a Wikidata provider against the public API.
func NewWikidata(opts ...WikidataOption) *Wikidata {
	w := &Wikidata{
		apiBase: defaultWikidataAPI,
		client:  newHTTPClient("search.wikidata"),
		logger:  logging.New("search.wikidata"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements Provider.
func (w *Wikidata) Name() string { return "wikidata" }

// Enabled implements Provider. Wikidata needs no API key.
func (w *Wikidata) Enabled() bool { return true }

type wikidataEntity struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
	ConceptURI  string   `json:"concepturi"`
}

type wikidataSearchResponse struct {
	Search []wikidataEntity `json:"search"`
}

func (w *Wikidata) searchEntities(ctx context.Context, query string) ([]wikidataEntity, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {query},
		"language": {"en"},
		"format":   {"json"},
		"limit":    {fmt.Sprintf("%d", wikidataSearchLimit)},
	}

	var decoded wikidataSearchResponse
	if err := fetchJSON(ctx, w.client, w.apiBase+"?"+params.Encode(), &decoded); err != nil {
		return nil, err
	}
	return decoded.Search, nil
}

// Search implements Provider using wbsearchentities.
func (w *Wikidata) Search(ctx context.Context, query string) ([]Result, error) {
	entities, err := w.searchEntities(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(entities))
	for _, e := range entities {
		entityURL := e.ConceptURI
		if entityURL == "" {
			entityURL = "https://www.wikidata.org/wiki/" + url.PathEscape(e.ID)
		}
		results = append(results, Result{
			Title:       e.Label,
			URL:         entityURL,
			Snippet:     e.Description,
			Reliability: ReliabilityFromURL(entityURL),
		})
	}
	w.logger.Debug("entity search complete", "query", query, "results", len(results))
	return results, nil
}

// SearchInDomain implements Provider. Wikidata is a single site, so domain
// scoping degrades to a plain entity search.
func (w *Wikidata) SearchInDomain(ctx context.Context, query, domain string) ([]Result, error) {
	w.logger.Debug("domain scoping not supported, running entity search", "domain", domain)
	return w.Search(ctx, query)
}

// RelatedTopics implements Provider, returning labels of neighboring
// entities from the same search.
func (w *Wikidata) RelatedTopics(ctx context.Context, topic string) ([]string, error) {
	entities, err := w.searchEntities(ctx, topic)
	if err != nil {
		return nil, err
	}
	related := make([]string, 0, len(entities))
	for _, e := range entities {
		if e.Label == "" || strings.EqualFold(e.Label, topic) {
			continue
		}
		related = append(related, e.Label)
	}
	return related, nil
}

// TopicSummary implements Provider using the best-matching entity's
// description.
func (w *Wikidata) TopicSummary(ctx context.Context, topic string) (string, error) {
	entities, err := w.searchEntities(ctx, topic)
	if err != nil {
		return "", err
	}
	if len(entities) == 0 {
		return "", nil
	}
	return entities[0].Description, nil
}

// ValidateTopic implements Provider with a graded score:
//
//	1.00       an entity label or alias matches the topic exactly
//	0.85       a label contains the topic or vice versa
//	0.60-0.80  composite topics (3+ words) with partial word overlap
//	0.50-0.85  short topics with partial word overlap
//	0.35-0.60  no entity hit, but individual words are known entities
//	0.00       nothing recognizable
func (w *Wikidata) ValidateTopic(ctx context.Context, topic string) (float64, error) {
	normTopic := normalizeLabel(topic)
	if normTopic == "" {
		return 0, nil
	}
	words := significantWords(topic)

	entities, err := w.searchEntities(ctx, topic)
	if err != nil {
		return 0, err
	}

	labels := entityLabels(entities)
	if len(labels) > 0 {
		for _, l := range labels {
			if normalizeLabel(l) == normTopic {
				return 1.0, nil
			}
		}
		for _, l := range labels {
			nl := normalizeLabel(l)
			if nl == "" {
				continue
			}
			if strings.Contains(nl, normTopic) || strings.Contains(normTopic, nl) {
				return 0.85, nil
			}
		}
		if r := bestWordOverlap(words, labels); r > 0 {
			if len(words) >= 3 {
				return 0.6 + 0.2*r, nil
			}
			return 0.5 + 0.35*r, nil
		}
	}

	// No entity matched the full topic. Probe each word on its own: a topic
	// built from known concepts is plausible even without its own entity.
	if len(words) == 0 {
		return 0, nil
	}
	matched := 0
	for _, word := range words {
		hits, err := w.searchEntities(ctx, word)
		if err != nil {
			return 0, err
		}
		if len(hits) > 0 {
			matched++
		}
	}
	if matched == 0 {
		return 0, nil
	}
	return 0.35 + 0.25*(float64(matched)/float64(len(words))), nil
}

func entityLabels(entities []wikidataEntity) []string {
	var labels []string
	for _, e := range entities {
		if e.Label != "" {
			labels = append(labels, e.Label)
		}
		labels = append(labels, e.Aliases...)
	}
	return labels
}

// bestWordOverlap returns the highest fraction of topic words found in any
// single label.
func bestWordOverlap(words, labels []string) float64 {
	if len(words) == 0 {
		return 0
	}
	best := 0
	for _, l := range labels {
		nl := normalizeLabel(l)
		if nl == "" {
			continue
		}
		count := 0
		for _, word := range words {
			if strings.Contains(nl, normalizeLabel(word)) {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return float64(best) / float64(len(words))
}
