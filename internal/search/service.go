package search

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/logging"
)

// Service fronts the provider registry with the configured policy: caps on
// result counts, the enabled/disabled switch, and error swallowing. Research
// must degrade, not fail, when a provider is down, so every lookup that errors
// returns empty results and a warning in the log.
type Service struct {
	provider Provider
	cfg      config.SearchConfig
	logger   *log.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger overrides the default logger.
func WithServiceLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService resolves the configured provider from the registry and wraps it.
func NewService(cfg config.SearchConfig, registry *Registry, opts ...ServiceOption) *Service {
	s := &Service{
		provider: registry.Resolve(cfg.DefaultProvider),
		cfg:      cfg,
		logger:   logging.New("search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether lookups will actually hit a provider.
func (s *Service) Enabled() bool {
	return s.cfg.Enabled && s.provider.Enabled()
}

// ProviderName returns the resolved provider's name.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Search runs a web search, capped at the configured result count.
func (s *Service) Search(ctx context.Context, query string) []Result {
	if !s.Enabled() {
		return nil
	}
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		s.logger.Warn("search failed", "provider", s.provider.Name(), "query", query, "error", err)
		return nil
	}
	return s.cap(results)
}

// SearchInDomain runs a search restricted to one site.
func (s *Service) SearchInDomain(ctx context.Context, query, domain string) []Result {
	if !s.Enabled() {
		return nil
	}
	results, err := s.provider.SearchInDomain(ctx, query, domain)
	if err != nil {
		s.logger.Warn("domain search failed", "provider", s.provider.Name(), "domain", domain, "error", err)
		return nil
	}
	return s.cap(results)
}

// RelatedTopics suggests topics adjacent to the given one.
func (s *Service) RelatedTopics(ctx context.Context, topic string) []string {
	if !s.Enabled() {
		return nil
	}
	topics, err := s.provider.RelatedTopics(ctx, topic)
	if err != nil {
		s.logger.Warn("related topics lookup failed", "provider", s.provider.Name(), "topic", topic, "error", err)
		return nil
	}
	if len(topics) > s.maxResults() {
		topics = topics[:s.maxResults()]
	}
	return topics
}

// TopicSummary fetches a reference summary for the topic, or "" on any failure.
func (s *Service) TopicSummary(ctx context.Context, topic string) string {
	if !s.Enabled() {
		return ""
	}
	summary, err := s.provider.TopicSummary(ctx, topic)
	if err != nil {
		s.logger.Warn("topic summary lookup failed", "provider", s.provider.Name(), "topic", topic, "error", err)
		return ""
	}
	return summary
}

// ValidateTopic scores how well the topic matches a known entity, in [0, 1].
// Disabled search scores everything 0: the researcher treats that as "no
// signal", not "unknown topic".
func (s *Service) ValidateTopic(ctx context.Context, topic string) float64 {
	if !s.Enabled() {
		return 0
	}
	score, err := s.provider.ValidateTopic(ctx, topic)
	if err != nil {
		s.logger.Warn("topic validation failed", "provider", s.provider.Name(), "topic", topic, "error", err)
		return 0
	}
	return score
}

func (s *Service) cap(results []Result) []Result {
	if len(results) > s.maxResults() {
		return results[:s.maxResults()]
	}
	return results
}

func (s *Service) maxResults() int {
	if s.cfg.MaxResults <= 0 {
		return 5
	}
	return s.cfg.MaxResults
}
