package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
)

func enabledConfig(maxResults int) config.SearchConfig {
	return config.SearchConfig{
		Enabled:         true,
		MaxResults:      maxResults,
		DefaultProvider: "stub",
	}
}

func registryWith(p Provider) *Registry {
	r := NewRegistry()
	r.Register(p)
	return r
}

func TestServiceDisabledSkipsProvider(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub", enabled: true, score: 1.0}
	cfg := enabledConfig(5)
	cfg.Enabled = false
	svc := NewService(cfg, registryWith(provider))

	assert.False(t, svc.Enabled())
	assert.Nil(t, svc.Search(context.Background(), "anything"))
	assert.Nil(t, svc.RelatedTopics(context.Background(), "anything"))
	assert.Empty(t, svc.TopicSummary(context.Background(), "anything"))
	assert.Zero(t, svc.ValidateTopic(context.Background(), "anything"))
	assert.Zero(t, provider.searchCalls)
	assert.Zero(t, provider.validateCalls)
}

func TestServiceDisabledProviderFallsBackToNoop(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub", enabled: false}
	svc := NewService(enabledConfig(5), registryWith(provider))

	assert.False(t, svc.Enabled())
	assert.Equal(t, "noop", svc.ProviderName())
}

func TestServiceCapsResults(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		name:    "stub",
		enabled: true,
		results: []Result{
			{Title: "one", Reliability: document.ReliabilityReputable},
			{Title: "two", Reliability: document.ReliabilityReputable},
			{Title: "three", Reliability: document.ReliabilityReputable},
		},
		related: []string{"a", "b", "c"},
	}
	svc := NewService(enabledConfig(2), registryWith(provider))

	results := svc.Search(context.Background(), "query")
	assert.Len(t, results, 2)
	assert.Equal(t, "one", results[0].Title)

	assert.Len(t, svc.RelatedTopics(context.Background(), "topic"), 2)
}

func TestServiceSwallowsProviderErrors(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		name:    "stub",
		enabled: true,
		err:     errors.New("provider exploded"),
	}
	svc := NewService(enabledConfig(5), registryWith(provider))

	assert.Nil(t, svc.Search(context.Background(), "query"))
	assert.Nil(t, svc.SearchInDomain(context.Background(), "query", "example.com"))
	assert.Nil(t, svc.RelatedTopics(context.Background(), "topic"))
	assert.Empty(t, svc.TopicSummary(context.Background(), "topic"))
	assert.Zero(t, svc.ValidateTopic(context.Background(), "topic"))
}

func TestServicePassesThroughProviderData(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		name:    "stub",
		enabled: true,
		results: []Result{{Title: "hit", URL: "https://docs.example.com"}},
		related: []string{"neighbor"},
		summary: "a short summary",
		score:   0.85,
	}
	svc := NewService(enabledConfig(5), registryWith(provider))

	assert.True(t, svc.Enabled())
	assert.Equal(t, "stub", svc.ProviderName())

	results := svc.SearchInDomain(context.Background(), "query", "example.com")
	assert.Len(t, results, 1)
	assert.Equal(t, "example.com", provider.lastDomain)

	assert.Equal(t, []string{"neighbor"}, svc.RelatedTopics(context.Background(), "topic"))
	assert.Equal(t, "a short summary", svc.TopicSummary(context.Background(), "topic"))
	assert.InDelta(t, 0.85, svc.ValidateTopic(context.Background(), "topic"), 1e-9)
}
