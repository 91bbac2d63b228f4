package search

import "context"

// Noop is the provider used when search is disabled or nothing else is
// available: never enabled, empty results, zero scores.
type Noop struct{}

var _ Provider = Noop{}

// Name implements Provider.
func (Noop) Name() string { return "noop" }

// Enabled implements Provider.
func (Noop) Enabled() bool { return false }

// Search implements Provider.
func (Noop) Search(context.Context, string) ([]Result, error) { return nil, nil }

// SearchInDomain implements Provider.
func (Noop) SearchInDomain(context.Context, string, string) ([]Result, error) { return nil, nil }

// RelatedTopics implements Provider.
func (Noop) RelatedTopics(context.Context, string) ([]string, error) { return nil, nil }

// TopicSummary implements Provider.
func (Noop) TopicSummary(context.Context, string) (string, error) { return "", nil }

// ValidateTopic implements Provider.
func (Noop) ValidateTopic(context.Context, string) (float64, error) { return 0, nil }
