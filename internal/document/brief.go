package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// TopicBrief is the immutable input a publishing run starts from. It can be
// assembled from CLI flags or loaded from a TOML brief file.
type TopicBrief struct {
	Topic            string   `toml:"topic" json:"topic"`
	Audience         string   `toml:"audience" json:"audience,omitempty"`
	TargetWordCount  int      `toml:"target_word_count" json:"target_word_count,omitempty"`
	RequiredSections []string `toml:"required_sections" json:"required_sections,omitempty"`
	RelatedPages     []string `toml:"related_pages" json:"related_pages,omitempty"`
	SourceURLs       []string `toml:"source_urls" json:"source_urls,omitempty"`
}

// Validate checks the brief is usable as pipeline input.
func (b *TopicBrief) Validate() error {
	if strings.TrimSpace(b.Topic) == "" {
		return errors.New("document: brief topic is required")
	}
	if b.TargetWordCount < 0 {
		return fmt.Errorf("document: target_word_count must be >= 0, got %d", b.TargetWordCount)
	}
	return nil
}

// LoadBrief reads and validates a TOML brief file.
func LoadBrief(path string) (*TopicBrief, error) {
	var brief TopicBrief
	if _, err := toml.DecodeFile(path, &brief); err != nil {
		return nil, fmt.Errorf("document: loading brief %s: %w", path, err)
	}
	if err := brief.Validate(); err != nil {
		return nil, fmt.Errorf("document: brief %s: %w", path, err)
	}
	return &brief, nil
}
