package document

import (
	"sort"
	"time"
)

// Universe is the identity of a topic universe: the shared context gap
// categorization and stub generation write against.
type Universe struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Audience    string    `json:"audience,omitempty"`
	Pages       []string  `json:"pages"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUniverse creates an empty universe.
func NewUniverse(name, description, audience string) *Universe {
	now := time.Now().UTC()
	return &Universe{
		Name:        name,
		Description: description,
		Audience:    audience,
		Pages:       []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddPage records a page as part of the universe. Duplicates are ignored;
// the page list stays sorted.
func (u *Universe) AddPage(pageName string) {
	for _, p := range u.Pages {
		if p == pageName {
			return
		}
	}
	u.Pages = append(u.Pages, pageName)
	sort.Strings(u.Pages)
	u.UpdatedAt = time.Now().UTC()
}

// HasPage reports whether the universe already contains the page.
func (u *Universe) HasPage(pageName string) bool {
	for _, p := range u.Pages {
		if p == pageName {
			return true
		}
	}
	return false
}
