package models

import "time"

// Article is a news article about one company, unique by link.
type Article struct {
	Link        string         `json:"link"`
	Ticker      string         `json:"ticker"`
	PublishedAt time.Time      `json:"published_at"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	FullContent string         `json:"full_content,omitempty"`
	Matches     []KeywordMatch `json:"matches,omitempty"`
}

// KeywordMatch records that an article mentioned a tracked keyword.
type KeywordMatch struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
}

// MatchedCategories returns the distinct categories among the matches,
// preserving first-seen order.
func (a *Article) MatchedCategories() []string {
	seen := make(map[string]bool, len(a.Matches))
	var cats []string
	for _, m := range a.Matches {
		if !seen[m.Category] {
			seen[m.Category] = true
			cats = append(cats, m.Category)
		}
	}
	return cats
}
