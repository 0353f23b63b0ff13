// Package listing holds the records that flow from sources through
// deduplication into the store and notification sinks.
package listing

import (
	"strconv"
	"time"
)

// Listing is a for-sale item found on one of the sources.
// URL is the identity key within a run and across runs.
type Listing struct {
	ID        int64     `json:"id,omitempty"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	Price     string    `json:"price,omitempty"`
	URL       string    `json:"url"`
	Image     string    `json:"image,omitempty"`
	Keyword   string    `json:"keyword,omitempty"`
	Category  string    `json:"category,omitempty"`
	Condition string    `json:"condition,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
	FoundAt   time.Time `json:"found_date"`
	Archived  bool      `json:"archived"`
}

// ThreadRef is a forum thread as it appears on a section listing page
type ThreadRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Section describes a forum sub-forum scraped page by page.
// An empty Category means titles are categorized by keyword.
type Section struct {
	ForumID  int    `json:"forum_id" yaml:"forum_id"`
	Category string `json:"category,omitempty" yaml:"category"`
	Label    string `json:"label" yaml:"label"`
}

// DisplayLabel returns the label, falling back to the forum id
func (s Section) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return strconv.Itoa(s.ForumID)
}
