package models

import "time"

// FeedSource is one entry from the feed source registry. It is loaded once
// at startup and never mutated during a run.
type FeedSource struct {
	URL      string `json:"url" yaml:"url"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Post is the normalized, durable representation of one syndicated article.
type Post struct {
	// ID is derived deterministically from URL, so repeated runs produce
	// the same page file for the same article.
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	SourceName  string    `json:"source"`
	PublishedAt time.Time `json:"published"`
	Image       string    `json:"image,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Category    string    `json:"category"`
	PagePath    string    `json:"pagePath"`
}

// Manifest is the machine-readable output listing all retained posts.
type Manifest struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     []Post    `json:"posts"`
}

// Comment is one synthetic forum comment attached to a thread.
type Comment struct {
	No    int    `json:"no"`
	Text  string `json:"text"`
	Likes int    `json:"likes"`
}

// Thread is the fictitious forum reaction generated for one post.
type Thread struct {
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Board      string    `json:"board"`
	Date       time.Time `json:"date"`
	Popularity int       `json:"popularity"`
	Comments   []Comment `json:"comments"`
}

// ThreadManifest is the secondary output holding all synthesized threads.
type ThreadManifest struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Note      string    `json:"note"`
	Threads   []Thread  `json:"threads"`
}
