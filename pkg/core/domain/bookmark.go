package domain

import "time"

// ShortCodeLength is the fixed length of every generated short code.
const ShortCodeLength = 3

// ShortCodeAlphabet is the full set of characters a short code may contain.
const ShortCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Bookmark represents one shortened link owned by a user.
// ShortCode and UserID are assigned at creation and never change;
// Visits only grows, and only through redirect resolution.
type Bookmark struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	ShortCode string    `json:"short_code"`
	Visits    int64     `json:"visits"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookmarkPage is one page of a user's bookmarks plus pagination metadata.
type BookmarkPage struct {
	Items   []Bookmark
	Page    int
	PerPage int
	Pages   int
	Total   int64
}

// HasNext reports whether a page after this one exists.
func (p BookmarkPage) HasNext() bool { return p.Page < p.Pages }

// HasPrev reports whether a page before this one exists.
func (p BookmarkPage) HasPrev() bool { return p.Page > 1 }

// VisitStat is the per-bookmark entry of the owner stats report.
type VisitStat struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	ShortCode string `json:"-"`
	Visits    int64  `json:"visits"`
}
