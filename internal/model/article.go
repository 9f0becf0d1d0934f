package model

import "time"

// Article is a stored news article and its content fingerprint.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	SourceURL       string    `json:"source_url"`
	SourceName      string    `json:"source_name"`
	Description     string    `json:"description,omitempty"`
	PublicationDate time.Time `json:"publication_date"`
	ContentText     string    `json:"content_text,omitempty"`
	ContentHash     string    `json:"content_hash"`
	ChainTxRef      *string   `json:"blockchain_tx_hash"`
	CreatedAt       time.Time `json:"created_at"`
}

// Extracted is the readable content pulled from an article page.
type Extracted struct {
	Title       string
	Text        string
	Description string
	PublishedAt *time.Time
}

// ArticlePage is one page of a paginated listing.
type ArticlePage struct {
	Articles    []Article `json:"articles"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
