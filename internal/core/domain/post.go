package domain

import "errors"

var ErrPostNotFound = errors.New("blog post not found")

// Post is a single blog entry. Every field except ID is free text and may be
// empty; ID is assigned by the store on insert.
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
