package blogapi

import "time"

// Tag is a label attached to posts, addressed by slug.
type Tag struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Post is a single blog entry. Cover, Body and CreatedAt are optional.
type Post struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Cover     string     `json:"cover,omitempty"`
	Body      string     `json:"body,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Tags      []Tag      `json:"tags,omitempty"`
}

// Page is one batch of list results. HasMore is set when the API reported a next page.
type Page struct {
	Posts   []Post
	HasMore bool
}

// pageResponse is the wire shape of list endpoints.
type pageResponse struct {
	Results []Post  `json:"results"`
	Next    *string `json:"next"`
}

// tagPageResponse is the paginated wire shape of the tag index.
type tagPageResponse struct {
	Results []Tag `json:"results"`
}
