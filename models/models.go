package models

import "time"

// DefaultAvatar is shown for sources that do not configure their own avatar
const DefaultAvatar = "kaonashi.jpg"

// Source is a blog in the blogroll. Host is derived from URL when the registry is built.
type Source struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Host   string `json:"host"`
	Avatar string `json:"avatar"`
}

// AvatarPath is the path the presentation layer serves the avatar image from
func (s Source) AvatarPath() string {
	avatar := s.Avatar
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return "/avatars/" + avatar
}

// BlogURL is the landing page of the blog
func (s Source) BlogURL() string {
	return "https://" + s.Host
}

// Item is a single normalized feed entry.
//
// Published is the zero time when the entry carries no parsable date. Extra holds
// passthrough fields from the parsed document that the aggregation core never reads.
type Item struct {
	Title          string         `json:"title"`
	Link           string         `json:"link"`
	Published      time.Time      `json:"published"`
	PublishedRaw   string         `json:"publishedRaw,omitempty"`
	ContentSnippet string         `json:"contentSnippet"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// AggregatedItem is an Item tagged with the source it came from.
// SourceIndex is the position of Source in the subset used for the aggregation pass.
type AggregatedItem struct {
	Item
	Source      Source `json:"source"`
	SourceIndex int    `json:"sourceIndex"`
}

// PageResult is everything a renderer needs to draw one page of the blogroll
type PageResult struct {
	Items          []AggregatedItem `json:"items"`
	Page           int              `json:"page"`
	TotalPages     int              `json:"totalPages"`
	ResolvedAuthor *Source          `json:"resolvedAuthor"`
}

// HasPrev reports whether a previous page exists
func (p PageResult) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists
func (p PageResult) HasNext() bool {
	return p.Page < p.TotalPages
}

// SourceView is the JSON shape of a registry entry
type SourceView struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Host       string `json:"host"`
	AvatarPath string `json:"avatarPath"`
	BlogURL    string `json:"blogUrl"`
}

// EntriesResponse is returned by the entries endpoint
type EntriesResponse struct {
	PageResult
	Prev *string `json:"prev,omitempty"`
	Next *string `json:"next,omitempty"`
}
