package models

import "time"

type Blog struct {
	ID          string
	Title       string
	Slug        string // unique, lowercase, derived from title when absent
	Content     string
	CoverImage  string // public URL, empty when no image was uploaded
	Tags        []string
	IsPublished bool
	Views       int64
	AuthorID    string
	Author      *BlogAuthor // populated on reads that join the users table
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BlogAuthor is the public slice of a user embedded in blog reads.
type BlogAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Position string `json:"position"`
}
