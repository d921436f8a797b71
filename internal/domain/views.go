package domain

import "time"

// PageSize is fixed for every latest-per-document listing.
const PageSize = 20

type RevisionView struct {
	ID          uint64    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"date"`
	Body        string    `json:"body"`
	Comment     *string   `json:"comment,omitempty"`
	AuthorID    *uint64   `json:"-"`
	Author      *string   `json:"username"`
	Tags        []string  `json:"tags" gorm:"-"`
}

// DocumentSummary pairs a document with its latest revision.
type DocumentSummary struct {
	ID        uint64       `json:"-"`
	PublicID  string       `json:"uuid"`
	CreatedAt time.Time    `json:"created_date"`
	Archived  bool         `json:"archived"`
	CreatedBy *string      `json:"created_by"`
	Latest    RevisionView `json:"latest"`
}

type CommentView struct {
	ID        uint64    `json:"id"`
	ParentID  *uint64   `json:"parent_id"`
	CreatedAt time.Time `json:"date"`
	Body      string    `json:"body"`
	Author    *string   `json:"username"`
}

type DocumentDetail struct {
	PublicID  string         `json:"uuid"`
	CreatedAt time.Time      `json:"created_date"`
	Archived  bool           `json:"archived"`
	CreatedBy *string        `json:"created_by"`
	Revisions []RevisionView `json:"transformations"`
	Comments  []CommentView  `json:"comments"`
	Watchers  []string       `json:"watchers"`
}

type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ActivityView struct {
	ID               uint64    `json:"id"`
	CreatedAt        time.Time `json:"date"`
	Body             string    `json:"body"`
	Visibility       string    `json:"visibility"`
	Initiator        *string   `json:"initiator"`
	AffectedDocument *string   `json:"document"`
}

type PageMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

// NewPageMeta computes the page count for total rows at the given page size.
func NewPageMeta(total int64, page, perPage int) PageMeta {
	return PageMeta{
		Total:       total,
		CurrentPage: page,
		PerPage:     perPage,
		TotalPage:   int((total + int64(perPage) - 1) / int64(perPage)),
	}
}

type PaginatedDocuments struct {
	Data []DocumentSummary `json:"data"`
	Meta PageMeta          `json:"meta"`
}

type PaginatedActivity struct {
	Data []ActivityView `json:"data"`
	Meta PageMeta       `json:"meta"`
}
