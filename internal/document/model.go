package document

// MaxCreateTags bounds the tags accepted when a document is created. Later
// revisions are not bounded.
const MaxCreateTags = 3

type CreateInput struct {
	Body    string   `json:"body" binding:"required"`
	Comment *string  `json:"comment"`
	Tags    []string `json:"tags" binding:"max=3"`
}

type RevisionInput struct {
	Body    string   `json:"body" binding:"required"`
	Comment *string  `json:"comment"`
	Tags    []string `json:"tags"`
}

// UpdateInput is the complete set of mutable document fields.
type UpdateInput struct {
	Archived *bool `json:"archived" binding:"required"`
}
