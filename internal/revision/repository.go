// Package revision is the append-only ledger of document revisions.
package revision

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/fingerprint"
	"gosshub/internal/metrics"

	"gorm.io/gorm"
)

// timeNow stamps revisions created without an explicit timestamp.
var timeNow = time.Now

// LatestFilter narrows the latest-per-document view. Empty fields match all.
type LatestFilter struct {
	Search string // case-insensitive containment on the latest body
	Tag    string // normalized tag name carried by the latest revision
}

type Repository interface {
	Create(ctx context.Context, rev *domain.Revision) error
	ListForDocument(ctx context.Context, documentID uint64) ([]domain.RevisionView, error)
	LatestPerDocument(ctx context.Context, filter LatestFilter, page int) ([]domain.DocumentSummary, domain.PageMeta, error)
	DetachAuthor(ctx context.Context, userID uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the ledger to db, which may be a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create computes the fingerprint and appends the revision. A fingerprint
// already present in the store is a Conflict; the unique index decides, not
// a pre-check.
func (r *RepositoryImpl) Create(ctx context.Context, rev *domain.Revision) error {
	if rev.DocumentID == 0 {
		return errors.BadRequest("Revision requires a document.", nil)
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = timeNow().UTC()
	}

	fp, err := fingerprint.Compute(rev.CreatedAt, rev.Body)
	if err != nil {
		return errors.BadRequest("Body value missing.", err)
	}
	rev.Fingerprint = fp

	if err := r.db.WithContext(ctx).Create(rev).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.FingerprintConflicts.Inc()
			return errors.Conflict("An identical revision was already submitted.", err)
		}
		return err
	}
	metrics.RevisionsCreated.Inc()
	return nil
}

const revisionColumns = "rev.id, rev.fingerprint, rev.created_at, rev.body, rev.comment, rev.author_id, users.username AS author"

// ListForDocument returns the full history, most recent first.
func (r *RepositoryImpl) ListForDocument(ctx context.Context, documentID uint64) ([]domain.RevisionView, error) {
	rows := make([]domain.RevisionView, 0)
	err := r.db.WithContext(ctx).
		Table("revisions AS rev").
		Select(revisionColumns).
		Joins("LEFT JOIN users ON users.id = rev.author_id").
		Where("rev.document_id = ?", documentID).
		Order("rev.created_at DESC").
		Order("rev.id DESC").
		Scan(&rows).Error
	return rows, err
}

// LatestIDs selects the id of the single latest revision of every document:
// the per-document MAX(created_at) is computed once and joined back to the
// revision rows, and MAX(id) breaks timestamp ties.
func LatestIDs(db *gorm.DB) *gorm.DB {
	maxCreated := db.Model(&domain.Revision{}).
		Select("document_id, MAX(created_at) AS max_created_at").
		Group("document_id")

	return db.Table("revisions AS r").
		Select("r.document_id, MAX(r.id) AS id").
		Joins("JOIN (?) AS m ON m.document_id = r.document_id AND m.max_created_at = r.created_at", maxCreated).
		Group("r.document_id")
}

type latestRow struct {
	DocumentID        uint64
	PublicID          string
	DocumentCreatedAt time.Time
	Archived          bool
	CreatedBy         *string
	ID                uint64
	Fingerprint       string
	CreatedAt         time.Time
	Body              string
	Comment           *string
	AuthorID          *uint64
	Author            *string
}

// LatestPerDocument pages through documents paired with their latest
// revision, most recently edited first.
func (r *RepositoryImpl) LatestPerDocument(ctx context.Context, filter LatestFilter, page int) ([]domain.DocumentSummary, domain.PageMeta, error) {
	if page < 1 {
		page = 1
	}
	db := r.db.WithContext(ctx)

	base := func() *gorm.DB {
		q := db.Table("revisions AS rev").
			Joins("JOIN (?) AS latest ON latest.id = rev.id", LatestIDs(db)).
			Joins("JOIN documents ON documents.id = rev.document_id")
		if filter.Search != "" {
			q = q.Where("LOWER(rev.body) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(filter.Search))+"%")
		}
		if filter.Tag != "" {
			q = q.Joins("JOIN revision_tags ON revision_tags.revision_id = rev.id").
				Joins("JOIN tags ON tags.id = revision_tags.tag_id").
				Where("tags.name = ?", filter.Tag)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, domain.PageMeta{}, err
	}

	var rows []latestRow
	err := base().
		Select("documents.id AS document_id, documents.public_id, documents.created_at AS document_created_at, documents.archived, creators.username AS created_by, " + revisionColumns).
		Joins("LEFT JOIN users AS creators ON creators.id = documents.creator_id").
		Joins("LEFT JOIN users ON users.id = rev.author_id").
		Order("rev.created_at DESC").
		Order("rev.id DESC").
		Offset((page - 1) * domain.PageSize).
		Limit(domain.PageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	summaries := make([]domain.DocumentSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.DocumentSummary{
			ID:        row.DocumentID,
			PublicID:  row.PublicID,
			CreatedAt: row.DocumentCreatedAt,
			Archived:  row.Archived,
			CreatedBy: row.CreatedBy,
			Latest: domain.RevisionView{
				ID:          row.ID,
				Fingerprint: row.Fingerprint,
				CreatedAt:   row.CreatedAt,
				Body:        row.Body,
				Comment:     row.Comment,
				AuthorID:    row.AuthorID,
				Author:      row.Author,
			},
		})
	}

	return summaries, domain.NewPageMeta(total, page, domain.PageSize), nil
}

// DetachAuthor nulls the author of every revision written by userID. The
// revisions themselves stay.
func (r *RepositoryImpl) DetachAuthor(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Revision{}).
		Where("author_id = ?", userID).
		Update("author_id", nil).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
