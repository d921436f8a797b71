// Package comment stores threaded comments on documents.
package comment

import (
	"context"
	"time"

	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *domain.Comment) error
	ThreadFor(ctx context.Context, documentID uint64) ([]domain.CommentView, error)
	DetachAuthor(ctx context.Context, userID uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the thread store to db, which may be a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create inserts a comment. A parent, when given, must belong to the same
// document.
func (r *RepositoryImpl) Create(ctx context.Context, c *domain.Comment) error {
	if c.Body == "" {
		return errors.BadRequest("Body value missing.", nil)
	}
	db := r.db.WithContext(ctx)

	if c.ParentID != nil {
		var n int64
		err := db.Model(&domain.Comment{}).
			Where("id = ? AND document_id = ?", *c.ParentID, c.DocumentID).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.BadRequest("Parent comment does not belong to this document.", nil)
		}
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.Create(c).Error
}

// ThreadFor returns the flat thread in posting order; replies reference
// their parent by id.
func (r *RepositoryImpl) ThreadFor(ctx context.Context, documentID uint64) ([]domain.CommentView, error) {
	rows := make([]domain.CommentView, 0)
	err := r.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.parent_id, c.created_at, c.body, users.username AS author").
		Joins("LEFT JOIN users ON users.id = c.author_id").
		Where("c.document_id = ?", documentID).
		Order("c.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *RepositoryImpl) DetachAuthor(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("author_id = ?", userID).
		Update("author_id", nil).Error
}
