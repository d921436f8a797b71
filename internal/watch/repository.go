// Package watch keeps per-user document subscriptions.
package watch

import (
	"context"
	"time"

	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Subscribe(ctx context.Context, userID, documentID uint64) (bool, error)
	Unsubscribe(ctx context.Context, userID, documentID uint64) error
	WatchersExcept(ctx context.Context, documentID uint64, excluded *uint64) ([]domain.User, error)
	Watchers(ctx context.Context, documentID uint64) ([]string, error)
	RemoveAllForUser(ctx context.Context, userID uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the registry to db, which may be a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Subscribe reports whether a new watch was created. Subscribing twice is
// not an error.
func (r *RepositoryImpl) Subscribe(ctx context.Context, userID, documentID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "document_id"}},
		DoNothing: true,
	}).Create(&domain.Watch{
		UserID:     userID,
		DocumentID: documentID,
		CreatedAt:  time.Now().UTC(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *RepositoryImpl) Unsubscribe(ctx context.Context, userID, documentID uint64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Delete(&domain.Watch{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("You are not watching this document.", nil)
	}
	return nil
}

// WatchersExcept lists the users to notify about a change made by excluded.
func (r *RepositoryImpl) WatchersExcept(ctx context.Context, documentID uint64, excluded *uint64) ([]domain.User, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.*").
		Joins("JOIN watches ON watches.user_id = users.id").
		Where("watches.document_id = ?", documentID)
	if excluded != nil {
		q = q.Where("users.id <> ?", *excluded)
	}

	users := make([]domain.User, 0)
	err := q.Order("users.id").Find(&users).Error
	return users, err
}

func (r *RepositoryImpl) Watchers(ctx context.Context, documentID uint64) ([]string, error) {
	names := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Joins("JOIN watches ON watches.user_id = users.id").
		Where("watches.document_id = ?", documentID).
		Order("users.username").
		Pluck("users.username", &names).Error
	return names, err
}

func (r *RepositoryImpl) RemoveAllForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Watch{}).Error
}
