package activity

import (
	"context"
	"time"

	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/metrics"

	"gorm.io/gorm"
)

// Entry is the input of Append. Pointers are optional references.
type Entry struct {
	Body               string
	InitiatorID        *uint64
	AffectedUserID     *uint64
	AffectedDocumentID *uint64
	Visibility         string
}

type Repository interface {
	Append(ctx context.Context, entry Entry) error
	ListVisibleTo(ctx context.Context, isAdmin bool, page, pageSize int) ([]domain.ActivityView, domain.PageMeta, error)
	DetachUser(ctx context.Context, userID uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the activity log to db, which may be a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Append(ctx context.Context, entry Entry) error {
	if entry.Body == "" {
		return errors.BadRequest("Activity body missing.", nil)
	}
	if entry.Visibility != domain.VisibilityPublic && entry.Visibility != domain.VisibilityAdmin {
		return errors.BadRequest("Activity visibility must be public or admin.", nil)
	}

	row := domain.ActivityEntry{
		CreatedAt:          time.Now().UTC(),
		Body:               entry.Body,
		InitiatorID:        entry.InitiatorID,
		AffectedUserID:     entry.AffectedUserID,
		AffectedDocumentID: entry.AffectedDocumentID,
		Visibility:         entry.Visibility,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	metrics.ActivityEntries.WithLabelValues(entry.Visibility).Inc()
	return nil
}

// ListVisibleTo returns a single tier: admins read the admin tier, everyone
// else the public one.
func (r *RepositoryImpl) ListVisibleTo(ctx context.Context, isAdmin bool, page, pageSize int) ([]domain.ActivityView, domain.PageMeta, error) {
	tier := domain.VisibilityPublic
	if isAdmin {
		tier = domain.VisibilityAdmin
	}

	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.ActivityEntry{}).Where("visibility = ?", tier).Count(&total).Error; err != nil {
		return nil, domain.PageMeta{}, err
	}

	rows := make([]domain.ActivityView, 0)
	err := db.Table("activity_entries AS a").
		Select("a.id, a.created_at, a.body, a.visibility, users.username AS initiator, documents.public_id AS affected_document").
		Joins("LEFT JOIN users ON users.id = a.initiator_id").
		Joins("LEFT JOIN documents ON documents.id = a.affected_document_id").
		Where("a.visibility = ?", tier).
		Order("a.created_at DESC").
		Order("a.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	return rows, domain.NewPageMeta(total, page, pageSize), nil
}

func (r *RepositoryImpl) DetachUser(ctx context.Context, userID uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.ActivityEntry{}).
		Where("initiator_id = ?", userID).
		Update("initiator_id", nil).Error; err != nil {
		return err
	}
	return db.Model(&domain.ActivityEntry{}).
		Where("affected_user_id = ?", userID).
		Update("affected_user_id", nil).Error
}
