// Package directory maps public document identifiers to document rows.
package directory

import (
	"context"
	"encoding/base64"
	"time"

	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxIDAttempts bounds identifier regeneration on collision.
const maxIDAttempts = 5

// NewPublicID returns a 22 character URL-safe identifier.
func NewPublicID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// UpdateDocument is the full set of mutable document fields.
type UpdateDocument struct {
	Archived *bool
}

type Repository interface {
	Create(ctx context.Context, creatorID *uint64, createdAt time.Time) (*domain.Document, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.Document, error)
	Update(ctx context.Context, documentID uint64, update UpdateDocument) error
	CreatorName(ctx context.Context, doc *domain.Document) (*string, error)
	DetachCreator(ctx context.Context, userID uint64) error
}

type RepositoryImpl struct {
	db    *gorm.DB
	newID func() string
}

// NewRepository binds the directory to db, which may be a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db, newID: NewPublicID}
}

// Create inserts a document under a fresh public identifier. The insert
// skips on an identifier collision instead of failing, so no separate
// existence check races with it; a skipped insert regenerates the id.
func (r *RepositoryImpl) Create(ctx context.Context, creatorID *uint64, createdAt time.Time) (*domain.Document, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	db := r.db.WithContext(ctx)

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		doc := &domain.Document{
			PublicID:  r.newID(),
			CreatedAt: createdAt,
			CreatorID: creatorID,
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoNothing: true,
		}).Create(doc)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return doc, nil
		}
	}

	return nil, errors.Conflict("Could not allocate a unique document identifier.", nil)
}

func (r *RepositoryImpl) GetByPublicID(ctx context.Context, publicID string) (*domain.Document, error) {
	if publicID == "" {
		return nil, errors.BadRequest("Uuid value missing.", nil)
	}
	var doc domain.Document
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&doc).Error
	if err != nil {
		return nil, errors.FromStore(err, "No matching document found.", "")
	}
	return &doc, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, documentID uint64, update UpdateDocument) error {
	fields := map[string]any{}
	if update.Archived != nil {
		fields["archived"] = *update.Archived
	}
	if len(fields) == 0 {
		return errors.BadRequest("Nothing to update.", nil)
	}
	return r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ?", documentID).
		Updates(fields).Error
}

// CreatorName resolves the username of the document's creator, nil once the
// creator has been detached.
func (r *RepositoryImpl) CreatorName(ctx context.Context, doc *domain.Document) (*string, error) {
	if doc.CreatorID == nil {
		return nil, nil
	}
	var names []string
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", *doc.CreatorID).
		Pluck("username", &names).Error
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return &names[0], nil
}

func (r *RepositoryImpl) DetachCreator(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("creator_id = ?", userID).
		Update("creator_id", nil).Error
}
