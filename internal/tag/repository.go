package tag

import (
	"context"
	"fmt"
	"time"

	"gosshub/internal/activity"
	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/revision"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	AttachTags(ctx context.Context, revisionID uint64, raw []string, creatorID *uint64) ([]domain.Tag, error)
	TagsFor(ctx context.Context, revisionID uint64) ([]string, error)
	TagsForRevisions(ctx context.Context, revisionIDs []uint64) (map[uint64][]string, error)
	TagCounts(ctx context.Context) ([]domain.TagCount, error)
	FindByName(ctx context.Context, name string) (*domain.Tag, error)
	DetachCreator(ctx context.Context, userID uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the tag index to db, which may be a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// AttachTags links the revision to every valid normalized name in raw,
// creating missing tags on the way. Inputs that do not normalize are dropped
// and duplicate names collapse into one link. Each newly created tag gets an
// admin-tier activity entry.
func (r *RepositoryImpl) AttachTags(ctx context.Context, revisionID uint64, raw []string, creatorID *uint64) ([]domain.Tag, error) {
	names := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		name, err := Normalize(candidate)
		if err != nil {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return []domain.Tag{}, nil
	}

	db := r.db.WithContext(ctx)
	log := activity.NewRepository(r.db)
	now := time.Now().UTC()

	for _, name := range names {
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&domain.Tag{Name: name, CreatedAt: now, CreatorID: creatorID})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			if err := log.Append(ctx, activity.Entry{
				Body:        fmt.Sprintf("Tag %s created.", name),
				InitiatorID: creatorID,
				Visibility:  domain.VisibilityAdmin,
			}); err != nil {
				return nil, err
			}
		}
	}

	var tags []domain.Tag
	if err := db.Where("name IN ?", names).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}

	links := make([]domain.RevisionTag, 0, len(tags))
	for _, t := range tags {
		links = append(links, domain.RevisionTag{RevisionID: revisionID, TagID: t.ID})
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	if err != nil {
		return nil, errors.FromStore(err, "", "Tag is already attached.")
	}

	return tags, nil
}

func (r *RepositoryImpl) TagsFor(ctx context.Context, revisionID uint64) ([]string, error) {
	byRevision, err := r.TagsForRevisions(ctx, []uint64{revisionID})
	if err != nil {
		return nil, err
	}
	if names, ok := byRevision[revisionID]; ok {
		return names, nil
	}
	return []string{}, nil
}

// TagsForRevisions loads tag names for a batch of revisions in one query.
func (r *RepositoryImpl) TagsForRevisions(ctx context.Context, revisionIDs []uint64) (map[uint64][]string, error) {
	result := make(map[uint64][]string, len(revisionIDs))
	if len(revisionIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		RevisionID uint64
		Name       string
	}
	err := r.db.WithContext(ctx).
		Table("revision_tags").
		Select("revision_tags.revision_id, tags.name").
		Joins("JOIN tags ON tags.id = revision_tags.tag_id").
		Where("revision_tags.revision_id IN ?", revisionIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.RevisionID] = append(result[row.RevisionID], row.Name)
	}
	return result, nil
}

// TagCounts counts documents, not revisions: only each document's latest
// revision contributes its tags.
func (r *RepositoryImpl) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	db := r.db.WithContext(ctx)
	counts := make([]domain.TagCount, 0)
	err := db.Table("revision_tags").
		Select("tags.name, COUNT(DISTINCT latest.document_id) AS count").
		Joins("JOIN (?) AS latest ON latest.id = revision_tags.revision_id", revision.LatestIDs(db)).
		Joins("JOIN tags ON tags.id = revision_tags.tag_id").
		Group("tags.name").
		Order("COUNT(DISTINCT latest.document_id) DESC").
		Order("tags.name ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *RepositoryImpl) FindByName(ctx context.Context, name string) (*domain.Tag, error) {
	var t domain.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, errors.FromStore(err, "No matching tag found.", "")
	}
	return &t, nil
}

func (r *RepositoryImpl) DetachCreator(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Tag{}).
		Where("creator_id = ?", userID).
		Update("creator_id", nil).Error
}
