package tag

import (
	"context"

	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/revision"

	"gorm.io/gorm"
)

type Service interface {
	ListTags(ctx context.Context) ([]domain.TagCount, error)
	DocumentsForTag(ctx context.Context, name string, page int) (*domain.PaginatedDocuments, error)
}

type DefaultService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &DefaultService{db: db}
}

func (s *DefaultService) ListTags(ctx context.Context) ([]domain.TagCount, error) {
	return NewRepository(s.db).TagCounts(ctx)
}

// DocumentsForTag pages through documents whose latest revision carries the
// tag. The name goes through the same normalization as stored tags.
func (s *DefaultService) DocumentsForTag(ctx context.Context, name string, page int) (*domain.PaginatedDocuments, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return nil, errors.NotFound("No matching tag found.", err)
	}

	repo := NewRepository(s.db)
	if _, err := repo.FindByName(ctx, normalized); err != nil {
		return nil, err
	}

	summaries, meta, err := revision.NewRepository(s.db).LatestPerDocument(ctx, revision.LatestFilter{Tag: normalized}, page)
	if err != nil {
		return nil, err
	}
	if err := FillSummaryTags(ctx, repo, summaries); err != nil {
		return nil, err
	}

	return &domain.PaginatedDocuments{Data: summaries, Meta: meta}, nil
}

// FillSummaryTags loads the tags of every summary's latest revision in one
// batch.
func FillSummaryTags(ctx context.Context, repo Repository, summaries []domain.DocumentSummary) error {
	ids := make([]uint64, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.Latest.ID)
	}
	byRevision, err := repo.TagsForRevisions(ctx, ids)
	if err != nil {
		return err
	}
	for i := range summaries {
		summaries[i].Latest.Tags = tagsOrEmpty(byRevision[summaries[i].Latest.ID])
	}
	return nil
}

// FillRevisionTags does the same for a revision history.
func FillRevisionTags(ctx context.Context, repo Repository, revisions []domain.RevisionView) error {
	ids := make([]uint64, 0, len(revisions))
	for _, r := range revisions {
		ids = append(ids, r.ID)
	}
	byRevision, err := repo.TagsForRevisions(ctx, ids)
	if err != nil {
		return err
	}
	for i := range revisions {
		revisions[i].Tags = tagsOrEmpty(byRevision[revisions[i].ID])
	}
	return nil
}

func tagsOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
