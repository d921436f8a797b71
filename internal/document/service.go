// Package document composes the directory, revision ledger, tag index,
// comment thread and watch registry into document operations.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gosshub/internal/activity"
	"gosshub/internal/comment"
	"gosshub/internal/directory"
	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/notify"
	"gosshub/internal/revision"
	"gosshub/internal/tag"
	"gosshub/internal/watch"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Fanout notifies watchers once a change has committed.
type Fanout interface {
	Fanout(ctx context.Context, ev notify.Event) ([]notify.Intent, error)
}

type Service interface {
	Create(ctx context.Context, actor *domain.User, input CreateInput) (*domain.DocumentSummary, error)
	AddRevision(ctx context.Context, actor *domain.User, publicID string, input RevisionInput) (*domain.RevisionView, error)
	Get(ctx context.Context, publicID string) (*domain.DocumentDetail, error)
	List(ctx context.Context, search string, page int) (*domain.PaginatedDocuments, error)
	Update(ctx context.Context, actor *domain.User, publicID string, input UpdateInput) error
}

type DefaultService struct {
	db     *gorm.DB
	fanout Fanout
	now    func() time.Time
}

func NewService(db *gorm.DB, fanout Fanout) Service {
	return &DefaultService{db: db, fanout: fanout, now: time.Now}
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.BadRequest("Body value missing.", nil)
	}
	return nil
}

// Create writes the document, its first revision, its tags and the activity
// entry in one transaction.
func (s *DefaultService) Create(ctx context.Context, actor *domain.User, input CreateInput) (*domain.DocumentSummary, error) {
	if actor == nil {
		return nil, errors.Unauthorized("Log in to create documents.", nil)
	}
	if err := validateBody(input.Body); err != nil {
		return nil, err
	}
	if len(input.Tags) > MaxCreateTags {
		return nil, errors.BadRequest(fmt.Sprintf("Tags must contain at most %d items.", MaxCreateTags), nil)
	}

	now := s.now().UTC()
	var (
		doc  *domain.Document
		rev  *domain.Revision
		tags []domain.Tag
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = directory.NewRepository(tx).Create(ctx, &actor.ID, now)
		if err != nil {
			return err
		}

		rev = &domain.Revision{
			DocumentID: doc.ID,
			AuthorID:   &actor.ID,
			Body:       input.Body,
			Comment:    input.Comment,
			CreatedAt:  now,
		}
		if err := revision.NewRepository(tx).Create(ctx, rev); err != nil {
			return err
		}

		tags, err = tag.NewRepository(tx).AttachTags(ctx, rev.ID, input.Tags, &actor.ID)
		if err != nil {
			return err
		}

		return activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:               fmt.Sprintf("Document %s created by %s.", doc.PublicID, actor.Username),
			InitiatorID:        &actor.ID,
			AffectedDocumentID: &doc.ID,
			Visibility:         domain.VisibilityPublic,
		})
	})
	if err != nil {
		return nil, err
	}

	author := actor.Username
	return &domain.DocumentSummary{
		ID:        doc.ID,
		PublicID:  doc.PublicID,
		CreatedAt: doc.CreatedAt,
		Archived:  doc.Archived,
		CreatedBy: &author,
		Latest:    revisionView(rev, &author, tags),
	}, nil
}

// AddRevision appends a revision and notifies the document's watchers once
// it has committed. The actor is never notified of their own change.
func (s *DefaultService) AddRevision(ctx context.Context, actor *domain.User, publicID string, input RevisionInput) (*domain.RevisionView, error) {
	if actor == nil {
		return nil, errors.Unauthorized("Log in to edit documents.", nil)
	}
	if err := validateBody(input.Body); err != nil {
		return nil, err
	}

	doc, err := directory.NewRepository(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	rev := &domain.Revision{
		DocumentID: doc.ID,
		AuthorID:   &actor.ID,
		Body:       input.Body,
		Comment:    input.Comment,
		CreatedAt:  s.now().UTC(),
	}
	var tags []domain.Tag
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revision.NewRepository(tx).Create(ctx, rev); err != nil {
			return err
		}
		var err error
		tags, err = tag.NewRepository(tx).AttachTags(ctx, rev.ID, input.Tags, &actor.ID)
		if err != nil {
			return err
		}
		return activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:               fmt.Sprintf("Document %s edited by %s.", doc.PublicID, actor.Username),
			InitiatorID:        &actor.ID,
			AffectedDocumentID: &doc.ID,
			Visibility:         domain.VisibilityPublic,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.fanout != nil {
		_, err := s.fanout.Fanout(ctx, notify.Event{
			Kind:       notify.KindRevision,
			DocumentID: doc.ID,
			PublicID:   doc.PublicID,
			ActorID:    &actor.ID,
			ActorName:  actor.Username,
		})
		if err != nil {
			log.Error().Err(err).Str("document", doc.PublicID).Msg("revision fanout failed")
		}
	}

	author := actor.Username
	view := revisionView(rev, &author, tags)
	return &view, nil
}

// Get assembles the document detail. The parts are independent reads and
// run concurrently.
func (s *DefaultService) Get(ctx context.Context, publicID string) (*domain.DocumentDetail, error) {
	dir := directory.NewRepository(s.db)
	doc, err := dir.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	detail := &domain.DocumentDetail{
		PublicID:  doc.PublicID,
		CreatedAt: doc.CreatedAt,
		Archived:  doc.Archived,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		revisions, err := revision.NewRepository(s.db).ListForDocument(gctx, doc.ID)
		if err != nil {
			return err
		}
		if err := tag.FillRevisionTags(gctx, tag.NewRepository(s.db), revisions); err != nil {
			return err
		}
		detail.Revisions = revisions
		return nil
	})
	g.Go(func() error {
		thread, err := comment.NewRepository(s.db).ThreadFor(gctx, doc.ID)
		detail.Comments = thread
		return err
	})
	g.Go(func() error {
		watchers, err := watch.NewRepository(s.db).Watchers(gctx, doc.ID)
		detail.Watchers = watchers
		return err
	})
	g.Go(func() error {
		name, err := dir.CreatorName(gctx, doc)
		detail.CreatedBy = name
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return detail, nil
}

// List pages through every document's latest revision, optionally narrowed
// to bodies containing search.
func (s *DefaultService) List(ctx context.Context, search string, page int) (*domain.PaginatedDocuments, error) {
	summaries, meta, err := revision.NewRepository(s.db).LatestPerDocument(ctx, revision.LatestFilter{Search: strings.TrimSpace(search)}, page)
	if err != nil {
		return nil, err
	}
	if err := tag.FillSummaryTags(ctx, tag.NewRepository(s.db), summaries); err != nil {
		return nil, err
	}
	return &domain.PaginatedDocuments{Data: summaries, Meta: meta}, nil
}

// Update changes document metadata. Only the creator or an admin may do so.
func (s *DefaultService) Update(ctx context.Context, actor *domain.User, publicID string, input UpdateInput) error {
	if actor == nil {
		return errors.Unauthorized("Log in to edit documents.", nil)
	}
	if input.Archived == nil {
		return errors.BadRequest("Archived value missing.", nil)
	}

	doc, err := directory.NewRepository(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	isCreator := doc.CreatorID != nil && *doc.CreatorID == actor.ID
	if !isCreator && !actor.IsAdmin {
		return errors.Unauthorized("Not authorized to edit this document.", nil)
	}

	state := "unarchived"
	if *input.Archived {
		state = "archived"
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := directory.NewRepository(tx).Update(ctx, doc.ID, directory.UpdateDocument{Archived: input.Archived}); err != nil {
			return err
		}
		return activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:               fmt.Sprintf("Document %s %s by %s.", doc.PublicID, state, actor.Username),
			InitiatorID:        &actor.ID,
			AffectedDocumentID: &doc.ID,
			Visibility:         domain.VisibilityAdmin,
		})
	})
}

func revisionView(rev *domain.Revision, author *string, tags []domain.Tag) domain.RevisionView {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return domain.RevisionView{
		ID:          rev.ID,
		Fingerprint: rev.Fingerprint,
		CreatedAt:   rev.CreatedAt,
		Body:        rev.Body,
		Comment:     rev.Comment,
		AuthorID:    rev.AuthorID,
		Author:      author,
		Tags:        names,
	}
}
