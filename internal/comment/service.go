package comment

import (
	"context"
	"fmt"
	"strings"

	"gosshub/internal/activity"
	"gosshub/internal/directory"
	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/notify"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CreateInput struct {
	Body     string  `json:"body" binding:"required"`
	ParentID *uint64 `json:"parent_id"`
}

// Fanout notifies watchers once a change has committed.
type Fanout interface {
	Fanout(ctx context.Context, ev notify.Event) ([]notify.Intent, error)
}

type Service interface {
	Create(ctx context.Context, actor *domain.User, publicID string, input CreateInput) (*domain.CommentView, error)
	Thread(ctx context.Context, publicID string) ([]domain.CommentView, error)
}

type DefaultService struct {
	db     *gorm.DB
	fanout Fanout
}

func NewService(db *gorm.DB, fanout Fanout) Service {
	return &DefaultService{db: db, fanout: fanout}
}

func (s *DefaultService) Create(ctx context.Context, actor *domain.User, publicID string, input CreateInput) (*domain.CommentView, error) {
	if actor == nil {
		return nil, errors.Unauthorized("Log in to comment.", nil)
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, errors.BadRequest("Body value missing.", nil)
	}

	doc, err := directory.NewRepository(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	c := &domain.Comment{
		DocumentID: doc.ID,
		ParentID:   input.ParentID,
		AuthorID:   &actor.ID,
		Body:       body,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, c); err != nil {
			return err
		}
		return activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:               fmt.Sprintf("%s commented on document %s.", actor.Username, doc.PublicID),
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
			Kind:       notify.KindComment,
			DocumentID: doc.ID,
			PublicID:   doc.PublicID,
			ActorID:    &actor.ID,
			ActorName:  actor.Username,
		})
		if err != nil {
			log.Error().Err(err).Str("document", doc.PublicID).Msg("comment fanout failed")
		}
	}

	author := actor.Username
	return &domain.CommentView{
		ID:        c.ID,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		Body:      c.Body,
		Author:    &author,
	}, nil
}

func (s *DefaultService) Thread(ctx context.Context, publicID string) ([]domain.CommentView, error) {
	doc, err := directory.NewRepository(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return NewRepository(s.db).ThreadFor(ctx, doc.ID)
}
