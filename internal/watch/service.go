package watch

import (
	"context"

	"gosshub/internal/directory"
	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"gorm.io/gorm"
)

type Service interface {
	Subscribe(ctx context.Context, actor *domain.User, publicID string) (bool, error)
	Unsubscribe(ctx context.Context, actor *domain.User, publicID string) error
}

type DefaultService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &DefaultService{db: db}
}

func (s *DefaultService) Subscribe(ctx context.Context, actor *domain.User, publicID string) (bool, error) {
	if actor == nil {
		return false, errors.Unauthorized("Log in to watch documents.", nil)
	}
	doc, err := directory.NewRepository(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return false, err
	}
	return NewRepository(s.db).Subscribe(ctx, actor.ID, doc.ID)
}

func (s *DefaultService) Unsubscribe(ctx context.Context, actor *domain.User, publicID string) error {
	if actor == nil {
		return errors.Unauthorized("Log in to watch documents.", nil)
	}
	doc, err := directory.NewRepository(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	return NewRepository(s.db).Unsubscribe(ctx, actor.ID, doc.ID)
}
