package activity

import (
	"context"

	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"gorm.io/gorm"
)

const pageSize = 50

type Service interface {
	ListVisibleTo(ctx context.Context, actor *domain.User, page int) (*domain.PaginatedActivity, error)
}

type DefaultService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &DefaultService{db: db}
}

func (s *DefaultService) ListVisibleTo(ctx context.Context, actor *domain.User, page int) (*domain.PaginatedActivity, error) {
	if actor == nil {
		return nil, errors.Unauthorized("Not authorized to access this API.", nil)
	}
	if page < 1 {
		page = 1
	}

	rows, meta, err := NewRepository(s.db).ListVisibleTo(ctx, actor.IsAdmin, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.PaginatedActivity{Data: rows, Meta: meta}, nil
}
