package user

import (
	"context"
	"strings"

	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	Search(ctx context.Context, query string) ([]PublicUser, error)
	Update(ctx context.Context, id uint64, fields map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository binds the user store to db, which may be a transaction.
func NewRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	return errors.FromStore(err, "", "This username or email is taken.")
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, errors.FromStore(err, "No user found with this username.", "")
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, errors.FromStore(err, "No matching user found.", "")
	}
	return &user, nil
}

// Search matches usernames containing query, everyone when query is empty.
func (r *UserRepositoryImpl) Search(ctx context.Context, query string) ([]PublicUser, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if query != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	users := make([]PublicUser, 0)
	err := q.Select("username, created_at").Order("username").Scan(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id uint64, fields map[string]any) error {
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields).Error
	return errors.FromStore(err, "", "This email is taken.")
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("No matching user found.", nil)
	}
	return nil
}
