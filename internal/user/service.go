package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gosshub/auth"
	"gosshub/internal/activity"
	"gosshub/internal/comment"
	"gosshub/internal/directory"
	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/revision"
	"gosshub/internal/tag"
	"gosshub/internal/watch"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenRevoker records logged out token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Service defines the interface for user business logic
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	Search(ctx context.Context, query string) ([]PublicUser, error)
	Update(ctx context.Context, actor *domain.User, targetID uint64, update UpdateUser) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User) error
}

// DefaultService implements Service
type DefaultService struct {
	db     *gorm.DB
	issuer *auth.Issuer
	tokens TokenRevoker
}

// NewService creates a new user service
func NewService(db *gorm.DB, issuer *auth.Issuer, tokens TokenRevoker) Service {
	return &DefaultService{db: db, issuer: issuer, tokens: tokens}
}

// Register stores the account and its audit entry in one transaction. A
// taken username or email is a Conflict.
func (s *DefaultService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < 3 || len(username) > 40 {
		return nil, errors.BadRequest("Username value must be between 3 and 40 characters long.", nil)
	}
	email := strings.TrimSpace(input.Email)
	if !strings.Contains(email, "@") {
		return nil, errors.BadRequest("Email has an invalid format.", nil)
	}
	if input.Password == "" {
		return nil, errors.BadRequest("Password value missing.", nil)
	}
	if input.Password != input.RepeatPassword {
		return nil, errors.BadRequest("Password does not match repeat password.", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.BadRequest("Password cannot be used.", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, user); err != nil {
			return err
		}
		return activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:        fmt.Sprintf("User %s created.", user.Username),
			InitiatorID: &user.ID,
			Visibility:  domain.VisibilityAdmin,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and issues an access token
func (s *DefaultService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := NewRepository(s.db).FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return "", nil, errors.Unauthorized("Username or password incorrect.", err)
	}

	token, _, err := s.issuer.GenerateJWT(user.ID)
	if err != nil {
		return "", nil, errors.Internal(err)
	}
	return token, user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *DefaultService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return errors.Unauthorized("Not authorized to access this API.", nil)
	}
	ttl := s.issuer.TTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*domain.User, error) {
	return NewRepository(s.db).FindByID(ctx, id)
}

func (s *DefaultService) Search(ctx context.Context, query string) ([]PublicUser, error) {
	users, err := NewRepository(s.db).Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.NotFound("No matching user found.", nil)
	}
	return users, nil
}

// Update applies an explicit update command. Users edit themselves; admins
// may edit anyone and are the only ones allowed to touch IsAdmin.
func (s *DefaultService) Update(ctx context.Context, actor *domain.User, targetID uint64, update UpdateUser) (*domain.User, error) {
	if actor == nil {
		return nil, errors.Unauthorized("Not authorized to access this API.", nil)
	}
	if targetID != actor.ID && !actor.IsAdmin {
		return nil, errors.Unauthorized("Not authorized to edit this user.", nil)
	}
	if update.IsAdmin != nil && !actor.IsAdmin {
		return nil, errors.Unauthorized("Only admins may change admin rights.", nil)
	}

	fields := map[string]any{}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return nil, errors.BadRequest("Email value missing.", nil)
		}
		fields["email"] = email
	}
	if update.Password != nil {
		if *update.Password == "" {
			return nil, errors.BadRequest("Password value missing.", nil)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.BadRequest("Password cannot be used.", err)
		}
		fields["password_hash"] = string(hashed)
	}
	if update.IsAdmin != nil {
		fields["is_admin"] = *update.IsAdmin
	}
	if len(fields) == 0 {
		return nil, errors.BadRequest("Nothing to update.", nil)
	}

	var updated *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		target, err := repo.FindByID(ctx, targetID)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, target.ID, fields); err != nil {
			return err
		}
		if err := activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:           fmt.Sprintf("User %s edited.", target.Username),
			InitiatorID:    &actor.ID,
			AffectedUserID: &target.ID,
			Visibility:     domain.VisibilityAdmin,
		}); err != nil {
			return err
		}
		updated, err = repo.FindByID(ctx, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the actor's account. Authored content survives with its
// author reference nulled, watches go with the account. Every step runs in
// one transaction, in dependency order.
func (s *DefaultService) Delete(ctx context.Context, actor *domain.User) error {
	if actor == nil {
		return errors.Unauthorized("Not authorized to access this API.", nil)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func() error{
			func() error { return revision.NewRepository(tx).DetachAuthor(ctx, actor.ID) },
			func() error { return comment.NewRepository(tx).DetachAuthor(ctx, actor.ID) },
			func() error { return tag.NewRepository(tx).DetachCreator(ctx, actor.ID) },
			func() error { return directory.NewRepository(tx).DetachCreator(ctx, actor.ID) },
			func() error { return activity.NewRepository(tx).DetachUser(ctx, actor.ID) },
			func() error { return watch.NewRepository(tx).RemoveAllForUser(ctx, actor.ID) },
			func() error { return NewRepository(tx).Delete(ctx, actor.ID) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return activity.NewRepository(tx).Append(ctx, activity.Entry{
			Body:       fmt.Sprintf("User %s deleted.", actor.Username),
			Visibility: domain.VisibilityAdmin,
		})
	})
}
