package main

import (
	"context"

	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/user"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	seedAdminUsername = "admin"
	seedAdminPassword = "password123"
)

// seedAdmin makes sure a development admin account exists.
func seedAdmin(ctx context.Context, gdb *gorm.DB) error {
	repo := user.NewRepository(gdb)
	if _, err := repo.FindByUsername(ctx, seedAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, errors.KindNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = repo.Create(ctx, &domain.User{
		Username:     seedAdminUsername,
		Email:        "admin@gosshub.local",
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
	if err != nil {
		return err
	}

	log.Info().Str("username", seedAdminUsername).Msg("seeded development admin")
	return nil
}
