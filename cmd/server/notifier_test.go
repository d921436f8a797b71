package main

import (
	"testing"

	"gosshub/internal/config"
	"gosshub/internal/dbtest"
	"gosshub/internal/domain"
	"gosshub/internal/notify"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n, err := newNotifier(config.NotifyConfig{Backend: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, notify.LogNotifier{}, n)

	n, err = newNotifier(config.NotifyConfig{Backend: "redis", QueueKey: "q"}, rdb)
	require.NoError(t, err)
	assert.IsType(t, &notify.QueueNotifier{}, n)

	_, err = newNotifier(config.NotifyConfig{Backend: "redis"}, nil)
	assert.Error(t, err)

	n, err = newNotifier(config.NotifyConfig{Backend: "mailgun", MailgunURL: "http://mail", MailgunKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &notify.MailgunNotifier{}, n)

	_, err = newNotifier(config.NotifyConfig{Backend: "mailgun"}, nil)
	assert.Error(t, err)

	_, err = newNotifier(config.NotifyConfig{Backend: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	gdb := dbtest.Open(t)
	ctx := t.Context()

	require.NoError(t, seedAdmin(ctx, gdb))
	require.NoError(t, seedAdmin(ctx, gdb))

	var admins []domain.User
	require.NoError(t, gdb.Where("is_admin = ?", true).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, seedAdminUsername, admins[0].Username)
}
