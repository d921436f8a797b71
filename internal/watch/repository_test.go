package watch

import (
	"context"
	"testing"
	"time"

	"gosshub/internal/dbtest"
	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDocument(t *testing.T, db *gorm.DB, publicID string) *domain.Document {
	t.Helper()
	doc := &domain.Document{PublicID: publicID, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func TestSubscribe_Idempotent(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	alice := dbtest.CreateUser(t, db, "alice", false)
	doc := newDocument(t, db, "doc-a")

	created, err := repo.Subscribe(context.Background(), alice.ID, doc.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Subscribe(context.Background(), alice.ID, doc.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&domain.Watch{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUnsubscribe(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	alice := dbtest.CreateUser(t, db, "alice", false)
	doc := newDocument(t, db, "doc-a")

	_, err := repo.Subscribe(context.Background(), alice.ID, doc.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Unsubscribe(context.Background(), alice.ID, doc.ID))

	err = repo.Unsubscribe(context.Background(), alice.ID, doc.ID)
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestWatchersExcept(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	alice := dbtest.CreateUser(t, db, "alice", false)
	bob := dbtest.CreateUser(t, db, "bob", false)
	carol := dbtest.CreateUser(t, db, "carol", false)
	doc := newDocument(t, db, "doc-a")
	other := newDocument(t, db, "doc-b")

	ctx := context.Background()
	for _, u := range []*domain.User{alice, bob} {
		_, err := repo.Subscribe(ctx, u.ID, doc.ID)
		require.NoError(t, err)
	}
	_, err := repo.Subscribe(ctx, carol.ID, other.ID)
	require.NoError(t, err)

	users, err := repo.WatchersExcept(ctx, doc.ID, &bob.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	users, err = repo.WatchersExcept(ctx, doc.ID, nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	names, err := repo.Watchers(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestRemoveAllForUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	alice := dbtest.CreateUser(t, db, "alice", false)
	bob := dbtest.CreateUser(t, db, "bob", false)
	a := newDocument(t, db, "doc-a")
	b := newDocument(t, db, "doc-b")

	ctx := context.Background()
	for _, doc := range []*domain.Document{a, b} {
		_, err := repo.Subscribe(ctx, alice.ID, doc.ID)
		require.NoError(t, err)
	}
	_, err := repo.Subscribe(ctx, bob.ID, a.ID)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveAllForUser(ctx, alice.ID))

	names, err := repo.Watchers(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names)
}

func TestService_RequiresActorAndDocument(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	alice := dbtest.CreateUser(t, db, "alice", false)
	doc := newDocument(t, db, "doc-a")

	_, err := svc.Subscribe(context.Background(), nil, doc.PublicID)
	assert.True(t, errors.Is(err, errors.KindUnauthorized))

	_, err = svc.Subscribe(context.Background(), alice, "missing")
	assert.True(t, errors.Is(err, errors.KindNotFound))

	created, err := svc.Subscribe(context.Background(), alice, doc.PublicID)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.Unsubscribe(context.Background(), alice, doc.PublicID))
}
