package document

import (
	"context"
	"testing"
	"time"

	"gosshub/internal/dbtest"
	"gosshub/internal/domain"
	"gosshub/internal/errors"
	"gosshub/internal/notify"
	"gosshub/internal/tag"
	"gosshub/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	intents []notify.Intent
}

func (r *recordingNotifier) Notify(ctx context.Context, intent notify.Intent) error {
	r.intents = append(r.intents, intent)
	return nil
}

// clock advances one second per call so revisions never share a timestamp.
func clock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(t *testing.T) (*gorm.DB, *DefaultService, *recordingNotifier) {
	t.Helper()
	db := dbtest.Open(t)
	rec := &recordingNotifier{}
	svc := NewService(db, notify.NewDispatcher(db, rec, nil)).(*DefaultService)
	svc.now = clock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return db, svc, rec
}

func TestCreateAndRevise(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateInput{Body: "v1", Tags: []string{"Go Lang", "x"}})
	require.NoError(t, err)
	assert.Len(t, created.PublicID, 22)
	assert.Equal(t, []string{"go-lang"}, created.Latest.Tags)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "alice", *created.CreatedBy)

	_, err = svc.AddRevision(ctx, alice, created.PublicID, RevisionInput{Body: "v2", Tags: []string{"databases"}})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, created.PublicID)
	require.NoError(t, err)
	require.Len(t, detail.Revisions, 2)
	assert.Equal(t, "v2", detail.Revisions[0].Body)
	assert.Equal(t, "v1", detail.Revisions[1].Body)
	assert.Equal(t, []string{"databases"}, detail.Revisions[0].Tags)
	assert.Equal(t, []string{"go-lang"}, detail.Revisions[1].Tags)
	assert.Empty(t, detail.Comments)
	assert.Empty(t, detail.Watchers)

	list, err := svc.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "v2", list.Data[0].Latest.Body)
	assert.Equal(t, []string{"databases"}, list.Data[0].Latest.Tags)

	found, err := tag.NewRepository(db).FindByName(ctx, "go-lang")
	require.NoError(t, err)
	assert.Equal(t, "go-lang", found.Name)

	var tags int64
	require.NoError(t, db.Model(&domain.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 2, tags)
}

func TestCreate_Validation(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, CreateInput{Body: "v1"})
	assert.True(t, errors.Is(err, errors.KindUnauthorized))

	_, err = svc.Create(ctx, alice, CreateInput{Body: "  "})
	assert.True(t, errors.Is(err, errors.KindBadRequest))

	_, err = svc.Create(ctx, alice, CreateInput{Body: "v1", Tags: []string{"aa", "bb", "cc", "dd"}})
	assert.True(t, errors.Is(err, errors.KindBadRequest))

	var docs int64
	require.NoError(t, db.Model(&domain.Document{}).Count(&docs).Error)
	assert.Zero(t, docs)
}

func TestAddRevision_UnboundedTags(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateInput{Body: "v1"})
	require.NoError(t, err)

	rev, err := svc.AddRevision(ctx, alice, created.PublicID, RevisionInput{
		Body: "v2",
		Tags: []string{"aa", "bb", "cc", "dd", "ee"},
	})
	require.NoError(t, err)
	assert.Len(t, rev.Tags, 5)
}

func TestAddRevision_DuplicateFingerprintConflicts(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateInput{Body: "v1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	_, err = svc.AddRevision(ctx, alice, created.PublicID, RevisionInput{Body: "same", Tags: []string{"fresh"}})
	require.NoError(t, err)
	_, err = svc.AddRevision(ctx, alice, created.PublicID, RevisionInput{Body: "same", Tags: []string{"other"}})
	assert.True(t, errors.Is(err, errors.KindConflict))

	// tags of the rejected revision are never created
	_, err = tag.NewRepository(db).FindByName(ctx, "other")
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestAddRevision_NotifiesWatchersExceptActor(t *testing.T) {
	db, svc, rec := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	bob := dbtest.CreateUser(t, db, "bob", false)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateInput{Body: "v1"})
	require.NoError(t, err)

	watches := watch.NewRepository(db)
	for _, u := range []*domain.User{alice, bob} {
		_, err := watches.Subscribe(ctx, u.ID, created.ID)
		require.NoError(t, err)
	}

	_, err = svc.AddRevision(ctx, bob, created.PublicID, RevisionInput{Body: "v2"})
	require.NoError(t, err)

	require.Len(t, rec.intents, 1)
	assert.Equal(t, alice.ID, rec.intents[0].UserID)
	assert.Equal(t, notify.KindRevision, rec.intents[0].Event.Kind)
	assert.Equal(t, created.PublicID, rec.intents[0].Event.PublicID)

	detail, err := svc.Get(ctx, created.PublicID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, detail.Watchers)
}

func TestAddRevision_UnknownDocument(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)

	_, err := svc.AddRevision(context.Background(), alice, "missing", RevisionInput{Body: "v1"})
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestList_Search(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	ctx := context.Background()

	a, err := svc.Create(ctx, alice, CreateInput{Body: "Needle in v1"})
	require.NoError(t, err)
	_, err = svc.AddRevision(ctx, alice, a.PublicID, RevisionInput{Body: "gone in v2"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, CreateInput{Body: "a NEEDLE here"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "needle", 0)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "a NEEDLE here", list.Data[0].Latest.Body)
	assert.Equal(t, 1, list.Meta.CurrentPage)
}

func TestUpdate_Permissions(t *testing.T) {
	db, svc, _ := newTestService(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	bob := dbtest.CreateUser(t, db, "bob", false)
	root := dbtest.CreateUser(t, db, "root", true)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateInput{Body: "v1"})
	require.NoError(t, err)

	yes, no := true, false
	err = svc.Update(ctx, bob, created.PublicID, UpdateInput{Archived: &yes})
	assert.True(t, errors.Is(err, errors.KindUnauthorized))

	require.NoError(t, svc.Update(ctx, alice, created.PublicID, UpdateInput{Archived: &yes}))
	detail, err := svc.Get(ctx, created.PublicID)
	require.NoError(t, err)
	assert.True(t, detail.Archived)

	// archived documents still show up in listings
	list, err := svc.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)

	require.NoError(t, svc.Update(ctx, root, created.PublicID, UpdateInput{Archived: &no}))

	var entries []domain.ActivityEntry
	require.NoError(t, db.Where("visibility = ?", domain.VisibilityAdmin).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Body, "archived by alice")
	assert.Contains(t, entries[1].Body, "unarchived by root")
}
