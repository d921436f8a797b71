package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gosshub/internal/dbtest"
	"gosshub/internal/domain"
	"gosshub/internal/watch"
	"gosshub/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu      sync.Mutex
	intents []Intent
	err     error
}

func (r *recorder) Notify(ctx context.Context, intent Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intent)
	return r.err
}

func (r *recorder) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.intents))
	for _, i := range r.intents {
		names = append(names, i.Username)
	}
	return names
}

func watchedDocument(t *testing.T, db *gorm.DB, watchers ...*domain.User) *domain.Document {
	t.Helper()
	doc := &domain.Document{PublicID: "doc-a", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(doc).Error)
	for _, u := range watchers {
		_, err := watch.NewRepository(db).Subscribe(context.Background(), u.ID, doc.ID)
		require.NoError(t, err)
	}
	return doc
}

func TestFanout_ExcludesActor(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	bob := dbtest.CreateUser(t, db, "bob", false)
	doc := watchedDocument(t, db, alice, bob)

	rec := &recorder{}
	d := NewDispatcher(db, rec, nil)

	intents, err := d.Fanout(context.Background(), Event{
		Kind:       KindRevision,
		DocumentID: doc.ID,
		PublicID:   doc.PublicID,
		ActorID:    &bob.ID,
		ActorName:  "bob",
	})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, alice.ID, intents[0].UserID)
	assert.Equal(t, "alice@example.com", intents[0].Email)
	assert.Equal(t, []string{"alice"}, rec.recipients())
}

func TestFanout_NoWatchers(t *testing.T) {
	db := dbtest.Open(t)
	doc := watchedDocument(t, db)

	rec := &recorder{}
	intents, err := NewDispatcher(db, rec, nil).Fanout(context.Background(), Event{DocumentID: doc.ID})
	require.NoError(t, err)
	assert.Empty(t, intents)
	assert.Empty(t, rec.recipients())
}

func TestFanout_DeliveryFailureIsSwallowed(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	doc := watchedDocument(t, db, alice)

	rec := &recorder{err: errors.New("smtp down")}
	intents, err := NewDispatcher(db, rec, nil).Fanout(context.Background(), Event{DocumentID: doc.ID})
	require.NoError(t, err)
	assert.Len(t, intents, 1)
}

func TestFanout_OnWorkerPool(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.CreateUser(t, db, "alice", false)
	bob := dbtest.CreateUser(t, db, "bob", false)
	doc := watchedDocument(t, db, alice, bob)

	rec := &recorder{}
	pool := worker.NewWorkerPool(2)
	d := NewDispatcher(db, rec, pool)

	intents, err := d.Fanout(context.Background(), Event{Kind: KindComment, DocumentID: doc.ID})
	require.NoError(t, err)
	assert.Len(t, intents, 2)

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.ElementsMatch(t, []string{"alice", "bob"}, rec.recipients())
}

func TestEventSubject(t *testing.T) {
	ev := Event{Kind: KindComment, PublicID: "abc", ActorName: "bob"}
	assert.Equal(t, "bob commented on document abc", ev.Subject())

	ev.Kind = KindRevision
	assert.Equal(t, "bob updated document abc", ev.Subject())
}
