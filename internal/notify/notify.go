// Package notify turns committed document changes into per-watcher
// deliveries.
package notify

import (
	"context"
	"fmt"

	"gosshub/internal/metrics"
	"gosshub/internal/watch"
	"gosshub/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Kind string

const (
	KindRevision Kind = "revision"
	KindComment  Kind = "comment"
)

// Event describes a change that has already been committed.
type Event struct {
	Kind       Kind    `json:"kind"`
	DocumentID uint64  `json:"-"`
	PublicID   string  `json:"document"`
	ActorID    *uint64 `json:"-"`
	ActorName  string  `json:"actor"`
}

// Subject is a one-line description of the event for message headers.
func (e Event) Subject() string {
	switch e.Kind {
	case KindComment:
		return fmt.Sprintf("%s commented on document %s", e.ActorName, e.PublicID)
	default:
		return fmt.Sprintf("%s updated document %s", e.ActorName, e.PublicID)
	}
}

// Intent is a single pending notification for one watcher.
type Intent struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Event    Event  `json:"event"`
}

type Notifier interface {
	Notify(ctx context.Context, intent Intent) error
}

// Pool runs deliveries in the background.
type Pool interface {
	Submit(task worker.Task) bool
}

type Dispatcher struct {
	db       *gorm.DB
	notifier Notifier
	pool     Pool
}

// NewDispatcher builds a dispatcher. With a nil pool every delivery runs
// inline before Fanout returns.
func NewDispatcher(db *gorm.DB, notifier Notifier, pool Pool) *Dispatcher {
	return &Dispatcher{db: db, notifier: notifier, pool: pool}
}

// Fanout must be called after the triggering transaction committed. It
// emits one intent per watcher other than the actor. Delivery failures are
// logged and counted; only the watcher lookup can fail the call.
func (d *Dispatcher) Fanout(ctx context.Context, ev Event) ([]Intent, error) {
	watchers, err := watch.NewRepository(d.db).WatchersExcept(ctx, ev.DocumentID, ev.ActorID)
	if err != nil {
		return nil, err
	}

	intents := make([]Intent, 0, len(watchers))
	for _, u := range watchers {
		intent := Intent{UserID: u.ID, Username: u.Username, Email: u.Email, Event: ev}
		intents = append(intents, intent)

		if d.pool == nil {
			d.deliver(ctx, intent)
			continue
		}
		if !d.pool.Submit(func(ctx context.Context) error {
			d.deliver(ctx, intent)
			return nil
		}) {
			metrics.Notifications.WithLabelValues("dropped").Inc()
		}
	}

	return intents, nil
}

func (d *Dispatcher) deliver(ctx context.Context, intent Intent) {
	if err := d.notifier.Notify(ctx, intent); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.Error().Err(err).
			Str("document", intent.Event.PublicID).
			Str("recipient", intent.Username).
			Msg("notification delivery failed")
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
}

// LogNotifier writes intents to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, intent Intent) error {
	log.Info().
		Str("kind", string(intent.Event.Kind)).
		Str("document", intent.Event.PublicID).
		Str("recipient", intent.Username).
		Msg(intent.Event.Subject())
	return nil
}
