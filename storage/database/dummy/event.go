package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/event"
)

var NowFunc = time.Now // mockable

type eventRepository struct {
	db    *eventTable
	codec event.Codec
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB, conf *core.Config) event.Repository {
	return &eventRepository{db: db.event, codec: event.NewCodec(conf.Calendar.Location())}
}

func (repo *eventRepository) query(filter event.QueryFilter) []event.Event {
	events := make([]event.Event, 0, len(repo.db.table))
	for _, doc := range repo.db.table {
		if ev := repo.codec.Decode(*doc); filter.Match(ev) {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool { return event.Less(events[i], events[j]) })
	return events
}

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	now := NowFunc().UTC()
	ev.ID = uuid.New().String()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	doc := repo.codec.Encode(ev)
	repo.db.table[ev.ID] = &doc
	return repo.codec.Decode(doc), nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(filter), nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.table[id]; ok {
		return repo.codec.Decode(*doc), nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[ev.ID]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	// author and creation time are kept from the stored document
	doc := repo.codec.Encode(ev)
	doc.CreatedBy = orig.CreatedBy
	doc.CreatedAt = orig.CreatedAt
	doc.UpdatedAt = NowFunc().UTC()

	repo.db.table[ev.ID] = &doc
	return repo.codec.Decode(doc), nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, id)
	return nil
}
