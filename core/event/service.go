package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
)

var (
	// errors
	ErrNotFound      = errors.New("event not found")
	ErrAuthorMissing = errors.New("an event must have an author")

	NowFunc = time.Now // mockable
)

type (
	// Repository is a document collection of events keyed by id.
	// Implementations assign ids and timestamps, return events ordered with Less,
	// and never write CreatedBy or CreatedAt on update.
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		// QueryEvents applies AND operation on available QueryFilter fields.
		QueryEvents(ctx context.Context, filter QueryFilter) ([]Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		UpdateEvent(ctx context.Context, ev Event) (Event, error)
		// DeleteEvent does not fail when no event has the given id.
		DeleteEvent(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, d Draft, authorID string) (Event, error)
		List(ctx context.Context) ([]Event, error)
		ListByDateRange(ctx context.Context, from, to calendar.Date) ([]Event, error)
		ListByAuthor(ctx context.Context, authorID string) ([]Event, error)
		ListByType(ctx context.Context, t Type) ([]Event, error)
		ListPublic(ctx context.Context) ([]Event, error)
		ListUpcoming(ctx context.Context, from calendar.Date, days int) ([]Event, error)
		Get(ctx context.Context, id string) (Event, error)
		Update(ctx context.Context, id string, p Patch) (Event, error)
		Delete(ctx context.Context, id string) error
		Validator() *core.Validator
		Location() *time.Location
		Today() calendar.Date
	}

	Service struct {
		repo      Repository
		validator *core.Validator
		loc       *time.Location
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, v *core.Validator, conf *core.Config) *Service {
	return &Service{repo: repo, validator: v, loc: conf.Calendar.Location()}
}

func (svc *Service) Validator() *core.Validator { return svc.validator }
func (svc *Service) Location() *time.Location   { return svc.loc }

func (svc *Service) Today() calendar.Date {
	return calendar.Today(NowFunc(), svc.loc)
}

// storeErr keeps ErrNotFound and turns anything else into a retryable core.PersistenceError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if core.IsPersistence(err) {
		return err
	}
	return core.NewPersistenceError(op, err)
}

func nonNil(evs []Event) []Event {
	if evs == nil {
		return []Event{}
	}
	return evs
}

// Create validates d and stores it as authored by authorID.
func (svc *Service) Create(ctx context.Context, d Draft, authorID string) (Event, error) {
	if authorID == "" {
		return Event{}, core.NewValidationError(ErrAuthorMissing)
	}
	d.Clean()
	if res := d.Validate(svc.validator, svc.Today(), false); !res.Valid {
		return Event{}, res.Err()
	}

	ev, err := svc.repo.CreateEvent(ctx, Event{Draft: d, CreatedBy: authorID})
	if err != nil {
		return Event{}, storeErr("create event", err)
	}
	return ev, nil
}

func (svc *Service) query(ctx context.Context, op string, filter QueryFilter) ([]Event, error) {
	evs, err := svc.repo.QueryEvents(ctx, filter)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return nonNil(evs), nil
}

func (svc *Service) List(ctx context.Context) ([]Event, error) {
	return svc.query(ctx, "list events", QueryFilter{})
}

// ListByDateRange returns the events dated between from and to, both inclusive.
func (svc *Service) ListByDateRange(ctx context.Context, from, to calendar.Date) ([]Event, error) {
	return svc.query(ctx, "list events by date range", QueryFilter{From: &from, To: &to})
}

func (svc *Service) ListByAuthor(ctx context.Context, authorID string) ([]Event, error) {
	if authorID == "" {
		return []Event{}, nil
	}
	return svc.query(ctx, "list events by author", QueryFilter{CreatedBy: authorID})
}

func (svc *Service) ListByType(ctx context.Context, t Type) ([]Event, error) {
	if !t.Valid() {
		return []Event{}, nil
	}
	return svc.query(ctx, "list events by type", QueryFilter{Type: t})
}

func (svc *Service) ListPublic(ctx context.Context) ([]Event, error) {
	public := true
	return svc.query(ctx, "list public events", QueryFilter{IsPublic: &public})
}

// ListUpcoming returns the events dated from `from` up to `days` days later.
func (svc *Service) ListUpcoming(ctx context.Context, from calendar.Date, days int) ([]Event, error) {
	if days < 0 {
		days = 0
	}
	return svc.ListByDateRange(ctx, from, from.AddDays(days))
}

func (svc *Service) Get(ctx context.Context, id string) (Event, error) {
	if id == "" {
		return Event{}, ErrNotFound
	}
	ev, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, storeErr("get event", err)
	}
	return ev, nil
}

// Update merges p onto the stored event and validates the result as an edit.
func (svc *Service) Update(ctx context.Context, id string, p Patch) (Event, error) {
	current, err := svc.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}

	d := p.Apply(current.Draft)
	d.Clean()
	if res := d.Validate(svc.validator, svc.Today(), true); !res.Valid {
		return Event{}, res.Err()
	}

	next := current
	next.Draft = d
	ev, err := svc.repo.UpdateEvent(ctx, next)
	if err != nil {
		return Event{}, storeErr("update event", err)
	}
	return ev, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := svc.repo.DeleteEvent(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return storeErr("delete event", err)
	}
	return nil
}
