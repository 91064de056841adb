package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
	"github.com/trezcool/agenda/core/event"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
)

var ErrStoreDown = errors.New("store unavailable")

// Conf returns a test configuration. Calendars run in a fixed non-UTC timezone.
func Conf() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Agenda",
		Calendar: core.CalendarConfig{
			Timezone:         "America/Bogota",
			MaxEventsPerCell: 3,
			UpcomingDays:     30,
			UpcomingLimit:    5,
		},
		Session: core.SessionConfig{
			IdleTimeout: 2 * time.Hour,
			SweepSpec:   "@every 5m",
		},
	}
}

// Logger records log messages by level.
type Logger struct {
	mu      sync.Mutex
	entries map[string][]string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{entries: make(map[string][]string)}
}

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[level] = append(l.entries[level], msg)
}

// Entries returns the messages logged at level.
func (l *Logger) Entries(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries[level]...)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("debug", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("info", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("warn", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("error", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("fatal", msg) }

// FixNow pins event.NowFunc to at until the test ends.
func FixNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := event.NowFunc
	event.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { event.NowFunc = orig })
}

func NewRepository(t *testing.T, conf *core.Config) event.Repository {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return dummydb.NewEventRepository(db, conf)
}

func CreateEvent(
	t *testing.T,
	repo event.Repository,
	title string,
	date calendar.Date,
	createdBy string,
	isPublic bool,
	times ...event.Clock,
) event.Event {
	t.Helper()
	start, end := event.NewClock(9, 0), event.NewClock(10, 0)
	if len(times) == 2 {
		start, end = times[0], times[1]
	}
	d := event.Draft{
		Title:     title,
		Type:      event.TypeClass,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		IsPublic:  isPublic,
	}
	d.Clean()
	ev, err := repo.CreateEvent(context.Background(), event.Event{Draft: d, CreatedBy: createdBy})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return ev
}

// FaultyRepository wraps a repository to count calls, inject failures and hold calls in flight.
type FaultyRepository struct {
	event.Repository

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
	gate  chan struct{}
}

var _ event.Repository = (*FaultyRepository)(nil)

func NewFaultyRepository(repo event.Repository) *FaultyRepository {
	return &FaultyRepository{
		Repository: repo,
		calls:      make(map[string]int),
		fail:       make(map[string]error),
	}
}

// Fail makes the named operation return err. A nil err heals it.
func (r *FaultyRepository) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

// Hold blocks every following call until the returned release func is called.
func (r *FaultyRepository) Hold() (release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := make(chan struct{})
	r.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.gate = nil
			r.mu.Unlock()
			close(gate)
		})
	}
}

func (r *FaultyRepository) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *FaultyRepository) TotalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *FaultyRepository) enter(ctx context.Context, op string) error {
	r.mu.Lock()
	r.calls[op]++
	err := r.fail[op]
	gate := r.gate
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *FaultyRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if err := r.enter(ctx, "create"); err != nil {
		return event.Event{}, err
	}
	return r.Repository.CreateEvent(ctx, ev)
}

func (r *FaultyRepository) QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error) {
	if err := r.enter(ctx, "query"); err != nil {
		return nil, err
	}
	return r.Repository.QueryEvents(ctx, filter)
}

func (r *FaultyRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if err := r.enter(ctx, "get"); err != nil {
		return event.Event{}, err
	}
	return r.Repository.GetEvent(ctx, id)
}

func (r *FaultyRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if err := r.enter(ctx, "update"); err != nil {
		return event.Event{}, err
	}
	return r.Repository.UpdateEvent(ctx, ev)
}

func (r *FaultyRepository) DeleteEvent(ctx context.Context, id string) error {
	if err := r.enter(ctx, "delete"); err != nil {
		return err
	}
	return r.Repository.DeleteEvent(ctx, id)
}
