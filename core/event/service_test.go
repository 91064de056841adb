package event_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/tests"
)

// 2025-08-01 10:00 in Bogota
var now = time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*event.Service, *testutil.FaultyRepository) {
	testutil.FixNow(t, now)
	conf := testutil.Conf()
	repo := testutil.NewFaultyRepository(testutil.NewRepository(t, conf))
	return event.NewService(repo, event.NewValidator(), conf), repo
}

func examDraft() event.Draft {
	return event.Draft{
		Title:     "Exam",
		Type:      event.TypeExam,
		Date:      calendar.NewDate(2025, 8, 11),
		StartTime: "09:00",
		EndTime:   "10:00",
		IsPublic:  true,
	}
}

func TestService_Create(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	ev, err := svc.Create(ctx, examDraft(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "u1", ev.CreatedBy)
	assert.Equal(t, "#EF4444", ev.Color)
	assert.Equal(t, event.DefaultReminder, ev.ReminderMinutes)
	assert.False(t, ev.CreatedAt.IsZero())
	assert.Equal(t, 1, repo.Calls("create"))

	got, err := svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestService_CreateInvalidNeverReachesStore(t *testing.T) {
	svc, repo := setup(t)

	d := examDraft()
	d.EndTime = "08:00"
	_, err := svc.Create(context.Background(), d, "u1")

	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.FieldMap(), "endTime")
	assert.Zero(t, repo.TotalCalls())

	_, err = svc.Create(context.Background(), examDraft(), "")
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, event.ErrAuthorMissing, vErr.Err)
	assert.Zero(t, repo.TotalCalls())
}

func TestService_UpdateKeepsAuthorAndCreation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	ev, err := svc.Create(ctx, examDraft(), "u1")
	require.NoError(t, err)

	// author keys in a client payload have nowhere to go
	var p event.Patch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Final exam","createdBy":"u2","createdAt":"2000-01-01T00:00:00Z"}`), &p))

	testutil.FixNow(t, now.Add(time.Hour))
	updated, err := svc.Update(ctx, ev.ID, p)
	require.NoError(t, err)
	assert.Equal(t, "Final exam", updated.Title)
	assert.Equal(t, "u1", updated.CreatedBy)
	assert.Equal(t, ev.CreatedAt, updated.CreatedAt)
	assert.Equal(t, ev.ID, updated.ID)
}

func TestService_UpdateValidatesAsEdit(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	ev, err := svc.Create(ctx, examDraft(), "u1")
	require.NoError(t, err)

	// the event is now in the past, edits may keep its date
	testutil.FixNow(t, now.AddDate(0, 1, 0))
	title := "Retake"
	updated, err := svc.Update(ctx, ev.ID, event.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, ev.Date, updated.Date)

	end := event.Clock("08:00")
	updates := repo.Calls("update")
	_, err = svc.Update(ctx, ev.ID, event.Patch{EndTime: &end})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, updates, repo.Calls("update"))

	_, err = svc.Update(ctx, "missing", event.Patch{Title: &title})
	assert.Equal(t, event.ErrNotFound, err)
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	ev, err := svc.Create(ctx, examDraft(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ev.ID))
	require.NoError(t, svc.Delete(ctx, ev.ID))

	_, err = svc.Get(ctx, ev.ID)
	assert.Equal(t, event.ErrNotFound, err)
}

func TestService_Lists(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	mk := func(title string, typ event.Type, date calendar.Date, author string, public bool) event.Event {
		d := examDraft()
		d.Title, d.Type, d.Date, d.IsPublic = title, typ, date, public
		ev, err := svc.Create(ctx, d, author)
		require.NoError(t, err)
		return ev
	}
	sept := mk("sept", event.TypeMeeting, calendar.NewDate(2025, 9, 20), "u2", true)
	exam := mk("exam", event.TypeExam, calendar.NewDate(2025, 8, 11), "u1", true)
	private := mk("private", event.TypeClass, calendar.NewDate(2025, 8, 2), "u1", false)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []event.Event{private, exam, sept}, all)

	inRange, err := svc.ListByDateRange(ctx, calendar.NewDate(2025, 8, 2), calendar.NewDate(2025, 8, 11))
	require.NoError(t, err)
	assert.Equal(t, []event.Event{private, exam}, inRange)

	byAuthor, err := svc.ListByAuthor(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []event.Event{sept}, byAuthor)

	byType, err := svc.ListByType(ctx, event.TypeExam)
	require.NoError(t, err)
	assert.Equal(t, []event.Event{exam}, byType)

	unknown, err := svc.ListByType(ctx, "party")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, []event.Event{exam, sept}, public)

	upcoming, err := svc.ListUpcoming(ctx, svc.Today(), 30)
	require.NoError(t, err)
	assert.Equal(t, []event.Event{private, exam}, upcoming)
}

func TestService_PersistenceErrors(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	ev, err := svc.Create(ctx, examDraft(), "u1")
	require.NoError(t, err)

	for _, op := range []string{"create", "query", "get", "update", "delete"} {
		repo.Fail(op, testutil.ErrStoreDown)
	}

	_, err = svc.Create(ctx, examDraft(), "u1")
	assert.True(t, core.IsPersistence(err))
	assert.Equal(t, "the operation could not be completed, please try again", err.Error())
	assert.True(t, errors.Is(err, testutil.ErrStoreDown))

	_, err = svc.List(ctx)
	assert.True(t, core.IsPersistence(err))

	_, err = svc.Get(ctx, ev.ID)
	assert.True(t, core.IsPersistence(err))

	title := "x"
	_, err = svc.Update(ctx, ev.ID, event.Patch{Title: &title})
	assert.True(t, core.IsPersistence(err))

	assert.True(t, core.IsPersistence(svc.Delete(ctx, ev.ID)))

	repo.Fail("get", event.ErrNotFound)
	_, err = svc.Get(ctx, ev.ID)
	assert.Equal(t, event.ErrNotFound, err)
}
