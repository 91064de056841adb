package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/event"
)

var NowFunc = time.Now // mockable

const eventColumns = `id, title, description, type, date, start_time, end_time, location, subject,
	is_public, color, reminder_minutes, created_by, created_at, updated_at`

type eventRow struct {
	ID              string      `db:"id"`
	Title           string      `db:"title"`
	Description     null.String `db:"description"`
	Type            string      `db:"type"`
	Date            time.Time   `db:"date"`
	StartTime       string      `db:"start_time"`
	EndTime         string      `db:"end_time"`
	Location        null.String `db:"location"`
	Subject         null.String `db:"subject"`
	IsPublic        bool        `db:"is_public"`
	Color           string      `db:"color"`
	ReminderMinutes int         `db:"reminder_minutes"`
	CreatedBy       string      `db:"created_by"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       null.Time   `db:"updated_at"`
}

type eventRepository struct {
	db    *sqlx.DB
	codec event.Codec
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB, conf *core.Config) event.Repository {
	return &eventRepository{db: db, codec: event.NewCodec(conf.Calendar.Location())}
}

func (repo *eventRepository) toRow(ev event.Event) eventRow {
	doc := repo.codec.Encode(ev)
	return eventRow{
		ID:              doc.ID,
		Title:           doc.Title,
		Description:     null.NewString(doc.Description, doc.Description != ""),
		Type:            doc.Type,
		Date:            doc.Date,
		StartTime:       doc.StartTime,
		EndTime:         doc.EndTime,
		Location:        null.NewString(doc.Location, doc.Location != ""),
		Subject:         null.NewString(doc.Subject, doc.Subject != ""),
		IsPublic:        doc.IsPublic,
		Color:           doc.Color,
		ReminderMinutes: doc.ReminderMinutes,
		CreatedBy:       doc.CreatedBy,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       null.NewTime(doc.UpdatedAt, !ev.UpdatedAt.IsZero()),
	}
}

func (repo *eventRepository) fromRow(row eventRow) event.Event {
	return repo.codec.Decode(event.Document{
		ID:              row.ID,
		Title:           row.Title,
		Description:     row.Description.String,
		Type:            row.Type,
		Date:            row.Date,
		StartTime:       strings.TrimSpace(row.StartTime),
		EndTime:         strings.TrimSpace(row.EndTime),
		Location:        row.Location.String,
		Subject:         row.Subject.String,
		IsPublic:        row.IsPublic,
		Color:           row.Color,
		ReminderMinutes: row.ReminderMinutes,
		CreatedBy:       row.CreatedBy,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt.Time,
	})
}

// trapNoRowsErr maps psql "no rows" err to event.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return event.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func now() time.Time {
	// postgres keeps microseconds
	return NowFunc().UTC().Truncate(time.Microsecond)
}

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	ev.ID = uuid.New().String()
	ev.CreatedAt = now()
	ev.UpdatedAt = ev.CreatedAt

	q := `INSERT INTO events (` + eventColumns + `) VALUES (
		:id, :title, :description, :type, :date, :start_time, :end_time, :location, :subject,
		:is_public, :color, :reminder_minutes, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.toRow(ev)); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return repo.GetEvent(ctx, ev.ID)
}

// where builds the conditions of filter with bindvars in the "?" form.
func (repo *eventRepository) where(filter event.QueryFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	from, to := repo.codec.EncodeRange(filter)
	if !from.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, to)
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.IsPublic != nil {
		conds = append(conds, "is_public = ?")
		args = append(args, *filter.IsPublic)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error) {
	where, args := repo.where(filter)
	q := repo.db.Rebind(`SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY date, start_time, id`)

	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}

	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, repo.fromRow(row))
	}
	return events, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return event.Event{}, event.ErrNotFound
	}

	var row eventRow
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return event.Event{}, trapNoRowsErr(err, "finding event by ID")
	}
	return repo.fromRow(row), nil
}

// UpdateEvent never writes the author or the creation time.
func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if _, err := uuid.Parse(ev.ID); err != nil {
		return event.Event{}, event.ErrNotFound
	}
	ev.UpdatedAt = now()

	q := `UPDATE events SET
		title = :title, description = :description, type = :type, date = :date,
		start_time = :start_time, end_time = :end_time, location = :location, subject = :subject,
		is_public = :is_public, color = :color, reminder_minutes = :reminder_minutes,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.toRow(ev))
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return repo.GetEvent(ctx, ev.ID)
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return nil
}
