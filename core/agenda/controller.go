// Package agenda orchestrates the calendar of one session: the month being viewed,
// the loaded events, the selection and the create/edit form.
package agenda

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/core/user"
)

var (
	// errors
	ErrClosed   = errors.New("calendar closed")
	ErrBusy     = errors.New("another operation is in progress, please wait")
	ErrNoForm   = errors.New("no event form is open")
	ErrInactive = errors.New("session is not active")
)

type Options struct {
	MaxEventsPerCell int
	UpcomingDays     int
	UpcomingLimit    int
}

func NewOptions(conf *core.Config) Options {
	return Options{
		MaxEventsPerCell: conf.Calendar.MaxEventsPerCell,
		UpcomingDays:     conf.Calendar.UpcomingDays,
		UpcomingLimit:    conf.Calendar.UpcomingLimit,
	}
}

// Controller owns the in-memory events of a session. Store calls run without holding
// its lock; operations on the same event are serialized by rejecting overlaps with ErrBusy,
// and Refresh never runs alongside a write.
type Controller struct {
	mu      sync.Mutex
	session *user.Session
	svc     event.ServiceInterface
	logger  core.Logger
	opts    Options

	viewMonth     calendar.Month
	events        []event.Event
	loaded        bool
	selectedDate  calendar.Date
	selectedEvent string
	formMode      FormMode
	form          *event.Form
	submitting    bool
	notice        *Notice

	pending    map[string]bool // ids with a write in flight
	writes     int
	refreshing bool
	closed     bool
}

// NewController binds a controller to a started session; it is closed when the session ends.
func NewController(s *user.Session, svc event.ServiceInterface, logger core.Logger, opts Options) (*Controller, error) {
	if !s.Active() {
		return nil, ErrInactive
	}
	c := &Controller{
		session:   s,
		svc:       svc,
		logger:    logger,
		opts:      opts,
		viewMonth: calendar.MonthOf(svc.Today()),
		events:    []event.Event{},
		pending:   make(map[string]bool),
	}
	s.OnEnd(c.Close)
	return c, nil
}

// Close tears the controller down. Operations still in flight will not apply their results.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.form = nil
	c.formMode = FormNone
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) Session() *user.Session { return c.session }

func (c *Controller) principal() user.Principal {
	return c.session.Principal()
}

// find returns the index of the event with id, or -1. c.mu must be held.
func (c *Controller) find(id string) int {
	for i, ev := range c.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) setNotice(kind string, err error) {
	c.notice = &Notice{Kind: kind, Message: err.Error()}
}

// fail records a store failure for display. c.mu must be held.
func (c *Controller) fail(op string, err error) {
	kind := NoticeError
	if errors.Is(err, event.ErrNotFound) {
		kind = NoticeWarning
		c.logger.Warn(fmt.Sprintf("%s: %v", op, err), c.principal())
	} else {
		c.logger.Error(op, errors.Wrap(err, op), c.principal())
	}
	c.setNotice(kind, err)
}

// Navigate moves the viewed month by delta months. The loaded events are not refetched.
func (c *Controller) Navigate(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.viewMonth = c.viewMonth.AddMonths(delta)
	return nil
}

// GoTo shows month m.
func (c *Controller) GoTo(m calendar.Month) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.viewMonth = m.AddMonths(0)
	return nil
}

// Today shows the current month and selects today.
func (c *Controller) Today() error {
	today := c.svc.Today()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.viewMonth = calendar.MonthOf(today)
	c.selectedDate = today
	return nil
}

func (c *Controller) ViewMonth() calendar.Month {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMonth
}

// eventsOn returns the events dated d, in store order. c.mu must be held.
func (c *Controller) eventsOn(d calendar.Date) []event.Event {
	evs := make([]event.Event, 0)
	for _, ev := range c.events {
		if ev.Date == d {
			evs = append(evs, ev)
		}
	}
	return evs
}

// SelectDate selects d and returns its events.
func (c *Controller) SelectDate(d calendar.Date) ([]event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	c.selectedDate = d
	return c.eventsOn(d), nil
}

func (c *Controller) detail(ev event.Event) Detail {
	p := c.principal()
	info, _ := ev.Type.Info()
	return Detail{
		Event:     ev,
		TypeInfo:  info,
		CanEdit:   event.CanEdit(ev, p.ID, p.Role),
		CanDelete: event.CanDelete(ev, p.ID, p.Role),
	}
}

// SelectEvent opens the detail of a loaded event.
func (c *Controller) SelectEvent(id string) (Detail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Detail{}, ErrClosed
	}
	i := c.find(id)
	if i < 0 {
		c.setNotice(NoticeWarning, event.ErrNotFound)
		return Detail{}, event.ErrNotFound
	}
	c.selectedEvent = id
	return c.detail(c.events[i]), nil
}

func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedEvent = ""
}

// StartCreate opens an empty form, dated on the selected day if any.
func (c *Controller) StartCreate() (FormView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return FormView{}, ErrClosed
	}
	if c.submitting {
		return FormView{}, ErrBusy
	}
	c.form = event.NewCreateForm(c.selectedDate)
	c.formMode = FormCreate
	return c.formView(), nil
}

// StartEdit opens the form on a loaded event. It is rejected with core.ErrForbidden,
// leaving the state unchanged, when the principal may not edit the event.
func (c *Controller) StartEdit(id string) (FormView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return FormView{}, ErrClosed
	}
	i := c.find(id)
	if i < 0 {
		c.setNotice(NoticeWarning, event.ErrNotFound)
		return FormView{}, event.ErrNotFound
	}
	ev := c.events[i]
	p := c.principal()
	if !event.CanEdit(ev, p.ID, p.Role) {
		return FormView{}, core.ErrForbidden
	}
	if c.submitting || c.pending[id] {
		return FormView{}, ErrBusy
	}
	c.form = event.NewEditForm(ev)
	c.formMode = FormEdit
	return c.formView(), nil
}

// formView snapshots the form. c.mu must be held and a form must be open.
func (c *Controller) formView() FormView {
	return FormView{
		Mode:            c.formMode,
		EventID:         c.form.EventID(),
		Draft:           c.form.Draft(),
		Errors:          c.form.Errors(),
		ColorOverridden: c.form.ColorOverridden(),
		Submitting:      c.submitting,
	}
}

func (c *Controller) Form() (FormView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return FormView{}, false
	}
	return c.formView(), true
}

// EditForm applies field changes to the open form.
func (c *Controller) EditForm(p event.Patch) (FormView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return FormView{}, ErrClosed
	}
	if c.form == nil {
		return FormView{}, ErrNoForm
	}
	if c.submitting {
		return FormView{}, ErrBusy
	}
	c.form.Apply(p)
	return c.formView(), nil
}

func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return
	}
	c.form = nil
	c.formMode = FormNone
}

// Submit validates the open form and saves it. Field errors keep the form open and never reach
// the store. On a store failure the events are left untouched, the form stays open for a retry
// and the failure is kept as the notice.
func (c *Controller) Submit(ctx context.Context) (event.Event, error) {
	today := c.svc.Today()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return event.Event{}, ErrClosed
	}
	if c.form == nil {
		c.mu.Unlock()
		return event.Event{}, ErrNoForm
	}
	if c.submitting || c.refreshing {
		c.mu.Unlock()
		return event.Event{}, ErrBusy
	}

	form := c.form
	draft, res := form.Submit(c.svc.Validator(), today)
	if !res.Valid {
		c.mu.Unlock()
		return event.Event{}, res.Err()
	}

	p := c.principal()
	id := form.EventID()
	if form.IsEdit() {
		i := c.find(id)
		if i < 0 {
			c.setNotice(NoticeWarning, event.ErrNotFound)
			c.mu.Unlock()
			return event.Event{}, event.ErrNotFound
		}
		// permissions may have changed since the form was opened
		if !event.CanEdit(c.events[i], p.ID, p.Role) {
			c.mu.Unlock()
			return event.Event{}, core.ErrForbidden
		}
		if c.pending[id] {
			c.mu.Unlock()
			return event.Event{}, ErrBusy
		}
		c.pending[id] = true
	}
	c.submitting = true
	c.writes++
	c.mu.Unlock()

	var ev event.Event
	var err error
	if form.IsEdit() {
		ev, err = c.svc.Update(ctx, id, event.PatchOf(draft))
	} else {
		ev, err = c.svc.Create(ctx, draft, p.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes--
	c.submitting = false
	delete(c.pending, id)
	if c.closed {
		return event.Event{}, ErrClosed
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		return event.Event{}, err
	}
	if err != nil {
		c.fail("saving event", err)
		return event.Event{}, err
	}

	c.merge(ev)
	if c.form == form {
		c.form = nil
		c.formMode = FormNone
	}
	return ev, nil
}

// merge replaces the event with the same id, or adds it, keeping store order. c.mu must be held.
func (c *Controller) merge(ev event.Event) {
	if i := c.find(ev.ID); i >= 0 {
		c.events = append(c.events[:i], c.events[i+1:]...)
	}
	at := len(c.events)
	for i, cur := range c.events {
		if event.Less(ev, cur) {
			at = i
			break
		}
	}
	c.events = append(c.events, event.Event{})
	copy(c.events[at+1:], c.events[at:])
	c.events[at] = ev
}

// Remove deletes a loaded event. It is rejected with core.ErrForbidden when the principal
// may not delete it. On success the event leaves the collection and any view on it is closed.
func (c *Controller) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	i := c.find(id)
	if i < 0 {
		c.setNotice(NoticeWarning, event.ErrNotFound)
		c.mu.Unlock()
		return event.ErrNotFound
	}
	p := c.principal()
	if !event.CanDelete(c.events[i], p.ID, p.Role) {
		c.mu.Unlock()
		return core.ErrForbidden
	}
	if c.pending[id] || c.refreshing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.pending[id] = true
	c.writes++
	c.mu.Unlock()

	err := c.svc.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes--
	delete(c.pending, id)
	if c.closed {
		return ErrClosed
	}
	if err != nil {
		c.fail("deleting event", err)
		return err
	}

	if i := c.find(id); i >= 0 {
		c.events = append(c.events[:i], c.events[i+1:]...)
	}
	if c.selectedEvent == id {
		c.selectedEvent = ""
	}
	if c.form != nil && c.form.EventID() == id {
		c.form = nil
		c.formMode = FormNone
	}
	return nil
}

// Refresh reloads every event from the store, replacing the loaded ones.
// It is rejected with ErrBusy while a write is in flight.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.writes > 0 || c.refreshing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.refreshing = true
	c.mu.Unlock()

	evs, err := c.svc.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if c.closed {
		return ErrClosed
	}
	if err != nil {
		c.fail("loading events", err)
		return err
	}

	c.events = evs
	c.loaded = true
	if c.selectedEvent != "" && c.find(c.selectedEvent) < 0 {
		c.selectedEvent = ""
	}
	return nil
}

// Events returns a copy of the loaded events.
func (c *Controller) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	evs := make([]event.Event, len(c.events))
	copy(evs, c.events)
	return evs
}

// Upcoming returns the first loaded events dated from today on.
func (c *Controller) Upcoming() []event.Event {
	today := c.svc.Today()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upcoming(today)
}

func (c *Controller) upcoming(today calendar.Date) []event.Event {
	var until calendar.Date
	if c.opts.UpcomingDays > 0 {
		until = today.AddDays(c.opts.UpcomingDays)
	}
	evs := make([]event.Event, 0, c.opts.UpcomingLimit)
	for _, ev := range c.events {
		if c.opts.UpcomingLimit > 0 && len(evs) == c.opts.UpcomingLimit {
			break
		}
		if ev.Date.Before(today) || (!until.IsZero() && ev.Date.After(until)) {
			continue
		}
		evs = append(evs, ev)
	}
	return evs
}

func (c *Controller) Notice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return nil
	}
	n := *c.notice
	return &n
}

func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
}

// View renders the month grid with the loaded events overlaid.
func (c *Controller) View() MonthView {
	today := c.svc.Today()

	c.mu.Lock()
	defer c.mu.Unlock()

	byDate := make(map[calendar.Date][]event.Event)
	for _, ev := range c.events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}

	view := MonthView{
		Month:    c.viewMonth,
		Today:    today,
		Upcoming: c.upcoming(today),
		Loaded:   c.loaded,
	}
	for i, day := range calendar.MonthGrid(c.viewMonth.Year, c.viewMonth.Month) {
		evs := byDate[day.Date]
		cell := Cell{
			Date:           day.Date,
			IsCurrentMonth: day.IsCurrentMonth,
			IsToday:        day.Date == today,
			IsSelected:     !c.selectedDate.IsZero() && day.Date == c.selectedDate,
			Events:         evs,
		}
		if limit := c.opts.MaxEventsPerCell; limit > 0 && len(evs) > limit {
			cell.Events = evs[:limit:limit]
			cell.More = len(evs) - limit
		}
		if cell.Events == nil {
			cell.Events = []event.Event{}
		}
		view.Cells[i] = cell
	}

	if !c.selectedDate.IsZero() {
		view.Selected = &DayView{Date: c.selectedDate, Events: c.eventsOn(c.selectedDate)}
	}
	if c.selectedEvent != "" {
		if i := c.find(c.selectedEvent); i >= 0 {
			d := c.detail(c.events[i])
			view.Detail = &d
		}
	}
	if c.form != nil {
		f := c.formView()
		view.Form = &f
	}
	if c.notice != nil {
		n := *c.notice
		view.Notice = &n
	}
	return view
}

// Export writes the loaded events as an iCalendar document.
func (c *Controller) Export(w io.Writer, name string) error {
	evs := c.Events()
	return event.ExportICS(w, name, evs, c.svc.Location(), event.NowFunc())
}
