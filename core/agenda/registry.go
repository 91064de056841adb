package agenda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/core/user"
)

var NowFunc = time.Now // mockable

// Registry keeps one session and calendar controller per principal and ends the idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Controller // by principal id

	svc         event.ServiceInterface
	logger      core.Logger
	opts        Options
	idleTimeout time.Duration
	sweepSpec   string
	cron        *cron.Cron
}

func NewRegistry(svc event.ServiceInterface, logger core.Logger, conf *core.Config) *Registry {
	return &Registry{
		sessions:    make(map[string]*Controller),
		svc:         svc,
		logger:      logger,
		opts:        NewOptions(conf),
		idleTimeout: conf.Session.IdleTimeout,
		sweepSpec:   conf.Session.SweepSpec,
	}
}

// Open returns the controller of the principal's session, starting the session and loading
// its events on first use. A principal whose role changed keeps its session with the new role.
func (r *Registry) Open(ctx context.Context, p user.Principal) (*Controller, error) {
	r.mu.Lock()
	if c, ok := r.sessions[p.ID]; ok && !c.Closed() {
		r.mu.Unlock()
		s := c.Session()
		if s.Principal() != p {
			if err := s.SetPrincipal(p); err != nil {
				return nil, errors.Wrap(err, "updating session principal")
			}
		}
		s.Touch()
		return c, nil
	}
	r.mu.Unlock()

	s, err := user.StartSession(p)
	if err != nil {
		return nil, errors.Wrap(err, "starting session")
	}
	c, err := NewController(s, r.svc, r.logger, r.opts)
	if err != nil {
		s.End()
		return nil, errors.Wrap(err, "creating calendar controller")
	}
	// a failed first load stays on the controller as its notice
	_ = c.Refresh(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[p.ID]; ok && !existing.Closed() {
		// lost a race with a concurrent Open
		s.End()
		existing.Session().Touch()
		return existing, nil
	}
	r.sessions[p.ID] = c
	s.OnEnd(func() { r.forget(p.ID, c) })
	return c, nil
}

func (r *Registry) forget(principalID string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[principalID] == c {
		delete(r.sessions, principalID)
	}
}

// Close ends the principal's session, if any.
func (r *Registry) Close(principalID string) {
	r.mu.Lock()
	c, ok := r.sessions[principalID]
	r.mu.Unlock()
	if ok {
		c.Session().End()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ends the sessions idle for longer than the idle timeout and returns how many it ended.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTimeout <= 0 {
		return 0
	}

	r.mu.Lock()
	idle := make([]*user.Session, 0)
	for _, c := range r.sessions {
		if s := c.Session(); s.IdleSince(now) > r.idleTimeout {
			idle = append(idle, s)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.End()
	}
	if len(idle) > 0 {
		r.logger.Info(fmt.Sprintf("ended %d idle calendar session(s)", len(idle)))
	}
	return len(idle)
}

// Start schedules the idle sweep.
func (r *Registry) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(r.sweepSpec, func() { r.Sweep(NowFunc()) }); err != nil {
		return errors.Wrapf(err, "scheduling session sweep %q", r.sweepSpec)
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop cancels the sweep, waiting for a running one, and ends every session.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	sessions := make([]*user.Session, 0, len(r.sessions))
	for _, ctrl := range r.sessions {
		sessions = append(sessions, ctrl.Session())
	}
	r.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, s := range sessions {
		s.End()
	}
	return nil
}
