package agenda_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core/agenda"
	"github.com/trezcool/agenda/core/user"
	testutil "github.com/trezcool/agenda/tests"
)

func fixSessionNow(t *testing.T, at *time.Time) {
	orig := user.NowFunc
	user.NowFunc = func() time.Time { return *at }
	t.Cleanup(func() { user.NowFunc = orig })
}

func TestRegistry_Open(t *testing.T) {
	f := newFixture(t)
	testutil.CreateEvent(t, f.repo, "Algebra", aug11, teacher1.ID, true)
	reg := agenda.NewRegistry(f.svc, f.logger, f.conf)

	c, err := reg.Open(ctx, teacher1)
	require.NoError(t, err)
	assert.True(t, c.View().Loaded)
	assert.Len(t, c.Events(), 1)
	assert.Equal(t, 1, reg.Len())

	queries := f.repo.Calls("query")
	again, err := reg.Open(ctx, teacher1)
	require.NoError(t, err)
	assert.Same(t, c, again)
	assert.Equal(t, queries, f.repo.Calls("query"), "an open session is not reloaded")

	other, err := reg.Open(ctx, student)
	require.NoError(t, err)
	assert.NotSame(t, c, other)
	assert.Equal(t, 2, reg.Len())

	require.NoError(t, reg.Stop(context.Background()))
	assert.Zero(t, reg.Len())
	assert.True(t, c.Closed())
	assert.True(t, other.Closed())
}

func TestRegistry_RoleChange(t *testing.T) {
	f := newFixture(t)
	reg := agenda.NewRegistry(f.svc, f.logger, f.conf)

	c, err := reg.Open(ctx, teacher1)
	require.NoError(t, err)

	promoted := teacher1
	promoted.Role = user.RoleAdmin
	again, err := reg.Open(ctx, promoted)
	require.NoError(t, err)
	assert.Same(t, c, again)
	assert.True(t, c.Session().Principal().IsAdmin())
}

func TestRegistry_FailedFirstLoad(t *testing.T) {
	f := newFixture(t)
	f.repo.Fail("query", testutil.ErrStoreDown)
	reg := agenda.NewRegistry(f.svc, f.logger, f.conf)

	c, err := reg.Open(ctx, student)
	require.NoError(t, err)
	assert.False(t, c.View().Loaded)
	n := c.Notice()
	require.NotNil(t, n)
	assert.Equal(t, agenda.NoticeError, n.Kind)

	f.repo.Fail("query", nil)
	require.NoError(t, c.Refresh(ctx))
	assert.True(t, c.View().Loaded)
}

func TestRegistry_Close(t *testing.T) {
	f := newFixture(t)
	reg := agenda.NewRegistry(f.svc, f.logger, f.conf)

	c, err := reg.Open(ctx, student)
	require.NoError(t, err)

	reg.Close(student.ID)
	reg.Close("unknown")
	assert.True(t, c.Closed())
	assert.False(t, c.Session().Active())
	assert.Zero(t, reg.Len())

	fresh, err := reg.Open(ctx, student)
	require.NoError(t, err)
	assert.NotSame(t, c, fresh)
	assert.NotEqual(t, c.Session().ID(), fresh.Session().ID())
}

func TestRegistry_Sweep(t *testing.T) {
	f := newFixture(t)
	at := now
	fixSessionNow(t, &at)
	reg := agenda.NewRegistry(f.svc, f.logger, f.conf)

	idle, err := reg.Open(ctx, student)
	require.NoError(t, err)

	at = now.Add(90 * time.Minute)
	busy, err := reg.Open(ctx, teacher1)
	require.NoError(t, err)

	assert.Zero(t, reg.Sweep(now.Add(time.Hour)))

	assert.Equal(t, 1, reg.Sweep(now.Add(3*time.Hour)))
	assert.True(t, idle.Closed())
	assert.False(t, busy.Closed())
	assert.Equal(t, 1, reg.Len())
	assert.NotEmpty(t, f.logger.Entries("info"))
}

func TestRegistry_StartStop(t *testing.T) {
	f := newFixture(t)

	reg := agenda.NewRegistry(f.svc, f.logger, f.conf)
	require.NoError(t, reg.Start())
	require.NoError(t, reg.Start())
	_, err := reg.Open(ctx, student)
	require.NoError(t, err)
	require.NoError(t, reg.Stop(context.Background()))
	assert.Zero(t, reg.Len())

	conf := testutil.Conf()
	conf.Session.SweepSpec = "every now and then"
	reg = agenda.NewRegistry(f.svc, f.logger, conf)
	assert.Error(t, reg.Start())
}
