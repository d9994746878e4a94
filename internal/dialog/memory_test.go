package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/errno"
)

type fakeListener struct {
	mu     sync.Mutex
	events []Snapshot
	fail   bool
}

func (l *fakeListener) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return errors.New("closed")
	}
	l.events = append(l.events, v.(Snapshot))
	return nil
}

func (l *fakeListener) Events() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Snapshot(nil), l.events...)
}

func boolPtr(b bool) *bool { return &b }

func TestMemorySurface_ShowResolve(t *testing.T) {
	s := NewMemorySurface(nil, time.Minute)
	ctx := context.Background()

	id, err := s.Create(ctx, ViewTransaction, model.DefaultContext())
	require.NoError(t, err)

	got := make(chan *bool, 1)
	go func() {
		d, err := s.Show(ctx, id)
		assert.NoError(t, err)
		got <- d
	}()

	require.NoError(t, s.Resolve(ctx, id, boolPtr(true)))
	select {
	case d := <-got:
		require.NotNil(t, d)
		assert.True(t, *d)
	case <-time.After(time.Second):
		t.Fatal("Show did not return")
	}

	// 重复 Resolve 不改变结果
	require.NoError(t, s.Resolve(ctx, id, boolPtr(false)))
	d, err := s.Show(ctx, id)
	require.NoError(t, err)
	assert.True(t, *d)
}

func TestMemorySurface_UpdateAfterResolveIsNoop(t *testing.T) {
	s := NewMemorySurface(nil, time.Minute)
	ctx := context.Background()

	c1 := model.Seed(model.Partial{Scope: model.ScopeMainnet})
	id, err := s.Create(ctx, ViewTransaction, c1)
	require.NoError(t, err)
	require.NoError(t, s.Resolve(ctx, id, nil))

	c2 := c1.Merge(model.Partial{PriceStatus: model.StatusFetched})
	require.NoError(t, s.Update(ctx, id, ViewTransaction, c2))

	last, err := s.Context(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c1.Version, last.Version)

	snap, err := s.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.True(t, snap.Resolved)
	assert.Nil(t, snap.Decision)
}

func TestMemorySurface_UnknownDialog(t *testing.T) {
	s := NewMemorySurface(nil, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, "nope", ViewMessage, model.DefaultContext()), errno.ErrDialogNotFound)
	assert.ErrorIs(t, s.Resolve(ctx, "nope", nil), errno.ErrDialogNotFound)
	_, err := s.Show(ctx, "nope")
	assert.ErrorIs(t, err, errno.ErrDialogNotFound)
	_, err = s.Context(ctx, "nope")
	assert.ErrorIs(t, err, errno.ErrDialogNotFound)
}

func TestMemorySurface_ShowHonorsContext(t *testing.T) {
	s := NewMemorySurface(nil, time.Minute)
	id, err := s.Create(context.Background(), ViewMessage, model.DefaultContext())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Show(ctx, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemorySurface_PublishesSnapshots(t *testing.T) {
	hub := NewNotificationHub()
	s := NewMemorySurface(hub, time.Minute)
	ctx := context.Background()

	id, err := s.Create(ctx, ViewTransaction, model.DefaultContext())
	require.NoError(t, err)

	l := &fakeListener{}
	hub.RegisterListener(id, l)

	require.NoError(t, s.Update(ctx, id, ViewTransaction, model.DefaultContext().Merge()))
	require.NoError(t, s.Resolve(ctx, id, boolPtr(false)))
	require.NoError(t, s.Update(ctx, id, ViewTransaction, model.DefaultContext()))

	events := l.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventUpdated, events[0].Event)
	assert.Equal(t, EventResolved, events[1].Event)
	assert.False(t, *events[1].Decision)
}

func TestNotificationHub_DropsBrokenListener(t *testing.T) {
	hub := NewNotificationHub()
	good, bad := &fakeListener{}, &fakeListener{fail: true}
	hub.RegisterListener("t", good)
	hub.RegisterListener("t", bad)

	hub.Publish("t", Snapshot{ID: "t"})

	assert.Equal(t, 1, hub.Listeners("t"))
	assert.Len(t, good.Events(), 1)

	hub.UnregisterListener("t", good)
	assert.Equal(t, 0, hub.Listeners("t"))
}

func TestMemorySurface_LiveExcludesResolved(t *testing.T) {
	s := NewMemorySurface(nil, time.Minute)
	ctx := context.Background()

	a, err := s.Create(ctx, ViewMessage, model.DefaultContext())
	require.NoError(t, err)
	b, err := s.Create(ctx, ViewTransaction, model.DefaultContext())
	require.NoError(t, err)

	live := s.Live()
	assert.ElementsMatch(t, []string{a, b}, live)
	assert.IsIncreasing(t, live)

	require.NoError(t, s.Resolve(ctx, a, nil))
	assert.Equal(t, []string{b}, s.Live())
}

func TestNotificationHub_SubscribeFirstFrameNeverStale(t *testing.T) {
	s := NewMemorySurface(nil, time.Minute)
	ctx := context.Background()

	c := model.DefaultContext()
	id, err := s.Create(ctx, ViewTransaction, c)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		next := c
		for i := 0; i < 50; i++ {
			next = next.Merge(model.Partial{})
			_ = s.Update(ctx, id, ViewTransaction, next)
		}
	}()

	l := &fakeListener{}
	require.NoError(t, s.Hub().Subscribe(id, l, func() (interface{}, error) {
		return s.Snapshot(ctx, id)
	}))
	<-done

	events := l.Events()
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Context.Version, events[i-1].Context.Version)
	}
	assert.Equal(t, 1, s.Hub().Listeners(id))
}

func TestNotificationHub_SubscribeErrorNotRegistered(t *testing.T) {
	hub := NewNotificationHub()
	l := &fakeListener{}

	err := hub.Subscribe("t", l, func() (interface{}, error) { return nil, errno.ErrDialogNotFound })
	assert.ErrorIs(t, err, errno.ErrDialogNotFound)
	assert.Equal(t, 0, hub.Listeners("t"))
}
