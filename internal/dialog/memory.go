package dialog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/errno"
	"wallet-confirm/pkg/logger"
)

type entry struct {
	id       string
	view     View
	ctx      model.Context
	done     chan struct{}
	decision *bool
}

func (e *entry) snapshot(event Event, resolved bool) Snapshot {
	return Snapshot{
		ID:           e.id,
		Event:        event,
		View:         e.view,
		Resolved:     resolved,
		Decision:     e.decision,
		Context:      e.ctx,
		Presentation: Present(e.view, e.ctx),
	}
}

// MemorySurface 进程内的 Surface 实现，用户的选择经 HTTP (Resolve) 回传
// 已结束的确认框以墓碑形式保留 ttl，期间迟到的 Update 都是空操作
type MemorySurface struct {
	mu         sync.Mutex
	live       map[string]*entry
	tombstones *gocache.Cache
	hub        *NotificationHub
}

func NewMemorySurface(hub *NotificationHub, tombstoneTTL time.Duration) *MemorySurface {
	if hub == nil {
		hub = NewNotificationHub()
	}
	return &MemorySurface{
		live:       make(map[string]*entry),
		tombstones: gocache.New(tombstoneTTL, 2*tombstoneTTL),
		hub:        hub,
	}
}

func (s *MemorySurface) Create(ctx context.Context, view View, c model.Context) (string, error) {
	e := &entry{
		id:   uuid.NewString(),
		view: view,
		ctx:  c,
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.live[e.id] = e
	snap := e.snapshot(EventCreated, false)
	s.mu.Unlock()

	s.hub.Publish(e.id, snap)
	logger.Debug("dialog created", zap.String("dialog_id", e.id), zap.String("view", string(view)))
	return e.id, nil
}

func (s *MemorySurface) Update(ctx context.Context, id string, view View, c model.Context) error {
	s.mu.Lock()
	e, ok := s.live[id]
	if !ok {
		s.mu.Unlock()
		if _, resolved := s.tombstones.Get(id); resolved {
			logger.Debug("ignore update of resolved dialog", zap.String("dialog_id", id), zap.Int("version", c.Version))
			return nil
		}
		return errno.ErrDialogNotFound
	}
	e.view = view
	e.ctx = c
	snap := e.snapshot(EventUpdated, false)
	s.mu.Unlock()

	s.hub.Publish(id, snap)
	return nil
}

func (s *MemorySurface) Show(ctx context.Context, id string) (*bool, error) {
	s.mu.Lock()
	e, ok := s.live[id]
	s.mu.Unlock()
	if !ok {
		if t, resolved := s.tombstones.Get(id); resolved {
			return t.(*entry).decision, nil
		}
		return nil, errno.ErrDialogNotFound
	}

	select {
	case <-e.done:
		return e.decision, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *MemorySurface) Resolve(ctx context.Context, id string, decision *bool) error {
	s.mu.Lock()
	e, ok := s.live[id]
	if !ok {
		s.mu.Unlock()
		if _, resolved := s.tombstones.Get(id); resolved {
			return nil
		}
		return errno.ErrDialogNotFound
	}
	delete(s.live, id)
	if decision != nil {
		d := *decision
		e.decision = &d
	}
	snap := e.snapshot(EventResolved, true)
	s.tombstones.SetDefault(id, e)
	close(e.done)
	s.mu.Unlock()

	s.hub.Publish(id, snap)
	logger.Debug("dialog resolved", zap.String("dialog_id", id), zap.Any("decision", decision))
	return nil
}

func (s *MemorySurface) Context(ctx context.Context, id string) (model.Context, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return model.Context{}, err
	}
	return snap.Context, nil
}

// Snapshot 当前状态 (HTTP 查询 / websocket 首帧)
func (s *MemorySurface) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	e, ok := s.live[id]
	if ok {
		snap := e.snapshot("", false)
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()

	if t, resolved := s.tombstones.Get(id); resolved {
		return t.(*entry).snapshot("", true), nil
	}
	return Snapshot{}, errno.ErrDialogNotFound
}

// Live 尚未结束的确认框 id
func (s *MemorySurface) Live() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Hub 供 websocket handler 注册监听
func (s *MemorySurface) Hub() *NotificationHub {
	return s.hub
}
