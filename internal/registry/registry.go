package registry

import (
	"context"
	"sort"

	"wallet-confirm/internal/state"
)

// Registry 常驻确认框名字 -> dialog id，保存在持久化状态里
type Registry struct {
	store state.Store
}

func New(store state.Store) *Registry {
	return &Registry{store: store}
}

// Register 后写覆盖
func (r *Registry) Register(ctx context.Context, name, dialogID string) error {
	return r.store.Update(ctx, func(d *state.Document) error {
		d.Dialogs[name] = dialogID
		return nil
	})
}

// Lookup 没有注册时返回 ("", false, nil)
func (r *Registry) Lookup(ctx context.Context, name string) (string, bool, error) {
	doc, err := r.store.Get(ctx)
	if err != nil {
		return "", false, err
	}
	id, ok := doc.Dialogs[name]
	return id, ok, nil
}

// Evict 只有当前登记的仍是 dialogID 时才删除，避免删掉后来者的登记
func (r *Registry) Evict(ctx context.Context, name, dialogID string) error {
	return r.store.Update(ctx, func(d *state.Document) error {
		if d.Dialogs[name] == dialogID {
			delete(d.Dialogs, name)
		}
		return nil
	})
}

func (r *Registry) Names(ctx context.Context) ([]string, error) {
	doc, err := r.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Dialogs))
	for name := range doc.Dialogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
