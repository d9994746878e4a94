package confirm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/model"
	"wallet-confirm/internal/registry"
	"wallet-confirm/pkg/errno"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/monitor"
)

// Outcome 一次刷新的结果
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

// Refresher 定时重新扫描常驻确认框
type Refresher struct {
	surface  dialog.Surface
	registry *registry.Registry
	scanner  enrich.SecurityScanner
	view     dialog.View
}

func NewRefresher(surface dialog.Surface, reg *registry.Registry, scanner enrich.SecurityScanner, view dialog.View) *Refresher {
	return &Refresher{
		surface:  surface,
		registry: reg,
		scanner:  scanner,
		view:     view,
	}
}

// Refresh 任何失败都只记日志，不向调度方抛出
func (r *Refresher) Refresh(ctx context.Context, name string) (outcome Outcome) {
	log := logger.With(zap.String("name", name))
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("refresh panic", zap.Any("panic", rec))
			outcome = OutcomeFailed
		}
		monitor.RefreshTotal.WithLabelValues(string(outcome)).Inc()
	}()

	// 1. 找到常驻确认框
	id, ok, err := r.registry.Lookup(ctx, name)
	if err != nil {
		log.Warn("refresh: lookup registry failed", zap.Error(err))
		return OutcomeFailed
	}
	if !ok {
		return OutcomeSkipped
	}
	log = log.With(zap.String("dialog_id", id))

	// 2. 读取最近的 Context，字段不全则跳过
	pre, err := r.surface.Context(ctx, id)
	if err != nil {
		if errors.Is(err, errno.ErrDialogNotFound) {
			log.Debug("refresh: dialog gone")
			return OutcomeSkipped
		}
		log.Warn("refresh: read context failed", zap.Error(err))
		return OutcomeFailed
	}
	if !pre.HasRequiredFields() {
		return OutcomeSkipped
	}
	opts := enrich.ScanOptions(pre.Preferences)
	if len(opts) == 0 {
		return OutcomeSkipped
	}

	// 3. 先把扫描状态置为 fetching
	optimistic := pre.WithScanStatus(model.StatusFetching)
	r.push(ctx, id, optimistic, log)

	// 4. 重新扫描，成功后合并进最新的 Context
	result, err := r.scanner.Scan(ctx, scanRequest(pre, opts))
	if err != nil {
		// 5. 失败回滚为 fetched，避免界面一直转圈
		log.Warn("refresh: scan failed", zap.Error(err))
		rolled := pre.WithScanStatus(model.StatusFetched)
		rolled.Version = optimistic.Version + 1
		r.push(ctx, id, rolled, log)
		return OutcomeFailed
	}

	current, err := r.surface.Context(ctx, id)
	if err != nil {
		current = optimistic
	}
	r.push(ctx, id, model.MergeScan(current, result, model.StatusFetched), log)
	return OutcomeUpdated
}

func (r *Refresher) push(ctx context.Context, id string, c model.Context, log *zap.Logger) {
	if err := r.surface.Update(ctx, id, r.view, c); err != nil {
		log.Warn("refresh: push update failed", zap.Error(err))
	}
}
