package confirm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/model"
	"wallet-confirm/internal/registry"
	"wallet-confirm/pkg/logger"
)

// Deps 编排器依赖的外部协作者
type Deps struct {
	Surface     dialog.Surface
	Registry    *registry.Registry // 为 nil 时不登记常驻确认框
	Preferences enrich.PreferencesProvider
	Decoder     enrich.InstructionDecoder
	Prices      enrich.PriceService
	Fees        enrich.FeeEstimator
	Scanner     enrich.SecurityScanner
}

// Options 编排器配置
type Options struct {
	// RegistryName 常驻确认框在注册表中的名字
	RegistryName string
	// EnrichTimeout 后台富化的总超时，<= 0 表示不限
	EnrichTimeout time.Duration
}

// Orchestrator 确认流程编排：
// 1. Stage 0 创建确认框并开始等待用户选择
// 2. Stage 1..3 在后台依次富化 Context，每个阶段推送一次更新
// 返回值只取决于用户的选择，富化失败不会影响结果
type Orchestrator struct {
	surface     dialog.Surface
	registry    *registry.Registry
	preferences enrich.PreferencesProvider
	decoder     enrich.InstructionDecoder
	prices      enrich.PriceService
	fees        enrich.FeeEstimator
	scanner     enrich.SecurityScanner
	opts        Options

	wg sync.WaitGroup
}

func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	return &Orchestrator{
		surface:     deps.Surface,
		registry:    deps.Registry,
		preferences: deps.Preferences,
		decoder:     deps.Decoder,
		prices:      deps.Prices,
		fees:        deps.Fees,
		scanner:     deps.Scanner,
		opts:        opts,
	}
}

// Stages 富化阶段，按顺序执行
func (o *Orchestrator) Stages() []Stage {
	return []Stage{o.preferencesStage(), o.pricingStage(), o.scanStage()}
}

type showResult struct {
	decision *bool
	err      error
}

// Confirm 完整流程 (交易类请求)
func (o *Orchestrator) Confirm(ctx context.Context, view dialog.View, seed model.Partial) (bool, error) {
	// Stage 0: seed
	c := model.Seed(seed)
	o.wg.Add(1)
	id, err := o.surface.Create(ctx, view, c)
	if err != nil {
		o.wg.Done()
		return false, fmt.Errorf("create dialog: %w", err)
	}
	log := logger.With(zap.String("dialog_id", id), zap.String("request_id", c.RequestID))

	shown := o.show(ctx, id)
	o.register(ctx, id, log)

	// 富化不随调用方取消，只由用户的选择结束 (之后的更新都是空操作)
	go o.enrich(context.WithoutCancel(ctx), id, view, c, log)

	res := <-shown
	o.evict(ctx, id, log)
	return o.decide(ctx, id, res, log)
}

// Render 单阶段流程 (消息签名 / 登录)：创建、等待、返回
func (o *Orchestrator) Render(ctx context.Context, view dialog.View, seed model.Partial) (bool, error) {
	c := model.Seed(seed)
	id, err := o.surface.Create(ctx, view, c)
	if err != nil {
		return false, fmt.Errorf("create dialog: %w", err)
	}
	log := logger.With(zap.String("dialog_id", id), zap.String("request_id", c.RequestID))
	return o.decide(ctx, id, <-o.show(ctx, id), log)
}

// Wait 等待所有后台富化结束 (关闭服务 / 测试)
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) show(ctx context.Context, id string) <-chan showResult {
	ch := make(chan showResult, 1)
	go func() {
		d, err := o.surface.Show(ctx, id)
		ch <- showResult{decision: d, err: err}
	}()
	return ch
}

// decide nil (直接关闭) 视为拒绝
func (o *Orchestrator) decide(ctx context.Context, id string, res showResult, log *zap.Logger) (bool, error) {
	if res.err != nil {
		// 调用方放弃等待时关闭确认框，避免界面悬挂
		if err := o.surface.Resolve(context.WithoutCancel(ctx), id, nil); err != nil {
			log.Warn("resolve abandoned dialog failed", zap.Error(err))
		}
		return false, fmt.Errorf("show dialog: %w", res.err)
	}
	decision := res.decision != nil && *res.decision
	log.Info("dialog resolved", zap.Bool("decision", decision), zap.Bool("dismissed", res.decision == nil))
	return decision, nil
}

func (o *Orchestrator) enrich(ctx context.Context, id string, view dialog.View, c model.Context, log *zap.Logger) {
	defer o.wg.Done()
	if o.opts.EnrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.EnrichTimeout)
		defer cancel()
	}

	for _, stage := range o.Stages() {
		patches := stage.run(ctx, c)
		c = c.Merge(patches...)

		// 推送时合并进界面上的最新 Context，保留期间 Refresher 写入的扫描结果
		pushed := o.current(ctx, id, c).Merge(patches...)
		log.Debug("stage finished", zap.Stringer("stage", stage), zap.Stringer("context", pushed))
		if err := o.surface.Update(ctx, id, view, pushed); err != nil {
			log.Warn("push stage update failed", zap.String("stage", stage.Name), zap.Error(err))
		}
	}
}

// current 界面上最近的 Context，读不到时退回流水线自己的版本
func (o *Orchestrator) current(ctx context.Context, id string, fallback model.Context) model.Context {
	c, err := o.surface.Context(ctx, id)
	if err != nil {
		return fallback
	}
	return c
}

func (o *Orchestrator) register(ctx context.Context, id string, log *zap.Logger) {
	if o.registry == nil || o.opts.RegistryName == "" {
		return
	}
	if err := o.registry.Register(ctx, o.opts.RegistryName, id); err != nil {
		log.Warn("register standing dialog failed", zap.Error(err))
	}
}

func (o *Orchestrator) evict(ctx context.Context, id string, log *zap.Logger) {
	if o.registry == nil || o.opts.RegistryName == "" {
		return
	}
	if err := o.registry.Evict(context.WithoutCancel(ctx), o.opts.RegistryName, id); err != nil {
		log.Warn("evict standing dialog failed", zap.Error(err))
	}
}
