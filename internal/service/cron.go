package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"wallet-confirm/internal/registry"
	"wallet-confirm/internal/service/confirm"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/utils/lock"
)

// CronService 定时刷新常驻确认框
type CronService struct {
	cron      *cron.Cron
	locker    lock.DistributedLock
	registry  *registry.Registry
	refresher *confirm.Refresher
	schedule  string
	lockTTL   time.Duration
}

func NewCronService(locker lock.DistributedLock, reg *registry.Registry, refresher *confirm.Refresher, schedule string, lockTTL time.Duration) *CronService {
	// 标准配置 (分级)，"@every 20s" 这类描述符不受影响
	c := cron.New()
	return &CronService{
		cron:      c,
		locker:    locker,
		registry:  reg,
		refresher: refresher,
		schedule:  schedule,
		lockTTL:   lockTTL,
	}
}

func (s *CronService) Start() error {
	// 注册任务
	if _, err := s.cron.AddFunc(s.schedule, s.RefreshStandingDialogs); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("Cron Service started", zap.String("schedule", s.schedule))
	return nil
}

func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron Service stopped")
}

// RefreshStandingDialogs 对所有登记的常驻确认框重新扫描
func (s *CronService) RefreshStandingDialogs() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("RefreshStandingDialogs panic", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL)
	defer cancel()
	lockKey := "cron:lock:refresh_dialogs"

	// 1. 获取分布式锁，防止多实例同时执行
	locked, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil || !locked {
		logger.Debug("RefreshStandingDialogs: 获取锁失败或已有实例在运行", zap.Error(err))
		return
	}
	defer func() {
		_ = s.locker.Release(context.WithoutCancel(ctx), lockKey)
	}()

	// 2. 逐个刷新
	names, err := s.registry.Names(ctx)
	if err != nil {
		logger.Warn("RefreshStandingDialogs: list registry failed", zap.Error(err))
		return
	}
	for _, name := range names {
		outcome := s.refresher.Refresh(ctx, name)
		logger.Debug("standing dialog refreshed", zap.String("name", name), zap.String("outcome", string(outcome)))
	}
}
