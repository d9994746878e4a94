package tasks

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/logger"
)

// RecordStore 生命周期记账
type RecordStore interface {
	Added(ctx context.Context, p LifecyclePayload) error
	Finished(ctx context.Context, kind EventKind, p LifecyclePayload) error
}

// LifecycleEvent 写入 outbox 的消息体
type LifecycleEvent struct {
	Kind EventKind `json:"kind"`
	LifecyclePayload
}

// GormRecordStore Postgres 实现，业务记录和 outbox 消息在同一个事务里
type GormRecordStore struct {
	db    *gorm.DB
	topic string
}

func NewGormRecordStore(db *gorm.DB, topic string) *GormRecordStore {
	return &GormRecordStore{db: db, topic: topic}
}

func (s *GormRecordStore) Added(ctx context.Context, p LifecyclePayload) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := model.ConfirmationRecord{
			RequestID:      p.RequestID,
			Method:         p.Method,
			Scope:          p.Scope,
			AccountAddress: p.Account,
			Payload:        p.Transaction,
			Status:         model.RecordPending,
		}
		// 任务重试时记录已存在，不重复写 outbox
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return model.CreateOutboxMessage(tx, s.topic, p.RequestID, LifecycleEvent{Kind: EventAdded, LifecyclePayload: p})
	})
}

func (s *GormRecordStore) Finished(ctx context.Context, kind EventKind, p LifecyclePayload) error {
	status := model.RecordRejected
	if kind == EventApproved {
		status = model.RecordApproved
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.ConfirmationRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", p.RequestID).
			First(&record).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// added 事件还没落库，直接写终态
			record = model.ConfirmationRecord{
				RequestID:      p.RequestID,
				Method:         p.Method,
				Scope:          p.Scope,
				AccountAddress: p.Account,
				Payload:        p.Transaction,
				Status:         status,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case record.Status == status:
			return nil
		default:
			if err := tx.Model(&record).Update("status", status).Error; err != nil {
				return err
			}
		}
		return model.CreateOutboxMessage(tx, s.topic, p.RequestID, LifecycleEvent{Kind: kind, LifecyclePayload: p})
	})
}

// LogRecordStore 未启用数据库时使用，只记录日志
type LogRecordStore struct{}

func (LogRecordStore) Added(ctx context.Context, p LifecyclePayload) error {
	logger.Info("confirmation added", zap.String("request_id", p.RequestID), zap.String("scope", p.Scope))
	return nil
}

func (LogRecordStore) Finished(ctx context.Context, kind EventKind, p LifecyclePayload) error {
	logger.Info("confirmation finished", zap.String("request_id", p.RequestID), zap.String("kind", string(kind)))
	return nil
}
