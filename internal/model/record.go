package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// 生命周期状态
const (
	RecordPending  = "pending"
	RecordApproved = "approved"
	RecordRejected = "rejected"
)

// ConfirmationRecord 签名请求的生命周期记录 (added -> approved / rejected)
type ConfirmationRecord struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"request_id"`
	Method         string    `gorm:"type:varchar(64);not null" json:"method"`
	Scope          string    `gorm:"type:varchar(128);not null;index" json:"scope"`
	AccountAddress string    `gorm:"type:varchar(64);not null;index" json:"account_address"`
	Payload        string    `gorm:"type:text" json:"payload"` // base64
	Status         string    `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ConfirmationRecord) TableName() string {
	return "confirmation_records"
}

// OutboxMessage 本地消息表，由 RelayService 搬运到 MQ
type OutboxMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string    `gorm:"type:varchar(128);not null" json:"topic"`
	Key       string    `gorm:"type:varchar(128)" json:"key"`
	Payload   []byte    `gorm:"type:jsonb;not null" json:"payload"`
	Status    string    `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"` // PENDING, SENT
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// CreateOutboxMessage 在同一个事务中创建业务数据和 Outbox 消息
func CreateOutboxMessage(tx *gorm.DB, topic, key string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := OutboxMessage{
		Topic:   topic,
		Key:     key,
		Payload: payloadBytes,
		Status:  "PENDING",
	}

	return tx.Create(&msg).Error
}

// AllModels 返回所有需要迁移的数据库模型对象
func AllModels() []interface{} {
	return []interface{}{
		&ConfirmationRecord{},
		&OutboxMessage{},
	}
}
