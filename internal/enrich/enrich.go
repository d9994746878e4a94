package enrich

import (
	"context"

	"github.com/shopspring/decimal"

	"wallet-confirm/internal/model"
)

// PreferencesProvider 用户偏好
type PreferencesProvider interface {
	Get(ctx context.Context) (model.Preferences, error)
}

// FeeEstimator 交易费用估算，返回 nil 表示节点无法给出费用
type FeeEstimator interface {
	EstimateFee(ctx context.Context, payload []byte, scope string) (*decimal.Decimal, error)
}

// PriceService 现货价格，返回 assetID -> 价格
type PriceService interface {
	SpotPrices(ctx context.Context, assetIDs []string, currency string) (map[string]decimal.Decimal, error)
}

// 扫描选项
const (
	OptionSimulation = "simulation"
	OptionValidation = "validation"
)

// ScanRequest 安全扫描 / 模拟的输入
type ScanRequest struct {
	Method  string   `json:"method"`
	Account string   `json:"accountAddress"`
	Payload []byte   `json:"-"`
	Scope   string   `json:"scope"`
	Options []string `json:"options"`
}

// SecurityScanner 安全扫描 / 交易模拟
type SecurityScanner interface {
	Scan(ctx context.Context, req ScanRequest) (*model.ScanResult, error)
}

// InstructionDecoder 把交易 payload 解码成指令列表
type InstructionDecoder interface {
	Decode(payload []byte) ([]model.Instruction, error)
}

// ScanOptions 按偏好给出启用的扫描选项，两个都关闭时返回空
func ScanOptions(prefs model.Preferences) []string {
	var opts []string
	if prefs.SimulateOnChainActions {
		opts = append(opts, OptionSimulation)
	}
	if prefs.UseSecurityAlerts {
		opts = append(opts, OptionValidation)
	}
	return opts
}
