package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// FetchStatus 单个富化字段的获取状态
type FetchStatus string

const (
	StatusFetching FetchStatus = "fetching"
	StatusFetched  FetchStatus = "fetched"
	StatusError    FetchStatus = "error"
)

// Account 签名账户
type Account struct {
	ID      string `json:"id,omitempty"`
	Address string `json:"address" validate:"required"`
}

// Preferences 用户偏好，Context 中永远是非空值
type Preferences struct {
	Locale                 string `json:"locale"`
	Currency               string `json:"currency"`
	UseSecurityAlerts      bool   `json:"useSecurityAlerts"`
	SimulateOnChainActions bool   `json:"simulateOnChainActions"`
	UseExternalPricingData bool   `json:"useExternalPricingData"`
}

// DefaultPreferences 偏好获取失败时使用的硬编码默认值
func DefaultPreferences() Preferences {
	return Preferences{
		Locale:                 "en",
		Currency:               "usd",
		UseSecurityAlerts:      true,
		SimulateOnChainActions: true,
		UseExternalPricingData: true,
	}
}

// Instruction 解码后的交易指令 (advanced 视图)
type Instruction struct {
	ProgramID string   `json:"programId"`
	Accounts  []string `json:"accounts"`
	Data      []byte   `json:"data"`
}

// AssetChange 模拟执行估算出的资产变化
type AssetChange struct {
	Type    string          `json:"type"` // in / out
	AssetID string          `json:"assetId,omitempty"`
	Symbol  string          `json:"symbol,omitempty"`
	Value   decimal.Decimal `json:"value"`
}

type EstimatedChanges struct {
	Assets []AssetChange `json:"assets"`
}

type Validation struct {
	Type   string `json:"type"` // Benign / Warning / Malicious
	Reason string `json:"reason,omitempty"`
}

// ScanResult 安全扫描 / 模拟结果
type ScanResult struct {
	Status           string           `json:"status"`
	EstimatedChanges EstimatedChanges `json:"estimatedChanges"`
	Validation       Validation       `json:"validation"`
}

func (s *ScanResult) clone() *ScanResult {
	if s == nil {
		return nil
	}
	out := *s
	if s.EstimatedChanges.Assets != nil {
		out.EstimatedChanges.Assets = append([]AssetChange(nil), s.EstimatedChanges.Assets...)
	}
	return &out
}

// Advanced "高级" 折叠区：是否展开 + 解码后的指令
type Advanced struct {
	Expanded     bool          `json:"expanded"`
	Instructions []Instruction `json:"instructions"`
}

// Context 一次确认过程中展示/需要的全部数据
// 每次阶段转换都生成新的 Context 值，已渲染过的快照不会被修改
type Context struct {
	Version     int                        `json:"version"`
	RequestID   string                     `json:"requestId,omitempty"`
	Origin      string                     `json:"origin,omitempty"`
	Method      Method                     `json:"-"`
	Scope       string                     `json:"scope"`
	Account     *Account                   `json:"account"`
	Preferences Preferences                `json:"preferences"`
	Payload     []byte                     `json:"payload"`
	FeeEstimate *decimal.Decimal           `json:"feeEstimate"`
	Prices      map[string]decimal.Decimal `json:"prices"`
	PriceStatus FetchStatus                `json:"priceStatus"`
	Scan        *ScanResult                `json:"scan"`
	ScanStatus  FetchStatus                `json:"scanStatus"`
	Advanced    Advanced                   `json:"advanced"`
}

// DefaultContext 硬编码默认值
func DefaultContext() Context {
	return Context{
		Preferences: DefaultPreferences(),
		Prices:      map[string]decimal.Decimal{},
		PriceStatus: StatusFetching,
		ScanStatus:  StatusFetching,
		Advanced:    Advanced{Instructions: []Instruction{}},
	}
}

// Clone 深拷贝
func (c Context) Clone() Context {
	out := c
	if c.Account != nil {
		acc := *c.Account
		out.Account = &acc
	}
	if c.Payload != nil {
		out.Payload = append([]byte(nil), c.Payload...)
	}
	if c.FeeEstimate != nil {
		fee := *c.FeeEstimate
		out.FeeEstimate = &fee
	}
	out.Prices = make(map[string]decimal.Decimal, len(c.Prices))
	for k, v := range c.Prices {
		out.Prices[k] = v
	}
	out.Scan = c.Scan.clone()
	out.Advanced.Instructions = cloneInstructions(c.Advanced.Instructions)
	return out
}

func cloneInstructions(in []Instruction) []Instruction {
	out := make([]Instruction, len(in))
	for i, ix := range in {
		out[i] = Instruction{
			ProgramID: ix.ProgramID,
			Accounts:  append([]string(nil), ix.Accounts...),
			Data:      append([]byte(nil), ix.Data...),
		}
	}
	return out
}

// HasRequiredFields 刷新扫描前需要的字段是否齐全
func (c Context) HasRequiredFields() bool {
	return c.Method != nil &&
		c.Scope != "" &&
		c.Account != nil && c.Account.Address != "" &&
		len(c.Payload) > 0
}

// MethodName 便于日志 / JSON
func (c Context) MethodName() string {
	if c.Method == nil {
		return ""
	}
	return c.Method.Name()
}

func (c Context) String() string {
	return fmt.Sprintf("Context{v%d %s %s price=%s scan=%s}", c.Version, c.MethodName(), c.Scope, c.PriceStatus, c.ScanStatus)
}

type contextJSON struct {
	Method string `json:"method"`
	Family Family `json:"family"`
	contextAlias
}

type contextAlias Context

// MarshalJSON Method 序列化为方法名
func (c Context) MarshalJSON() ([]byte, error) {
	out := contextJSON{Method: c.MethodName(), contextAlias: contextAlias(c)}
	if c.Method != nil {
		out.Family = c.Method.Family()
	}
	return json.Marshal(out)
}

// UnmarshalJSON 方法名解析回 Method
func (c *Context) UnmarshalJSON(data []byte) error {
	var in contextJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Context(in.contextAlias)
	if in.Method != "" {
		m, err := ParseMethod(in.Method)
		if err != nil {
			return err
		}
		c.Method = m
	}
	return nil
}
