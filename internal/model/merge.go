package model

import (
	"github.com/shopspring/decimal"
)

// Partial 一组要合并进 Context 的字段。
//
// 合并规则只有一条 (seed 和各阶段 patch 都用它)：字段"存在"时覆盖，否则保留原值。
// 存在 = 指针非 nil、slice/map/string 非空、FetchStatus 非空。
// 因此 Partial 不能把字段清空，需要清空时由阶段自己构造完整的值。
type Partial struct {
	RequestID   string
	Origin      string
	Method      Method
	Scope       string
	Account     *Account
	Preferences *Preferences
	Payload     []byte
	FeeEstimate *decimal.Decimal
	Prices      map[string]decimal.Decimal
	PriceStatus FetchStatus
	Scan        *ScanResult
	ScanStatus  FetchStatus
	Expanded    *bool
	// Instructions 为 nil 表示未提供；非 nil 的空 slice 也视为未提供
	Instructions []Instruction
}

// Seed 调用方字段合并到默认值之上，生成第一个 Context (Version 1)
func Seed(p Partial) Context {
	return DefaultContext().Merge(p)
}

// Merge 按顺序把 patches 合并进 c 的副本，返回 Version+1 的新 Context；c 本身不变
func (c Context) Merge(patches ...Partial) Context {
	out := c.Clone()
	for _, p := range patches {
		out.apply(p)
	}
	out.Version = c.Version + 1
	return out
}

func (c *Context) apply(p Partial) {
	if p.RequestID != "" {
		c.RequestID = p.RequestID
	}
	if p.Origin != "" {
		c.Origin = p.Origin
	}
	if p.Method != nil {
		c.Method = p.Method
	}
	if p.Scope != "" {
		c.Scope = p.Scope
	}
	if p.Account != nil {
		acc := *p.Account
		c.Account = &acc
	}
	if p.Preferences != nil {
		c.Preferences = *p.Preferences
	}
	if len(p.Payload) > 0 {
		c.Payload = append([]byte(nil), p.Payload...)
	}
	if p.FeeEstimate != nil {
		fee := *p.FeeEstimate
		c.FeeEstimate = &fee
	}
	if len(p.Prices) > 0 {
		prices := make(map[string]decimal.Decimal, len(p.Prices))
		for k, v := range p.Prices {
			prices[k] = v
		}
		c.Prices = prices
	}
	if p.PriceStatus != "" {
		c.PriceStatus = p.PriceStatus
	}
	if p.Scan != nil {
		c.Scan = p.Scan.clone()
	}
	if p.ScanStatus != "" {
		c.ScanStatus = p.ScanStatus
	}
	if p.Expanded != nil {
		c.Advanced.Expanded = *p.Expanded
	}
	if len(p.Instructions) > 0 {
		c.Advanced.Instructions = cloneInstructions(p.Instructions)
	}
}

// WithScanStatus 只改扫描状态的便捷写法 (刷新路径)
func (c Context) WithScanStatus(status FetchStatus) Context {
	return c.Merge(Partial{ScanStatus: status})
}

// MergeScan 把新的扫描结果/状态合并进当前 Context
func MergeScan(current Context, result *ScanResult, status FetchStatus) Context {
	return current.Merge(Partial{Scan: result, ScanStatus: status})
}
