package dialog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"wallet-confirm/internal/model"
)

// 展示状态
const (
	StateLoading     = "loading"
	StateReady       = "ready"
	StateUnavailable = "unavailable"
	StateSkipped     = "skipped"
)

type FeeDisplay struct {
	State  string `json:"state"`
	Amount string `json:"amount,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Fiat   string `json:"fiat,omitempty"`
}

type ScanDisplay struct {
	State      string   `json:"state"`
	Validation string   `json:"validation,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Changes    []string `json:"changes,omitempty"`
}

// Presentation 交给 UI 渲染的视图模型
type Presentation struct {
	View           View        `json:"view"`
	Origin         string      `json:"origin,omitempty"`
	Account        string      `json:"account,omitempty"`
	Network        string      `json:"network,omitempty"`
	Message        string      `json:"message,omitempty"`
	Fee            *FeeDisplay `json:"fee,omitempty"`
	Scan           ScanDisplay `json:"scan"`
	Instructions   int         `json:"instructions"`
	Expanded       bool        `json:"expanded"`
	ConfirmEnabled bool        `json:"confirmEnabled"`
}

// Present 由 Context 计算视图模型。富化失败只影响对应区块，确认按钮始终可用
func Present(view View, c model.Context) Presentation {
	p := Presentation{
		View:           view,
		Origin:         c.Origin,
		Network:        c.Scope,
		Instructions:   len(c.Advanced.Instructions),
		Expanded:       c.Advanced.Expanded,
		ConfirmEnabled: true,
	}
	if c.Account != nil {
		p.Account = c.Account.Address
	}
	network, known := model.LookupNetwork(c.Scope)
	if known {
		p.Network = network.Name
	}

	switch view {
	case ViewMessage, ViewSignIn:
		p.Message = string(c.Payload)
	case ViewTransaction:
		p.Fee = presentFee(c, network, known)
	}

	p.Scan = presentScan(c)
	return p
}

func presentFee(c model.Context, network model.Network, known bool) *FeeDisplay {
	if c.FeeEstimate == nil {
		// 费用和价格在同一阶段，价格仍在获取说明该阶段尚未完成
		if c.PriceStatus == model.StatusFetching {
			return &FeeDisplay{State: StateLoading}
		}
		return &FeeDisplay{State: StateUnavailable}
	}

	fee := &FeeDisplay{State: StateReady, Amount: c.FeeEstimate.String()}
	if !known {
		return fee
	}
	fee.Symbol = network.Symbol
	if price, ok := c.Prices[network.NativeAsset]; ok {
		fee.Fiat = formatFiat(c.FeeEstimate.Mul(price), c.Preferences.Currency)
	}
	return fee
}

func presentScan(c model.Context) ScanDisplay {
	switch c.ScanStatus {
	case model.StatusFetching:
		return ScanDisplay{State: StateLoading}
	case model.StatusError:
		return ScanDisplay{State: StateUnavailable}
	}
	if c.Scan == nil {
		return ScanDisplay{State: StateSkipped}
	}

	d := ScanDisplay{
		State:      StateReady,
		Validation: c.Scan.Validation.Type,
		Reason:     c.Scan.Validation.Reason,
	}
	for _, change := range c.Scan.EstimatedChanges.Assets {
		sign := "+"
		if change.Type == "out" {
			sign = "-"
		}
		label := change.Symbol
		if label == "" {
			label = change.AssetID
		}
		d.Changes = append(d.Changes, fmt.Sprintf("%s%s %s", sign, change.Value.String(), label))
	}
	return d
}

func formatFiat(v decimal.Decimal, currency string) string {
	return v.StringFixed(2) + " " + strings.ToUpper(currency)
}
