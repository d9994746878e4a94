package dialog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/internal/model"
)

func TestPresent_Loading(t *testing.T) {
	c := model.Seed(model.Partial{Scope: model.ScopeMainnet, Account: &model.Account{Address: "addr"}})

	p := Present(ViewTransaction, c)
	require.NotNil(t, p.Fee)
	assert.Equal(t, StateLoading, p.Fee.State)
	assert.Equal(t, StateLoading, p.Scan.State)
	assert.Equal(t, "Solana Mainnet", p.Network)
	assert.Equal(t, "addr", p.Account)
	assert.True(t, p.ConfirmEnabled)
}

func TestPresent_FeeWithFiat(t *testing.T) {
	fee := decimal.RequireFromString("0.000005")
	native := model.ScopeMainnet + "/slip44:501"
	prefs := model.DefaultPreferences()
	prefs.Currency = "eur"
	c := model.Seed(model.Partial{
		Scope:       model.ScopeMainnet,
		Preferences: &prefs,
		FeeEstimate: &fee,
		Prices:      map[string]decimal.Decimal{native: decimal.NewFromInt(200)},
		PriceStatus: model.StatusFetched,
	})

	p := Present(ViewTransaction, c)
	assert.Equal(t, StateReady, p.Fee.State)
	assert.Equal(t, "0.000005", p.Fee.Amount)
	assert.Equal(t, "SOL", p.Fee.Symbol)
	assert.Equal(t, "0.00 EUR", p.Fee.Fiat)
}

func TestPresent_FailuresKeepConfirmEnabled(t *testing.T) {
	c := model.Seed(model.Partial{
		Scope:       model.ScopeMainnet,
		PriceStatus: model.StatusError,
		ScanStatus:  model.StatusError,
	})

	p := Present(ViewTransaction, c)
	assert.Equal(t, StateUnavailable, p.Fee.State)
	assert.Equal(t, StateUnavailable, p.Scan.State)
	assert.True(t, p.ConfirmEnabled)
}

func TestPresent_Scan(t *testing.T) {
	c := model.Seed(model.Partial{
		ScanStatus: model.StatusFetched,
		Scan: &model.ScanResult{
			Status:     "SUCCESS",
			Validation: model.Validation{Type: "Warning", Reason: "unknown program"},
			EstimatedChanges: model.EstimatedChanges{Assets: []model.AssetChange{
				{Type: "out", Symbol: "SOL", Value: decimal.RequireFromString("1.5")},
				{Type: "in", AssetID: "token", Value: decimal.NewFromInt(10)},
			}},
		},
	})

	p := Present(ViewTransaction, c)
	assert.Equal(t, StateReady, p.Scan.State)
	assert.Equal(t, "Warning", p.Scan.Validation)
	assert.Equal(t, []string{"-1.5 SOL", "+10 token"}, p.Scan.Changes)

	skipped := Present(ViewTransaction, model.Seed(model.Partial{ScanStatus: model.StatusFetched}))
	assert.Equal(t, StateSkipped, skipped.Scan.State)
}

func TestPresent_Message(t *testing.T) {
	c := model.Seed(model.Partial{Payload: []byte("Hello, world!")})

	p := Present(ViewMessage, c)
	assert.Equal(t, "Hello, world!", p.Message)
	assert.Nil(t, p.Fee)
}
