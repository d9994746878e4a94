package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/errno"
)

func TestScanOptions(t *testing.T) {
	tests := []struct {
		name  string
		prefs model.Preferences
		want  []string
	}{
		{"both", model.Preferences{SimulateOnChainActions: true, UseSecurityAlerts: true}, []string{OptionSimulation, OptionValidation}},
		{"simulation only", model.Preferences{SimulateOnChainActions: true}, []string{OptionSimulation}},
		{"alerts only", model.Preferences{UseSecurityAlerts: true}, []string{OptionValidation}},
		{"none", model.Preferences{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanOptions(tt.prefs))
		})
	}
}

func TestCachePreferences(t *testing.T) {
	p := NewCachePreferences(cache.NewMemoryCache(time.Minute, time.Minute))
	ctx := context.Background()

	_, err := p.Get(ctx)
	assert.ErrorIs(t, err, errno.ErrPreferencesUnset)

	want := model.Preferences{Locale: "de", Currency: "eur", UseSecurityAlerts: true}
	require.NoError(t, p.Set(ctx, want))

	got, err := p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// rpcServer 最小的 JSON-RPC 2.0 服务端
func rpcServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getFeeForMessage", req.Method)
		assert.Len(t, req.Params, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
}

func TestRPCFeeEstimator(t *testing.T) {
	srv := rpcServer(t, `{"context":{"slot":42},"value":5000}`)
	defer srv.Close()

	e := NewRPCFeeEstimator(func(string) (string, bool) { return srv.URL, true })
	defer e.Close()

	fee, err := e.EstimateFee(context.Background(), []byte{1, 2, 3}, model.ScopeMainnet)
	require.NoError(t, err)
	require.NotNil(t, fee)
	assert.True(t, fee.Equal(decimal.RequireFromString("0.000005")), fee.String())
}

func TestRPCFeeEstimator_NullValue(t *testing.T) {
	srv := rpcServer(t, `{"context":{"slot":42},"value":null}`)
	defer srv.Close()

	e := NewRPCFeeEstimator(func(string) (string, bool) { return srv.URL, true })
	defer e.Close()

	fee, err := e.EstimateFee(context.Background(), []byte{1}, model.ScopeDevnet)
	require.NoError(t, err)
	assert.Nil(t, fee)
}

func TestRPCFeeEstimator_UnknownScope(t *testing.T) {
	e := NewRPCFeeEstimator(func(string) (string, bool) { return "", false })

	_, err := e.EstimateFee(context.Background(), []byte{1}, "eip155:1")
	assert.Error(t, err)
	_, err = e.EstimateFee(context.Background(), []byte{1}, model.ScopeMainnet)
	assert.Error(t, err)
}

func TestHTTPPriceService(t *testing.T) {
	native := model.ScopeMainnet + "/slip44:501"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/spot-prices", r.URL.Path)
		assert.Equal(t, native, r.URL.Query().Get("assetIds"))
		assert.Equal(t, "usd", r.URL.Query().Get("vsCurrency"))
		_, _ = w.Write([]byte(`{"` + native + `":{"usd":151.25}}`))
	}))
	defer srv.Close()

	s := NewHTTPPriceService(srv.URL, time.Second, 0)
	prices, err := s.SpotPrices(context.Background(), []string{native}, "USD")
	require.NoError(t, err)
	require.Contains(t, prices, native)
	assert.True(t, prices[native].Equal(decimal.RequireFromString("151.25")))
}

func TestHTTPPriceService_Retries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewHTTPPriceService(srv.URL, time.Second, 2)
	prices, err := s.SpotPrices(context.Background(), []string{"a"}, "usd")
	require.NoError(t, err)
	assert.Empty(t, prices)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHTTPPriceService_NoRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewHTTPPriceService(srv.URL, time.Second, 3)
	_, err := s.SpotPrices(context.Background(), []string{"a"}, "usd")
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestHTTPSecurityScanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/scan", r.URL.Path)

		var body scanBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{OptionSimulation}, body.Options)
		assert.Equal(t, "addr", body.Account)
		assert.Equal(t, []string{"AQID"}, body.Transactions)

		_, _ = w.Write([]byte(`{"status":"SUCCESS","estimatedChanges":{"assets":[{"type":"out","symbol":"SOL","value":"0.1"}]},"validation":{"type":"Benign"}}`))
	}))
	defer srv.Close()

	s := NewHTTPSecurityScanner(srv.URL, time.Second, 0)
	res, err := s.Scan(context.Background(), ScanRequest{
		Method:  "signTransaction",
		Account: "addr",
		Payload: []byte{1, 2, 3},
		Scope:   model.ScopeMainnet,
		Options: []string{OptionSimulation},
	})
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", res.Status)
	assert.Equal(t, "Benign", res.Validation.Type)
	require.Len(t, res.EstimatedChanges.Assets, 1)
}

func TestHTTPSecurityScanner_NoOptions(t *testing.T) {
	s := NewHTTPSecurityScanner("http://127.0.0.1:0", time.Second, 0)
	_, err := s.Scan(context.Background(), ScanRequest{})
	assert.Error(t, err)
}

func TestHTTPSecurityScanner_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ERROR","validation":{"reason":"simulation failed"}}`))
	}))
	defer srv.Close()

	s := NewHTTPSecurityScanner(srv.URL, time.Second, 0)
	_, err := s.Scan(context.Background(), ScanRequest{Options: []string{OptionValidation}})
	assert.Error(t, err)
}

func TestRLPDecoder(t *testing.T) {
	want := []model.Instruction{
		{ProgramID: "11111111111111111111111111111111", Accounts: []string{"from", "to"}, Data: []byte{2, 0, 0, 0}},
		{ProgramID: "ComputeBudget111111111111111111111111111111", Accounts: []string{"payer"}, Data: []byte{3}},
	}
	payload, err := EncodeEnvelope(want)
	require.NoError(t, err)

	got, err := NewRLPDecoder().Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRLPDecoder_Invalid(t *testing.T) {
	d := NewRLPDecoder()

	_, err := d.Decode(nil)
	assert.Error(t, err)
	_, err = d.Decode([]byte("definitely not rlp"))
	assert.Error(t, err)
}
