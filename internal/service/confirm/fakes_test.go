package confirm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/model"
	"wallet-confirm/internal/registry"
	"wallet-confirm/internal/state"
	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/utils/lock"
)

// recordingSurface 记录所有 Update 调用 (包括确认框结束后的空操作)
type recordingSurface struct {
	*dialog.MemorySurface

	mu      sync.Mutex
	created chan string
	updates []model.Context
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{
		MemorySurface: dialog.NewMemorySurface(nil, time.Minute),
		created:       make(chan string, 4),
	}
}

func (s *recordingSurface) Create(ctx context.Context, view dialog.View, c model.Context) (string, error) {
	id, err := s.MemorySurface.Create(ctx, view, c)
	if err == nil {
		s.created <- id
	}
	return id, err
}

func (s *recordingSurface) Update(ctx context.Context, id string, view dialog.View, c model.Context) error {
	s.mu.Lock()
	s.updates = append(s.updates, c)
	s.mu.Unlock()
	return s.MemorySurface.Update(ctx, id, view, c)
}

func (s *recordingSurface) Updates() []model.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Context(nil), s.updates...)
}

func (s *recordingSurface) waitCreated(t *testing.T) string {
	t.Helper()
	select {
	case id := <-s.created:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("dialog was not created")
		return ""
	}
}

type fakePrefs struct {
	prefs model.Preferences
	err   error
}

func (f *fakePrefs) Get(ctx context.Context) (model.Preferences, error) {
	return f.prefs, f.err
}

type fakeDecoder struct {
	instructions []model.Instruction
	err          error
	panics       bool
}

func (f *fakeDecoder) Decode(payload []byte) ([]model.Instruction, error) {
	if f.panics {
		panic("decoder exploded")
	}
	return f.instructions, f.err
}

type fakePrices struct {
	calls  int32
	prices map[string]decimal.Decimal
	err    error
}

func (f *fakePrices) SpotPrices(ctx context.Context, assetIDs []string, currency string) (map[string]decimal.Decimal, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.prices, f.err
}

type fakeFees struct {
	fee     *decimal.Decimal
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeFees) EstimateFee(ctx context.Context, payload []byte, scope string) (*decimal.Decimal, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.fee, f.err
}

type fakeScanner struct {
	mu       sync.Mutex
	calls    int
	requests []enrich.ScanRequest
	result   *model.ScanResult
	err      error
}

func (f *fakeScanner) Scan(ctx context.Context, req enrich.ScanRequest) (*model.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeScanner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestRegistry() *registry.Registry {
	store := state.NewCacheStore(cache.NewMemoryCache(time.Minute, time.Minute), lock.NewLocalLock(), "test:state")
	return registry.New(store)
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }

const nativeMainnet = model.ScopeMainnet + "/slip44:501"

func transferSeed() model.Partial {
	return model.Partial{
		RequestID: "req-1",
		Origin:    "https://dapp.example",
		Method:    model.TransferMethod{Kind: model.SignAndSendTransaction},
		Scope:     model.ScopeMainnet,
		Account:   &model.Account{ID: "acc-1", Address: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"},
		Payload:   []byte{1, 2, 3, 4},
	}
}

type fixture struct {
	surface  *recordingSurface
	registry *registry.Registry
	prefs    *fakePrefs
	decoder  *fakeDecoder
	prices   *fakePrices
	fees     *fakeFees
	scanner  *fakeScanner
}

func newFixture() *fixture {
	return &fixture{
		surface:  newRecordingSurface(),
		registry: newTestRegistry(),
		prefs:    &fakePrefs{prefs: model.DefaultPreferences()},
		decoder:  &fakeDecoder{instructions: []model.Instruction{{ProgramID: "11111111111111111111111111111111"}}},
		prices:   &fakePrices{prices: map[string]decimal.Decimal{nativeMainnet: decimal.NewFromInt(150)}},
		fees:     &fakeFees{fee: decimalPtr("0.000005")},
		scanner: &fakeScanner{result: &model.ScanResult{
			Status:     "SUCCESS",
			Validation: model.Validation{Type: "Benign"},
		}},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return NewOrchestrator(Deps{
		Surface:     f.surface,
		Registry:    f.registry,
		Preferences: f.prefs,
		Decoder:     f.decoder,
		Prices:      f.prices,
		Fees:        f.fees,
		Scanner:     f.scanner,
	}, Options{RegistryName: "transaction-confirmation", EnrichTimeout: 5 * time.Second})
}

type confirmResult struct {
	decision bool
	err      error
}

// confirmAsync 启动 Confirm，返回 dialog id 和结果 channel
func (f *fixture) confirmAsync(t *testing.T, o *Orchestrator, seed model.Partial) (string, <-chan confirmResult) {
	t.Helper()
	out := make(chan confirmResult, 1)
	go func() {
		d, err := o.Confirm(context.Background(), dialog.ViewTransaction, seed)
		out <- confirmResult{d, err}
	}()
	return f.surface.waitCreated(t), out
}

func waitResult(t *testing.T, ch <-chan confirmResult) confirmResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("Confirm did not return")
		return confirmResult{}
	}
}
