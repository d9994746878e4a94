package enrich

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/logger"
)

// URLResolver scope -> RPC 地址
type URLResolver func(scope string) (string, bool)

// RPCFeeEstimator 通过节点的 getFeeForMessage 估算费用
// 每个 scope 一个 JSON-RPC 客户端，首次使用时建立
type RPCFeeEstimator struct {
	resolve URLResolver

	mu      sync.Mutex
	clients map[string]*rpc.Client
}

func NewRPCFeeEstimator(resolve URLResolver) *RPCFeeEstimator {
	return &RPCFeeEstimator{
		resolve: resolve,
		clients: make(map[string]*rpc.Client),
	}
}

type feeForMessage struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	// 节点无法计算时为 null
	Value *uint64 `json:"value"`
}

func (e *RPCFeeEstimator) EstimateFee(ctx context.Context, payload []byte, scope string) (*decimal.Decimal, error) {
	network, ok := model.LookupNetwork(scope)
	if !ok {
		return nil, fmt.Errorf("estimate fee: unknown scope %q", scope)
	}
	client, err := e.client(ctx, scope)
	if err != nil {
		return nil, err
	}

	var res feeForMessage
	msg := base64.StdEncoding.EncodeToString(payload)
	if err := client.CallContext(ctx, &res, "getFeeForMessage", msg, map[string]string{"commitment": "confirmed"}); err != nil {
		return nil, fmt.Errorf("getFeeForMessage: %w", err)
	}
	if res.Value == nil {
		logger.Debug("node returned no fee", zap.String("scope", scope), zap.Uint64("slot", res.Context.Slot))
		return nil, nil
	}

	// lamports -> SOL
	fee := decimal.NewFromInt(int64(*res.Value)).Shift(-network.Decimals)
	return &fee, nil
}

func (e *RPCFeeEstimator) client(ctx context.Context, scope string) (*rpc.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.clients[scope]; ok {
		return c, nil
	}
	url, ok := e.resolve(scope)
	if !ok {
		return nil, fmt.Errorf("estimate fee: no rpc url for scope %q", scope)
	}
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	e.clients[scope] = c
	return c, nil
}

// Close 关闭所有 RPC 客户端
func (e *RPCFeeEstimator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for scope, c := range e.clients {
		c.Close()
		delete(e.clients, scope)
	}
}
