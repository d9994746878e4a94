package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPPriceService 调用价格 API 的 spot-prices 接口
// GET {base}/v3/spot-prices?assetIds=a,b&vsCurrency=usd -> {"a": {"usd": 1.23}}
type HTTPPriceService struct {
	baseURL string
	http    httpCaller
}

func NewHTTPPriceService(baseURL string, timeout time.Duration, maxRetries int) *HTTPPriceService {
	return &HTTPPriceService{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPCaller(timeout, maxRetries),
	}
}

func (s *HTTPPriceService) SpotPrices(ctx context.Context, assetIDs []string, currency string) (map[string]decimal.Decimal, error) {
	if len(assetIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	currency = strings.ToLower(currency)

	q := url.Values{}
	q.Set("assetIds", strings.Join(assetIDs, ","))
	q.Set("vsCurrency", currency)
	endpoint := s.baseURL + "/v3/spot-prices?" + q.Encode()

	body, err := s.http.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("spot prices: %w", err)
	}

	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("spot prices: decode response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(raw))
	for assetID, byCurrency := range raw {
		if price, ok := byCurrency[currency]; ok {
			prices[assetID] = price
		}
	}
	return prices, nil
}
