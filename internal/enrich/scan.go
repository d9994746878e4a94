package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wallet-confirm/internal/model"
)

// HTTPSecurityScanner 调用安全扫描服务
// POST {base}/v1/scan，模拟和校验由 options 控制
type HTTPSecurityScanner struct {
	baseURL string
	http    httpCaller
}

func NewHTTPSecurityScanner(baseURL string, timeout time.Duration, maxRetries int) *HTTPSecurityScanner {
	return &HTTPSecurityScanner{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPCaller(timeout, maxRetries),
	}
}

type scanBody struct {
	Method       string   `json:"method"`
	Account      string   `json:"accountAddress"`
	Scope        string   `json:"chain"`
	Transactions []string `json:"transactions"`
	Options      []string `json:"options"`
}

func (s *HTTPSecurityScanner) Scan(ctx context.Context, req ScanRequest) (*model.ScanResult, error) {
	if len(req.Options) == 0 {
		return nil, errors.New("scan: no options enabled")
	}

	payload, err := json.Marshal(scanBody{
		Method:       req.Method,
		Account:      req.Account,
		Scope:        req.Scope,
		Transactions: []string{base64.StdEncoding.EncodeToString(req.Payload)},
		Options:      req.Options,
	})
	if err != nil {
		return nil, err
	}

	body, err := s.http.do(ctx, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/scan", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	var result model.ScanResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("scan: decode response: %w", err)
	}
	if result.Status == "ERROR" {
		return nil, fmt.Errorf("scan: service reported error: %s", result.Validation.Reason)
	}
	return &result, nil
}
