package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"wallet-confirm/pkg/logger"
)

// httpCaller 带重试的 HTTP 调用，价格和扫描服务共用
type httpCaller struct {
	client     *http.Client
	maxRetries int
	backoff    func() *backoff.Backoff
}

func newHTTPCaller(timeout time.Duration, maxRetries int) httpCaller {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return httpCaller{
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff: func() *backoff.Backoff {
			return &backoff.Backoff{Min: 100 * time.Millisecond, Max: 2 * time.Second, Factor: 2, Jitter: true}
		},
	}
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// 只有网络错误和 5xx / 429 值得重试
func retryable(err error) bool {
	se, ok := err.(*statusError)
	if !ok {
		return true
	}
	return se.Code >= 500 || se.Code == http.StatusTooManyRequests
}

// do newReq 每次重试都重新构造请求 (body 不能复用)
func (h httpCaller) do(ctx context.Context, newReq func() (*http.Request, error)) ([]byte, error) {
	b := h.backoff()
	for attempt := 0; ; attempt++ {
		body, err := h.once(newReq)
		if err == nil {
			return body, nil
		}
		if attempt >= h.maxRetries || !retryable(err) {
			return nil, err
		}

		wait := b.Duration()
		logger.Debug("http call failed, retrying", zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (h httpCaller) once(newReq func() (*http.Request, error)) ([]byte, error) {
	req, err := newReq()
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &statusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
