package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/handler"
	"wallet-confirm/internal/model"
	"wallet-confirm/internal/service/confirm"
	"wallet-confirm/internal/service/dispatch"
	"wallet-confirm/internal/worker/tasks"
	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/errno"
)

type nopScheduler struct{}

func (nopScheduler) Schedule(ctx context.Context, kind tasks.EventKind, p tasks.LifecyclePayload, delay time.Duration) error {
	return nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *dialog.MemorySurface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	surface := dialog.NewMemorySurface(nil, time.Minute)
	prefs := enrich.NewCachePreferences(cache.NewMemoryCache(time.Minute, time.Minute))
	o := confirm.NewOrchestrator(confirm.Deps{Surface: surface}, confirm.Options{})
	d := dispatch.NewDispatcher(o, nopScheduler{}, 0)

	r := NewHTTPRouter(Handlers{
		Requests:    handler.NewRequestHandler(d),
		Dialogs:     handler.NewDialogHandler(surface),
		Preferences: handler.NewPreferencesHandler(prefs),
	})
	return r, surface
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func messageRequest() model.Request {
	return model.Request{
		ID:     "req-1",
		Method: "signMessage",
		Params: model.RequestParams{
			Scope:   model.ScopeDevnet,
			Account: &model.Account{Address: "addr"},
			Message: "SGVsbG8sIHdvcmxkIQ==",
		},
	}
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, errno.OK.Code, do(t, r, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, errno.OK.Code, do(t, r, http.MethodGet, "/api/v1/ping", nil).Code)
}

func TestRouter_SubmitErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	req := messageRequest()
	req.Params.Account.Address = ""
	env := do(t, r, http.MethodPost, "/api/v1/requests", req)
	assert.Equal(t, errno.ErrValidation.Code, env.Code)
	assert.Contains(t, env.Msg, "params.account.address")

	req = messageRequest()
	req.Method = "eth_sign"
	env = do(t, r, http.MethodPost, "/api/v1/requests", req)
	assert.Equal(t, errno.ErrUnsupportedMethod.Code, env.Code)

	env = do(t, r, http.MethodPost, "/api/v1/requests", "not an object")
	assert.Equal(t, errno.ErrBind.Code, env.Code)
}

func TestRouter_DialogNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, errno.ErrDialogNotFound.Code, do(t, r, http.MethodGet, "/api/v1/dialogs/nope", nil).Code)
	assert.Equal(t, errno.ErrDialogNotFound.Code,
		do(t, r, http.MethodPost, "/api/v1/dialogs/nope/resolve", map[string]bool{"decision": true}).Code)
}

func TestRouter_Preferences(t *testing.T) {
	r, _ := newTestRouter(t)

	env := do(t, r, http.MethodGet, "/api/v1/preferences", nil)
	require.Equal(t, errno.OK.Code, env.Code)
	assert.Contains(t, string(env.Data), `"default":true`)

	env = do(t, r, http.MethodPut, "/api/v1/preferences", map[string]interface{}{
		"locale":   "fr",
		"currency": "eur",
	})
	require.Equal(t, errno.OK.Code, env.Code)

	env = do(t, r, http.MethodGet, "/api/v1/preferences", nil)
	assert.Contains(t, string(env.Data), `"locale":"fr"`)
	assert.Contains(t, string(env.Data), `"default":false`)

	env = do(t, r, http.MethodPut, "/api/v1/preferences", map[string]interface{}{"locale": "fr"})
	assert.Equal(t, errno.ErrBind.Code, env.Code)
}

func TestRouter_ApproveMessage(t *testing.T) {
	r, surface := newTestRouter(t)

	result := make(chan envelope, 1)
	go func() {
		result <- do(t, r, http.MethodPost, "/api/v1/requests", messageRequest())
	}()

	var id string
	require.Eventually(t, func() bool {
		live := surface.Live()
		if len(live) == 0 {
			return false
		}
		id = live[0]
		return true
	}, 2*time.Second, 10*time.Millisecond)

	env := do(t, r, http.MethodGet, "/api/v1/dialogs/"+id, nil)
	require.Equal(t, errno.OK.Code, env.Code)
	var snap dialog.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "Hello, world!", snap.Presentation.Message)
	assert.Equal(t, dialog.ViewMessage, snap.View)

	env = do(t, r, http.MethodPost, "/api/v1/dialogs/"+id+"/resolve", map[string]bool{"decision": true})
	require.Equal(t, errno.OK.Code, env.Code)

	select {
	case got := <-result:
		require.Equal(t, errno.OK.Code, got.Code)
		assert.Contains(t, string(got.Data), `"approved":true`)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete")
	}
}
