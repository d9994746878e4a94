package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/pkg/errno"
)

func render(t *testing.T, fn func(c *gin.Context)) (int, map[string]any) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestSuccess_NilDataIsEmptyObject(t *testing.T) {
	status, body := render(t, func(c *gin.Context) { Success(c, nil) })
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, errno.OK.Code, body["code"])
	assert.Equal(t, map[string]any{}, body["data"])
}

func TestError_CarriesField(t *testing.T) {
	err := fmt.Errorf("handle: %w", errno.NewValidationError("params.account.address", "is required"))
	status, body := render(t, func(c *gin.Context) { Error(c, err) })
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, errno.ErrValidation.Code, body["code"])
	assert.Equal(t, map[string]any{"field": "params.account.address"}, body["data"])
}

func TestError_PlainErrno(t *testing.T) {
	_, body := render(t, func(c *gin.Context) { Error(c, errno.ErrDialogNotFound) })
	assert.EqualValues(t, errno.ErrDialogNotFound.Code, body["code"])
	assert.Equal(t, errno.ErrDialogNotFound.Message, body["msg"])
}
