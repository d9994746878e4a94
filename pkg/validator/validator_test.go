package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-confirm/pkg/errno"
)

type account struct {
	Address string `json:"address" validate:"required"`
}

type params struct {
	Scope   string   `json:"scope" validate:"required"`
	Account *account `json:"account" validate:"required"`
}

type request struct {
	Method string `json:"method" validate:"required"`
	Params params `json:"params"`
}

func TestStruct_FieldPaths(t *testing.T) {
	tests := []struct {
		name string
		req  request
		want string
	}{
		{"missing method", request{Params: params{Scope: "s", Account: &account{Address: "a"}}}, "method"},
		{"missing scope", request{Method: "m", Params: params{Account: &account{Address: "a"}}}, "params.scope"},
		{"missing account", request{Method: "m", Params: params{Scope: "s"}}, "params.account"},
		{"missing address", request{Method: "m", Params: params{Scope: "s", Account: &account{}}}, "params.account.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			require.Error(t, err)

			var ve *errno.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.want, ve.Field)
			assert.Equal(t, "is required", ve.Reason)
		})
	}
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(request{Method: "m", Params: params{Scope: "s", Account: &account{Address: "a"}}})
	assert.NoError(t, err)
}

func TestVar_Base64(t *testing.T) {
	err := Var("params.message", "not base64!!", "required,base64")
	var ve *errno.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "params.message", ve.Field)
	assert.Equal(t, "must be base64 encoded", ve.Reason)

	assert.NoError(t, Var("params.message", "SGVsbG8sIHdvcmxkIQ==", "required,base64"))
}
