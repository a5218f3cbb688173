package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xzenith/zenith-go/errors"
)

type bindFixture struct {
	UserID    string `uri:"user_id" validate:"required"`
	Address   string `query:"address" validate:"omitempty,eth_addr"`
	FromAsset string `json:"from_asset" validate:"required,oneof=DGOLD USDT"`
	Amount    string `json:"amount" default:"0"`
}

func bindVia(t *testing.T, method, target, body string) (req *bindFixture, panicked any) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(method+" /users/{user_id}/swaps", func(w http.ResponseWriter, r *http.Request) {
		defer func() { panicked = recover() }()
		req = Bind[bindFixture](r)
	})

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("content-type", "application/json")
	mux.ServeHTTP(httptest.NewRecorder(), r)
	return req, panicked
}

func TestBind_MergesUriQueryAndBody(t *testing.T) {
	req, panicked := bindVia(t, "POST",
		"/users/me/swaps?address=0x00000000000000000000000000000000000000A1",
		`{"from_asset":"DGOLD","amount":"2"}`)
	require.Nil(t, panicked)
	require.NotNil(t, req)
	assert.Equal(t, "me", req.UserID)
	assert.Equal(t, "0x00000000000000000000000000000000000000A1", req.Address)
	assert.Equal(t, "DGOLD", req.FromAsset)
	assert.Equal(t, "2", req.Amount)
}

func TestBind_AppliesDefaults(t *testing.T) {
	req, panicked := bindVia(t, "POST", "/users/me/swaps", `{"from_asset":"USDT"}`)
	require.Nil(t, panicked)
	assert.Equal(t, "0", req.Amount)
}

func TestBind_PanicsWithValidationError(t *testing.T) {
	_, panicked := bindVia(t, "POST", "/users/me/swaps", `{"from_asset":"DOGE"}`)
	require.NotNil(t, panicked)
	appErr, ok := panicked.(errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Type)
	assert.Contains(t, appErr.Message, "from_asset")
}

func TestBind_RejectsMalformedBody(t *testing.T) {
	_, panicked := bindVia(t, "POST", "/users/me/swaps", `{"from_asset":`)
	require.NotNil(t, panicked)
	appErr, ok := panicked.(errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Type)
}
