package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/models"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/types/responses"
	"github.com/0xzenith/zenith-go/utils"
)

type fakeAccountService struct {
	accounts map[string]*models.Account
}

func (f *fakeAccountService) CreateAccount(context.Context, *requests.CreateAccountRequest) (*responses.Response[*responses.CreateAccountResponseData], error) {
	return nil, errors.NewFailedDependencyError("not implemented")
}

func (f *fakeAccountService) UpdateWebHookURL(context.Context, *requests.UpdateWebhookURLRequest) error {
	return nil
}

func (f *fakeAccountService) GetAccountByAccessToken(_ context.Context, token string) (*models.Account, error) {
	account, ok := f.accounts[token]
	if !ok {
		return nil, errors.NewNotFoundError("token not found")
	}
	return account, nil
}

func TestValidateAccessToken(t *testing.T) {
	accounts := &fakeAccountService{accounts: map[string]*models.Account{
		"pub_test_abc": {ID: "acct-1", DisplayName: "tester"},
	}}
	mw := NewMiddlewareHandler(accounts, zap.NewNop())

	var got *models.Account
	protected := mw.ValidateAccessToken(func(w http.ResponseWriter, r *http.Request) {
		got = utils.AccountFromContext(r.Context())
		w.WriteHeader(200)
	})

	t.Run("valid token attaches account", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("authorization", "Bearer pub_test_abc")
		w := httptest.NewRecorder()
		protected(w, r)

		assert.Equal(t, 200, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, "acct-1", got.ID)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		got = nil
		w := httptest.NewRecorder()
		protected(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, got)
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		got = nil
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("authorization", "Bearer nope")
		w := httptest.NewRecorder()
		protected(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Nil(t, got)
	})
}

func TestRecover_SerializesBinderPanics(t *testing.T) {
	mw := NewMiddlewareHandler(&fakeAccountService{}, zap.NewNop())

	h := mw.Recover(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.NewValidationError("amount is required"))
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(errors.ErrValidation), body["type"])
	assert.Equal(t, "amount is required", body["message"])
}

func TestRecover_WrapsUnknownPanics(t *testing.T) {
	mw := NewMiddlewareHandler(&fakeAccountService{}, zap.NewNop())

	h := mw.Recover(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
