package utils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/0xzenith/zenith-go/models"
)

type MW func(http.HandlerFunc) http.HandlerFunc

type ctxKey string

const accountCtxKey ctxKey = "account"

func JSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func Middleware(final http.HandlerFunc, h ...MW) http.HandlerFunc {
	for i := len(h) - 1; i >= 0; i-- {
		final = h[i](final)
	}
	return final
}

func WithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountCtxKey, account)
}

func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountCtxKey).(*models.Account)
	return account
}
