package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/services"
	"github.com/0xzenith/zenith-go/utils"
)

type MiddleWareHandler interface {
	ValidateAccessToken(http.HandlerFunc) http.HandlerFunc
	Recover(http.HandlerFunc) http.HandlerFunc
}

type middlewareHandler struct {
	accountService services.AccountService
	log            *zap.Logger
}

func NewMiddlewareHandler(account services.AccountService, log *zap.Logger) MiddleWareHandler {
	return &middlewareHandler{accountService: account, log: log}
}

func (m *middlewareHandler) ValidateAccessToken(h http.HandlerFunc) http.HandlerFunc {
	return m.Recover(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("authorization"), "Bearer ")
		if token == "" {
			errors.NewInvalidTokenError().Serialize(w)
			return
		}

		res, err := m.accountService.GetAccountByAccessToken(r.Context(), token)
		if err != nil {
			errors.AsAppError(err).Serialize(w)
			return
		}

		h.ServeHTTP(w, r.WithContext(utils.WithAccount(r.Context(), res)))
	})
}

// Recover turns binder panics into serialized error responses.
func (m *middlewareHandler) Recover(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if appErr, ok := rec.(errors.AppError); ok {
					appErr.Serialize(w)
					return
				}
				m.log.Error("recovered from panic", zap.Any("panic", rec))
				errors.NewUnknownError(rec).Serialize(w)
			}
		}()
		h.ServeHTTP(w, r)
	}
}
