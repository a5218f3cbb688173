package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/services"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/utils"
)

type BalanceHandler interface {
	RevealBalance(w http.ResponseWriter, r *http.Request)
	FetchBalance(w http.ResponseWriter, r *http.Request)

	ServeHttp(*http.ServeMux)
}

func NewBalanceHandler(accountService services.AccountService, balanceService services.BalanceService, middlewares MiddleWareHandler, log *zap.Logger) BalanceHandler {
	return &balanceHandler{
		handler: handler{accountService: accountService, balanceService: balanceService, middlewares: middlewares, log: log},
	}
}

type balanceHandler struct {
	handler
}

func (b *balanceHandler) ServeHttp(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users/{user_id}/balances/{asset}/reveal", b.middlewares.ValidateAccessToken(b.RevealBalance))
	mux.HandleFunc("GET /api/v1/users/{user_id}/balances/{asset}", b.middlewares.ValidateAccessToken(b.FetchBalance))
}

func (b *balanceHandler) RevealBalance(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.DecryptBalanceRequest](r)

	res, err := b.balanceService.RevealBalance(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (b *balanceHandler) FetchBalance(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.FetchBalanceRequest](r)

	res, err := b.balanceService.FetchBalance(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}
