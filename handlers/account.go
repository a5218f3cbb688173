package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/services"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/utils"
)

type AccountHandler interface {
	CreateAccount(w http.ResponseWriter, r *http.Request)
	UpdateWebHookURL(w http.ResponseWriter, r *http.Request)

	ServeHttp(*http.ServeMux)
}

func NewAccountHandler(accountService services.AccountService, middlewares MiddleWareHandler, log *zap.Logger) AccountHandler {
	return &accountHandler{
		handler: handler{accountService: accountService, middlewares: middlewares, log: log},
	}
}

type accountHandler struct {
	handler
}

func (a *accountHandler) ServeHttp(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/accounts", a.middlewares.Recover(a.CreateAccount))
	mux.HandleFunc("PUT /api/v1/accounts", a.middlewares.ValidateAccessToken(a.UpdateWebHookURL))
}

func (a *accountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.CreateAccountRequest](r)

	res, err := a.accountService.CreateAccount(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 201, res)
}

func (a *accountHandler) UpdateWebHookURL(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.UpdateWebhookURLRequest](r)

	err := a.accountService.UpdateWebHookURL(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	w.WriteHeader(204)
	w.Write(nil)
}
