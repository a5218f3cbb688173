package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/services"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/utils"
)

type SwapHandler interface {
	CreateSwap(w http.ResponseWriter, r *http.Request)
	QuoteSwap(w http.ResponseWriter, r *http.Request)
	FetchSwapExecution(w http.ResponseWriter, r *http.Request)
	GetSwapExecutions(w http.ResponseWriter, r *http.Request)
	ResetSwap(w http.ResponseWriter, r *http.Request)

	ServeHttp(*http.ServeMux)
}

func NewSwapHandler(accountService services.AccountService, swapService services.SwapService, middlewares MiddleWareHandler, log *zap.Logger) SwapHandler {
	return &swapHandler{
		handler: handler{accountService: accountService, swapService: swapService, middlewares: middlewares, log: log},
	}
}

type swapHandler struct {
	handler
}

func (s *swapHandler) ServeHttp(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users/{user_id}/swap_quotation", s.middlewares.ValidateAccessToken(s.QuoteSwap))
	mux.HandleFunc("POST /api/v1/users/{user_id}/swaps", s.middlewares.ValidateAccessToken(s.CreateSwap))
	mux.HandleFunc("GET /api/v1/users/{user_id}/swaps/{execution_id}", s.middlewares.ValidateAccessToken(s.FetchSwapExecution))
	mux.HandleFunc("GET /api/v1/users/{user_id}/swaps", s.middlewares.ValidateAccessToken(s.GetSwapExecutions))
	mux.HandleFunc("DELETE /api/v1/users/{user_id}/swaps/{execution_id}", s.middlewares.ValidateAccessToken(s.ResetSwap))

	markets := map[string]any{}
	for k, from := range services.Assets {
		for j, to := range services.Assets {
			rate := float64(from.Price) / float64(to.Price)
			markets[k+j] = map[string]any{
				"ticker": map[string]float64{
					"open": rate,
					"buy":  rate,
					"sell": float64(to.Price) / float64(from.Price),
				},
				"market": k + j,
			}
		}
	}
	mux.HandleFunc("GET /api/v1/markets/tickers/{market}", s.middlewares.ValidateAccessToken(func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, 200, map[string]any{
			"data": markets[r.PathValue("market")],
		})
	}))
}

func (s *swapHandler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.CreateSwapRequest](r)

	res, err := s.swapService.CreateSwap(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 201, res)
}

func (s *swapHandler) QuoteSwap(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.QuoteSwapRequest](r)

	res, err := s.swapService.QuoteSwap(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (s *swapHandler) FetchSwapExecution(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.FetchSwapRequest](r)

	res, err := s.swapService.FetchSwapExecution(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (s *swapHandler) GetSwapExecutions(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.GetSwapsRequest](r)

	res, err := s.swapService.GetSwapExecutions(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (s *swapHandler) ResetSwap(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.ResetSwapRequest](r)

	res, err := s.swapService.ResetSwap(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}
