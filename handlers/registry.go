package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/services"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/utils"
)

type RegistryHandler interface {
	RegisterUser(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	LookupProfile(w http.ResponseWriter, r *http.Request)

	CheckCompliance(w http.ResponseWriter, r *http.Request)
	FetchPoolRule(w http.ResponseWriter, r *http.Request)
	SetPoolRule(w http.ResponseWriter, r *http.Request)

	ServeHttp(*http.ServeMux)
}

func NewRegistryHandler(accountService services.AccountService, registryService services.RegistryService, complianceService services.ComplianceService, middlewares MiddleWareHandler, log *zap.Logger) RegistryHandler {
	return &registryHandler{
		handler: handler{
			accountService:    accountService,
			registryService:   registryService,
			complianceService: complianceService,
			middlewares:       middlewares,
			log:               log,
		},
	}
}

type registryHandler struct {
	handler
}

func (h *registryHandler) ServeHttp(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users/{user_id}/registry", h.middlewares.ValidateAccessToken(h.RegisterUser))
	mux.HandleFunc("PUT /api/v1/users/{user_id}/registry", h.middlewares.ValidateAccessToken(h.UpdateProfile))
	mux.HandleFunc("GET /api/v1/users/{user_id}/registry", h.middlewares.ValidateAccessToken(h.LookupProfile))

	mux.HandleFunc("GET /api/v1/users/{user_id}/compliance/{pool_id}", h.middlewares.ValidateAccessToken(h.CheckCompliance))
	mux.HandleFunc("GET /api/v1/pools/{pool_id}/rule", h.middlewares.ValidateAccessToken(h.FetchPoolRule))
	mux.HandleFunc("PUT /api/v1/pools/{pool_id}/rule", h.middlewares.ValidateAccessToken(h.SetPoolRule))
}

func (h *registryHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.RegisterUserRequest](r)

	res, err := h.registryService.RegisterUser(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 201, res)
}

func (h *registryHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.UpdateProfileRequest](r)

	res, err := h.registryService.UpdateProfile(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (h *registryHandler) LookupProfile(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.LookupRegistryRequest](r)

	res, err := h.registryService.LookupProfile(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (h *registryHandler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.CheckComplianceRequest](r)

	res, err := h.complianceService.CheckUser(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (h *registryHandler) FetchPoolRule(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.FetchPoolRuleRequest](r)

	res, err := h.complianceService.FetchPoolRule(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}

func (h *registryHandler) SetPoolRule(w http.ResponseWriter, r *http.Request) {
	req := utils.Bind[requests.SetPoolRuleRequest](r)

	res, err := h.complianceService.SetPoolRule(r.Context(), req)
	if err != nil {
		errors.AsAppError(err).Serialize(w)
		return
	}

	utils.JSON(w, 200, res)
}
