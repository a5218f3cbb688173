package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/services"
)

type handler struct {
	accountService    services.AccountService
	swapService       services.SwapService
	balanceService    services.BalanceService
	registryService   services.RegistryService
	complianceService services.ComplianceService
	middlewares       MiddleWareHandler

	log *zap.Logger
}

type Handler interface {
	ServeHttp(*http.ServeMux)
}
