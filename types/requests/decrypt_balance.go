package requests

type DecryptBalanceRequest struct {
	UserID  string `uri:"user_id" validate:"required"`
	Asset   string `uri:"asset" validate:"required,oneof=DGOLD USDT DSILVER DPLAT"`
	Address string `json:"address" validate:"required,eth_addr"`
}

type FetchBalanceRequest struct {
	UserID  string `uri:"user_id" validate:"required"`
	Asset   string `uri:"asset" validate:"required,oneof=DGOLD USDT DSILVER DPLAT"`
	Address string `query:"address" validate:"required,eth_addr"`
}
