package requests

type CreateSwapRequest struct {
	UserID    string `uri:"user_id" validate:"required"`
	Address   string `json:"address" validate:"required,eth_addr"`
	FromAsset string `json:"from_asset" validate:"required,oneof=DGOLD USDT DSILVER DPLAT"`
	ToAsset   string `json:"to_asset" validate:"required,oneof=DGOLD USDT DSILVER DPLAT"`
	Amount    string `json:"amount" validate:"required"`
}
