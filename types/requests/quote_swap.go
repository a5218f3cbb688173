package requests

type QuoteSwapRequest struct {
	UserID    string `uri:"user_id" validate:"required"`
	FromAsset string `json:"from_asset" validate:"required,oneof=DGOLD USDT DSILVER DPLAT"`
	ToAsset   string `json:"to_asset" validate:"required,oneof=DGOLD USDT DSILVER DPLAT"`
	Amount    string `json:"amount"`
}
