package requests

type FetchSwapRequest struct {
	UserID      string `uri:"user_id" validate:"required"`
	ExecutionID string `uri:"execution_id" validate:"required,uuid"`
}

type GetSwapsRequest struct {
	UserID  string `uri:"user_id" validate:"required"`
	Address string `query:"address" validate:"omitempty,eth_addr"`
}
