package requests

type ResetSwapRequest struct {
	UserID      string `uri:"user_id" validate:"required"`
	ExecutionID string `uri:"execution_id" validate:"required,uuid"`
}
