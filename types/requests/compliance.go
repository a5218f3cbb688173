package requests

type CheckComplianceRequest struct {
	UserID  string `uri:"user_id" validate:"required"`
	PoolID  string `uri:"pool_id" validate:"required,len=66,startswith=0x"`
	Address string `query:"address" validate:"required,eth_addr"`
}

type FetchPoolRuleRequest struct {
	PoolID string `uri:"pool_id" validate:"required,len=66,startswith=0x"`
}

type SetPoolRuleRequest struct {
	PoolID string `uri:"pool_id" validate:"required,len=66,startswith=0x"`
	RuleID string `json:"rule_id" validate:"required,len=66,startswith=0x"`
}
