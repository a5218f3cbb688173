package responses

type ComplianceCheckResponseData struct {
	Address   string `json:"address"`
	PoolID    string `json:"pool_id"`
	Compliant bool   `json:"compliant"`
}

type PoolRuleResponseData struct {
	PoolID string `json:"pool_id"`
	RuleID string `json:"rule_id"`
	TxHash string `json:"tx_hash,omitempty"`
}
