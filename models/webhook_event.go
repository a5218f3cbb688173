package models

import "encoding/json"

type Webhook struct {
	Event WebhookEvent `json:"event"`
	Data  any          `json:"data"`
}

type WebhookEvent uint8

const (
	SwapEncrypting_WebhookEvent WebhookEvent = iota + 1
	SwapSubmitting_WebhookEvent
	SwapConfirming_WebhookEvent
	SwapConfirmed_WebhookEvent
	SwapFailed_WebhookEvent

	BalanceRevealed_WebhookEvent

	RegistryUpdated_WebhookEvent
)

func (w WebhookEvent) String() string {
	switch w {
	case SwapEncrypting_WebhookEvent:
		return "swap_execution.encrypting"
	case SwapSubmitting_WebhookEvent:
		return "swap_execution.submitting"
	case SwapConfirming_WebhookEvent:
		return "swap_execution.confirming"
	case SwapConfirmed_WebhookEvent:
		return "swap_execution.confirmed"
	case SwapFailed_WebhookEvent:
		return "swap_execution.failed"
	case BalanceRevealed_WebhookEvent:
		return "balance.revealed"
	case RegistryUpdated_WebhookEvent:
		return "registry.updated"
	default:
		panic("unreachable")
	}
}

func (w WebhookEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}
