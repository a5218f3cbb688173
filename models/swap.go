package models

import (
	"encoding/json"
	"time"

	"github.com/0xzenith/zenith-go/errors"
)

// Phase is the single source of truth for where a swap execution is in
// its lifecycle. Exactly one phase holds at any time, which rules out
// contradictory flag combinations like confirmed-while-pending.
type Phase uint8

const (
	Idle_Phase Phase = iota
	Encrypting_Phase
	Submitting_Phase
	Confirming_Phase
	Confirmed_Phase
	Failed_Phase
)

func (p Phase) String() string {
	switch p {
	case Idle_Phase:
		return "idle"
	case Encrypting_Phase:
		return "encrypting"
	case Submitting_Phase:
		return "submitting"
	case Confirming_Phase:
		return "confirming"
	case Confirmed_Phase:
		return "confirmed"
	case Failed_Phase:
		return "failed"
	default:
		panic("unreachable")
	}
}

// Terminal phases are sticky; only an explicit reset leaves them.
func (p Phase) Terminal() bool {
	return p == Confirmed_Phase || p == Failed_Phase
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// SwapIntent is the caller's plaintext request. It is immutable once
// accepted; edits mid-flight produce a new intent that supersedes the
// old execution rather than mutating it.
type SwapIntent struct {
	FromAsset string `json:"from_asset"`
	ToAsset   string `json:"to_asset"`
	Amount    string `json:"amount"`
	Owner     string `json:"owner"`
}

// EncryptedPayload is the ciphertext handle plus validity proof the
// encryption service produced for one intent. It is consumed by exactly
// one submission and discarded afterwards.
type EncryptedPayload struct {
	Handle []byte `json:"-"`
	Proof  []byte `json:"-"`
}

type SwapExecution struct {
	ID            string            `json:"id"`
	Intent        SwapIntent        `json:"intent"`
	Phase         Phase             `json:"phase"`
	Quote         *Quote            `json:"quote,omitempty"`
	TxHash        string            `json:"tx_hash,omitempty"`
	Confirmations uint64            `json:"confirmations"`
	Error         *errors.AppError  `json:"error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Quote is derived display state; it has no lifecycle of its own and is
// never persisted.
type Quote struct {
	Rate         string `json:"rate"`
	OutputAmount string `json:"output_amount"`
}
