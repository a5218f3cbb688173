package models

import "time"

// BalanceView is the caller-facing state of one confidential balance.
// It starts concealed and stays revealed once decrypted; concealment is
// only restored by a session reset.
type BalanceView struct {
	Owner          string     `json:"owner"`
	Asset          string     `json:"asset"`
	Handle         string     `json:"ciphertext_handle"`
	Plaintext      string     `json:"plaintext,omitempty"`
	Revealed       bool       `json:"revealed"`
	LastRevealedAt *time.Time `json:"last_revealed_at,omitempty"`
}
