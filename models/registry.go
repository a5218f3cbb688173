package models

import "time"

// RegistryProfile is the cached row of a user's on-chain jurisdiction
// registration. The chain is authoritative; rows here are a declared
// may-be-stale fallback.
type RegistryProfile struct {
	Address       string     `json:"address"`
	UserID        string     `json:"user_id"`
	ProfileBitmap string     `json:"encrypted_profile_bitmap"`
	TxHash        string     `json:"tx_hash,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}
