package responses

import "github.com/0xzenith/zenith-go/models"

// RegistryLookupResponseData reports where the profile came from: the
// authoritative chain read, or the local cache fallback (may be stale).
type RegistryLookupResponseData struct {
	Profile *models.RegistryProfile `json:"profile"`
	Source  string                  `json:"source"`
}

const (
	RegistrySourceChain = "chain"
	RegistrySourceCache = "cache"
)
