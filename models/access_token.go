package models

// AccessToken is the bearer credential issued to an account at
// creation. Lookups match on the Token column directly.
type AccessToken struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AccountID   string `json:"account_id"`
	Token       string `json:"token"`
}
