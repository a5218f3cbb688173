package models

// Asset describes one entry of the static price table. Reference prices
// are a fixed lookup, not a market feed.
type Asset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Price    int64  `json:"price"`
	Address  string `json:"address"`
}
