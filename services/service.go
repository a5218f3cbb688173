package services

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/models"
)

type service struct {
	dataDB         *sql.DB
	backend        chain.Backend
	accountService AccountService
	webhookService WebhookService
	log            *zap.Logger
}

// Assets is the static price table. Reference prices are a fixed
// lookup, not a market feed; contract addresses come from config.
var Assets = map[string]*models.Asset{
	"DGOLD":   {Symbol: "DGOLD", Name: "Digital Gold", Decimals: 6, Price: 2000},
	"USDT":    {Symbol: "USDT", Name: "Tether USD", Decimals: 6, Price: 1},
	"DSILVER": {Symbol: "DSILVER", Name: "Digital Silver", Decimals: 6, Price: 25},
	"DPLAT":   {Symbol: "DPLAT", Name: "Digital Platinum", Decimals: 6, Price: 1000},
}
