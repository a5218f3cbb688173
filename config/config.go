package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	ListenAddr string

	RPCURL  string
	ChainID int64

	RelayerURL     string
	RelayerTimeout time.Duration

	SignerKey string

	RegistryAddress   string
	ComplianceAddress string
	TokenAddresses    map[string]string

	ConfirmationDepth uint64
	ConfirmationWait  time.Duration
	PollInterval      time.Duration

	ExecutionRetention time.Duration

	MySQLUser string
	MySQLAddr string
	MySQLDB   string
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".zenith")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("listen_addr", ":80")
	viper.SetDefault("chain_id", 11155111) // sepolia
	viper.SetDefault("relayer_timeout", "30s")
	viper.SetDefault("confirmation_depth", 1)
	viper.SetDefault("confirmation_wait", "2m")
	viper.SetDefault("poll_interval", "2s")
	viper.SetDefault("execution_retention", "1h")
	viper.SetDefault("mysql_user", "root")
	viper.SetDefault("mysql_addr", "127.0.0.1:3306")
	viper.SetDefault("mysql_db", "zenith-go")
	viper.SetDefault("registry_address", "0xEa0f187da0565766D04E72dFEbf00297B6151b8f")
	// placeholder pools until the hook ships on mainnet
	viper.SetDefault("compliance_address", "0x1234567890123456789012345678901234567890")
	viper.SetDefault("token_address_dsilver", "0x1111111111111111111111111111111111111111")
	viper.SetDefault("token_address_dplat", "0x2222222222222222222222222222222222222222")

	viper.SetEnvPrefix("ZENITH")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	cfg := &Config{
		ListenAddr:         viper.GetString("listen_addr"),
		RPCURL:             viper.GetString("rpc_url"),
		ChainID:            viper.GetInt64("chain_id"),
		RelayerURL:         viper.GetString("relayer_url"),
		RelayerTimeout:     viper.GetDuration("relayer_timeout"),
		SignerKey:          viper.GetString("signer_key"),
		RegistryAddress:    viper.GetString("registry_address"),
		ComplianceAddress:  viper.GetString("compliance_address"),
		ConfirmationDepth:  viper.GetUint64("confirmation_depth"),
		ConfirmationWait:   viper.GetDuration("confirmation_wait"),
		PollInterval:       viper.GetDuration("poll_interval"),
		ExecutionRetention: viper.GetDuration("execution_retention"),
		MySQLUser:          viper.GetString("mysql_user"),
		MySQLAddr:          viper.GetString("mysql_addr"),
		MySQLDB:            viper.GetString("mysql_db"),
		TokenAddresses: map[string]string{
			"DGOLD":   viper.GetString("token_address_dgold"),
			"USDT":    viper.GetString("token_address_usdt"),
			"DSILVER": viper.GetString("token_address_dsilver"),
			"DPLAT":   viper.GetString("token_address_dplat"),
		},
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url not found. Please set ZENITH_RPC_URL or add rpc_url to a .zenith.yaml config file")
	}
	if cfg.RelayerURL == "" {
		return nil, fmt.Errorf("relayer url not found. Please set ZENITH_RELAYER_URL or add relayer_url to a .zenith.yaml config file")
	}
	if cfg.SignerKey == "" {
		return nil, fmt.Errorf("signer key not found. Please set ZENITH_SIGNER_KEY")
	}
	if cfg.TokenAddresses["DGOLD"] == "" || cfg.TokenAddresses["USDT"] == "" {
		return nil, fmt.Errorf("token addresses not found. Please set ZENITH_TOKEN_ADDRESS_DGOLD and ZENITH_TOKEN_ADDRESS_USDT")
	}

	return cfg, nil
}
