// Package chain owns every JSON-RPC interaction: contract writes signed
// with the relay key, confirmation reads, and the view calls backing the
// registry and compliance flows.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/config"
)

// Sentinel causes for a failed write; callers map these onto the error
// taxonomy.
var (
	ErrSignerDeclined = errors.New("signer declined transaction")
	ErrNodeRejected   = errors.New("node rejected transaction")
)

// TxSpec names a single contract write.
type TxSpec struct {
	Contract common.Address
	Method   string
	Args     []any
}

// Backend is the full chain capability the services consume. Client is
// the production implementation; FakeBackend serves tests.
type Backend interface {
	Submit(ctx context.Context, spec TxSpec) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)

	ConfidentialBalanceOf(ctx context.Context, token, owner common.Address) ([32]byte, error)
	EncryptedProfileHash(ctx context.Context, userID [32]byte) ([32]byte, error)
	CheckUserCompliance(ctx context.Context, user common.Address, poolID [32]byte) (bool, error)
	PoolRule(ctx context.Context, poolID [32]byte) ([32]byte, error)

	ExpectedNetwork(ctx context.Context) error
	SignerAddress() common.Address
}

type Client struct {
	eth       *ethclient.Client
	chainID   *big.Int
	wantChain *big.Int
	transacts *bind.TransactOpts
	signer    common.Address

	contracts map[common.Address]*bind.BoundContract

	registry   common.Address
	compliance common.Address

	log *zap.Logger
}

func NewClient(cfg *config.Config, log *zap.Logger) (*Client, error) {
	ctx := context.Background()

	cli, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	chainID, err := cli.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	pk, err := parsePrivateKey(cfg.SignerKey)
	if err != nil {
		return nil, err
	}

	txOpts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		return nil, fmt.Errorf("transactor: %w", err)
	}
	txOpts.GasLimit = 0 // let node estimate

	c := &Client{
		eth:        cli,
		chainID:    chainID,
		wantChain:  big.NewInt(cfg.ChainID),
		transacts:  txOpts,
		signer:     crypto.PubkeyToAddress(pk.PublicKey),
		contracts:  map[common.Address]*bind.BoundContract{},
		registry:   common.HexToAddress(cfg.RegistryAddress),
		compliance: common.HexToAddress(cfg.ComplianceAddress),
		log:        log,
	}

	tokenABI, err := abi.JSON(strings.NewReader(confidentialTokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	for _, addr := range cfg.TokenAddresses {
		if addr == "" {
			continue
		}
		c.bindContract(common.HexToAddress(addr), tokenABI)
	}

	registryABI, err := abi.JSON(strings.NewReader(userRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}
	c.bindContract(c.registry, registryABI)

	hookABI, err := abi.JSON(strings.NewReader(complianceHookABI))
	if err != nil {
		return nil, fmt.Errorf("parse compliance abi: %w", err)
	}
	c.bindContract(c.compliance, hookABI)

	return c, nil
}

func (c *Client) bindContract(addr common.Address, parsed abi.ABI) {
	c.contracts[addr] = bind.NewBoundContract(addr, parsed, c.eth, c.eth, c.eth)
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse signer key: %w", err)
	}
	return key, nil
}

// Submit signs and broadcasts one contract write. The returned error
// wraps ErrSignerDeclined or ErrNodeRejected so the tracker can tell
// the two failure modes apart.
func (c *Client) Submit(ctx context.Context, spec TxSpec) (common.Hash, error) {
	contract, ok := c.contracts[spec.Contract]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: unknown contract %s", ErrNodeRejected, spec.Contract.Hex())
	}

	opts := *c.transacts
	opts.Context = ctx

	tx, err := contract.Transact(&opts, spec.Method, spec.Args...)
	if err != nil {
		return common.Hash{}, classifySubmitError(err)
	}

	c.log.Info("transaction submitted",
		zap.String("contract", spec.Contract.Hex()),
		zap.String("method", spec.Method),
		zap.String("hash", tx.Hash().Hex()),
	)
	return tx.Hash(), nil
}

func classifySubmitError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "declined"),
		strings.Contains(msg, "denied"),
		strings.Contains(msg, "rejected by signer"),
		strings.Contains(msg, "authentication needed"):
		return fmt.Errorf("%w: %v", ErrSignerDeclined, err)
	default:
		return fmt.Errorf("%w: %v", ErrNodeRejected, err)
	}
}

func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.eth.TransactionReceipt(ctx, hash)
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

func (c *Client) ConfidentialBalanceOf(ctx context.Context, token, owner common.Address) ([32]byte, error) {
	var out []any
	contract, ok := c.contracts[token]
	if !ok {
		return [32]byte{}, fmt.Errorf("unknown token contract %s", token.Hex())
	}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "confidentialBalanceOf", owner); err != nil {
		return [32]byte{}, err
	}
	return out[0].([32]byte), nil
}

func (c *Client) EncryptedProfileHash(ctx context.Context, userID [32]byte) ([32]byte, error) {
	var out []any
	if err := c.contracts[c.registry].Call(&bind.CallOpts{Context: ctx}, &out, "getEncryptedFHEHash", userID); err != nil {
		return [32]byte{}, err
	}
	return out[0].([32]byte), nil
}

func (c *Client) CheckUserCompliance(ctx context.Context, user common.Address, poolID [32]byte) (bool, error) {
	var out []any
	if err := c.contracts[c.compliance].Call(&bind.CallOpts{Context: ctx}, &out, "checkUserCompliance", user, poolID); err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *Client) PoolRule(ctx context.Context, poolID [32]byte) ([32]byte, error) {
	var out []any
	if err := c.contracts[c.compliance].Call(&bind.CallOpts{Context: ctx}, &out, "getPoolRule", poolID); err != nil {
		return [32]byte{}, err
	}
	return out[0].([32]byte), nil
}

// ExpectedNetwork verifies the node is serving the configured chain.
func (c *Client) ExpectedNetwork(ctx context.Context) error {
	if c.chainID.Cmp(c.wantChain) != 0 {
		return fmt.Errorf("connected to chain %s, expected %s", c.chainID, c.wantChain)
	}
	return nil
}

func (c *Client) SignerAddress() common.Address {
	return c.signer
}
