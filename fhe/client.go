// Package fhe adapts the external homomorphic encryption relayer. The
// handle and proof blobs it returns are opaque to this service; their
// bit-level format belongs to the relayer and the chain.
package fhe

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/models"
)

type Client interface {
	Encrypt(ctx context.Context, contract, owner string, amount *big.Int) (*models.EncryptedPayload, error)
	Decrypt(ctx context.Context, handle []byte) (string, error)
}

func NewRelayerClient(cfg *config.Config, log *zap.Logger) Client {
	return &relayerClient{
		baseURL: cfg.RelayerURL,
		client:  &http.Client{Timeout: cfg.RelayerTimeout},
		log:     log,
	}
}

type relayerClient struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

type encryptRequest struct {
	Contract string `json:"contract"`
	Owner    string `json:"owner"`
	Amount   string `json:"amount"`
}

type encryptResponse struct {
	Handle string `json:"handle"`
	Proof  string `json:"proof"`
}

type decryptRequest struct {
	Handle string `json:"handle"`
}

type decryptResponse struct {
	Plaintext string `json:"plaintext"`
}

func (r *relayerClient) Encrypt(ctx context.Context, contract, owner string, amount *big.Int) (*models.EncryptedPayload, error) {
	var res encryptResponse
	err := r.post(ctx, "/v1/encrypt", encryptRequest{
		Contract: contract,
		Owner:    owner,
		Amount:   amount.String(),
	}, &res)
	if err != nil {
		return nil, err
	}

	handle, err := hex.DecodeString(trim0x(res.Handle))
	if err != nil {
		return nil, fmt.Errorf("malformed handle from relayer: %w", err)
	}
	proof, err := hex.DecodeString(trim0x(res.Proof))
	if err != nil {
		return nil, fmt.Errorf("malformed proof from relayer: %w", err)
	}
	if len(handle) == 0 || len(proof) == 0 {
		return nil, fmt.Errorf("relayer returned empty payload")
	}

	return &models.EncryptedPayload{Handle: handle, Proof: proof}, nil
}

func (r *relayerClient) Decrypt(ctx context.Context, handle []byte) (string, error) {
	var res decryptResponse
	err := r.post(ctx, "/v1/decrypt", decryptRequest{Handle: "0x" + hex.EncodeToString(handle)}, &res)
	if err != nil {
		return "", err
	}
	return res.Plaintext, nil
}

func (r *relayerClient) post(ctx context.Context, path string, body, out any) error {
	start := time.Now()
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relayer unavailable: %w", err)
	}
	defer res.Body.Close()

	resData, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	r.log.Info("relayer call",
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if res.StatusCode >= 300 {
		return fmt.Errorf("relayer rejected request: status %d: %s", res.StatusCode, string(resData))
	}

	return json.Unmarshal(resData, out)
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
