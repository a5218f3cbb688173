package fhe

import (
	"context"
	"math/big"
	"sync"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/models"
)

// Pipeline guarantees exactly-once encryption per swap execution. A
// second Encrypt call for an execution whose first call is still
// outstanding is a programming error and is rejected without touching
// the relayer. Payloads are handed to the caller and never cached, so a
// payload can only reach one submission.
type Pipeline struct {
	client Client

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewPipeline(client Client) *Pipeline {
	return &Pipeline{
		client:   client,
		inflight: map[string]struct{}{},
	}
}

func (p *Pipeline) Encrypt(ctx context.Context, executionID, contract, owner string, amount *big.Int) (*models.EncryptedPayload, error) {
	p.mu.Lock()
	if _, busy := p.inflight[executionID]; busy {
		p.mu.Unlock()
		return nil, errors.NewFailedDependencyError("encryption already in flight for execution " + executionID)
	}
	p.inflight[executionID] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inflight, executionID)
		p.mu.Unlock()
	}()

	payload, err := p.client.Encrypt(ctx, contract, owner, amount)
	if err != nil {
		return nil, errors.NewEncryptionError(err)
	}
	return payload, nil
}

// IsEncrypting reports whether the execution's encryption call is still
// outstanding.
func (p *Pipeline) IsEncrypting(executionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, busy := p.inflight[executionID]
	return busy
}
