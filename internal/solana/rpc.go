package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// Blockhash is a recent blockhash and the last block height at which a
// transaction built on it can still be processed.
type Blockhash struct {
	Hash                 string
	LastValidBlockHeight uint64
}

// SignatureStatus is the node's view of a submitted transaction.
type SignatureStatus struct {
	Slot uint64
	// Confirmations is nil once the transaction is rooted.
	Confirmations *uint64
	// ConfirmationStatus is "processed", "confirmed", "finalized" or empty on old nodes.
	ConfirmationStatus string
	// Err is the transaction error reported by the runtime, nil on success.
	Err any
}

// RPC is the JSON-RPC surface the client relies on.
// Tests substitute an in-memory ledger.
type RPC interface {
	LatestBlockhash(ctx context.Context) (Blockhash, error)
	// BlockHeight returns the confirmed block height of the node.
	BlockHeight(ctx context.Context) (uint64, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	// SignatureStatus returns nil when the node has not seen the signature.
	SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	Balance(ctx context.Context, address string) (uint64, error)
}

// blockchainRPC adapts the solana-go-sdk client to RPC.
type blockchainRPC struct {
	c *client.Client
}

// NewRPC returns an RPC backed by a JSON-RPC endpoint.
func NewRPC(endpoint string) RPC {
	return &blockchainRPC{c: client.NewClient(endpoint)}
}

func (b *blockchainRPC) LatestBlockhash(ctx context.Context) (Blockhash, error) {
	res, err := b.c.GetLatestBlockhash(ctx)
	if err != nil {
		return Blockhash{}, err
	}
	return Blockhash{Hash: res.Blockhash, LastValidBlockHeight: res.LatestValidBlockHeight}, nil
}

// BlockHeight goes through the raw client: the typed client has no wrapper for it.
func (b *blockchainRPC) BlockHeight(ctx context.Context) (uint64, error) {
	res, err := b.c.RpcClient.GetBlockHeightWithConfig(ctx, rpc.GetBlockHeightConfig{Commitment: rpc.CommitmentConfirmed})
	if err != nil {
		return 0, err
	}
	if err := res.GetError(); err != nil {
		return 0, err
	}
	return res.Result, nil
}

func (b *blockchainRPC) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	return b.c.SendTransaction(ctx, tx)
}

func (b *blockchainRPC) SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	status, err := b.c.GetSignatureStatus(ctx, signature)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, nil //nolint:nilnil // unknown signature is not an error
	}

	out := &SignatureStatus{
		Slot:          status.Slot,
		Confirmations: status.Confirmations,
		Err:           status.Err,
	}
	if status.ConfirmationStatus != nil {
		out.ConfirmationStatus = string(*status.ConfirmationStatus)
	}
	return out, nil
}

func (b *blockchainRPC) Balance(ctx context.Context, address string) (uint64, error) {
	return b.c.GetBalance(ctx, address)
}
