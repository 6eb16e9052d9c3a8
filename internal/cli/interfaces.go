package cli

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/mrz1836/cnftdrop/internal/chain"
	"github.com/mrz1836/cnftdrop/internal/claim"
	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/metrics"
	"github.com/mrz1836/cnftdrop/internal/service/mint"
	"github.com/mrz1836/cnftdrop/internal/solana"
)

// Compile-time interface checks.
var (
	_ mint.LogWriter          = (*config.Logger)(nil)
	_ solana.LogWriter        = (*config.Logger)(nil)
	_ ChainClient             = (*solana.Client)(nil)
	_ mint.ClaimWalletFactory = (*claim.LinkFactory)(nil)
	_ mint.Recorder           = (*metrics.Batch)(nil)
)

// ChainClient is everything the commands need from the cluster.
type ChainClient interface {
	mint.Connection
	mint.Submitter

	// Balance returns the lamports held by address.
	Balance(ctx context.Context, address common.PublicKey) (uint64, error)
}

// newChainClient builds the cluster client from configuration.
// Tests replace it to avoid the network.
//
//nolint:gochecknoglobals // Replaceable for testing
var newChainClient = func(c *config.Config, log *config.Logger) (ChainClient, error) {
	commitment, err := solana.ParseCommitment(c.RPC.Commitment)
	if err != nil {
		return nil, err
	}
	client, err := solana.NewClient(solana.Config{
		Endpoint:       c.RPC.URL,
		Commitment:     commitment,
		ConfirmTimeout: c.RPC.ConfirmTimeout,
		PollInterval:   c.RPC.PollInterval,
		Limiter:        chain.NewRateLimiter(c.RPC.RatePerSecond, c.RPC.Burst),
		Logger:         log.Named("solana"),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
