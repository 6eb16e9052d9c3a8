// Package solana wraps a Solana JSON-RPC node: transaction submission with
// confirmation at a commitment level, balance reads, keypair files and the
// Bubblegum mint submitter.
package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/chain"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Commitment is the confirmation depth a transaction is awaited at.
type Commitment string

// Commitment levels, shallowest first.
const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// ParseCommitment accepts "confirmed" or "finalized".
// Processed is refused: a processed transaction can still be dropped.
func ParseCommitment(s string) (Commitment, error) {
	c := Commitment(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CommitmentConfirmed, CommitmentFinalized:
		return c, nil
	default:
		return "", dropperr.WithDetails(dropperr.ErrInvalidInput, map[string]string{"commitment": s})
	}
}

// Default timings.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

// LogWriter provides logging capabilities.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Config holds the configuration for a Client.
type Config struct {
	// Endpoint is the JSON-RPC URL. Used for throttling and, when RPC is nil, to dial.
	Endpoint       string
	RPC            RPC
	Commitment     Commitment
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Limiter        *chain.RateLimiter
	Retry          *chain.RetryConfig
	Logger         LogWriter
}

// Client submits transactions and waits for them to land.
// Calls are serialized: at most one transaction is in flight per Client.
type Client struct {
	endpoint       string
	rpc            RPC
	commitment     Commitment
	confirmTimeout time.Duration
	pollInterval   time.Duration
	limiter        *chain.RateLimiter
	retry          chain.RetryConfig
	logger         LogWriter

	sendMu sync.Mutex
}

// ErrEndpointRequired indicates neither an RPC nor an endpoint was configured.
var ErrEndpointRequired = &dropperr.DropError{
	Code:     "RPC_URL_REQUIRED",
	Message:  "RPC URL is required",
	ExitCode: dropperr.ExitInput,
}

// NewClient creates a Client, dialing cfg.Endpoint when cfg.RPC is nil.
func NewClient(cfg Config) (*Client, error) {
	rpcClient := cfg.RPC
	if rpcClient == nil {
		if strings.TrimSpace(cfg.Endpoint) == "" {
			return nil, ErrEndpointRequired
		}
		rpcClient = NewRPC(cfg.Endpoint)
	}

	c := &Client{
		endpoint:       cfg.Endpoint,
		rpc:            rpcClient,
		commitment:     cfg.Commitment,
		confirmTimeout: cfg.ConfirmTimeout,
		pollInterval:   cfg.PollInterval,
		limiter:        cfg.Limiter,
		retry:          chain.DefaultRetryConfig(),
		logger:         cfg.Logger,
	}
	if c.commitment == "" {
		c.commitment = CommitmentConfirmed
	}
	if c.confirmTimeout <= 0 {
		c.confirmTimeout = DefaultConfirmTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.limiter == nil {
		c.limiter = chain.DefaultRateLimiter()
	}
	if cfg.Retry != nil {
		c.retry = *cfg.Retry
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	return c, nil
}

// Commitment returns the default confirmation level.
func (c *Client) Commitment() Commitment {
	return c.commitment
}

// Balance returns the lamport balance of address.
func (c *Client) Balance(ctx context.Context, address common.PublicKey) (uint64, error) {
	balance, err := chain.RetryWithConfig(ctx, c.retry, func(ctx context.Context) (uint64, error) {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return 0, err
		}
		return c.rpc.Balance(ctx, address.ToBase58())
	})
	if err != nil {
		return 0, dropperr.WithCause(dropperr.ErrNetworkError, err)
	}
	return balance, nil
}

// SendAndConfirm signs instructions with feePayer and signers, submits the
// transaction once and blocks until it reaches commitment (the client default
// when empty) or the confirm timeout passes. The transaction is never resent.
//
// A transaction whose outcome is unknown when the timeout passes still holds
// the client until its blockhash expires or it lands, so the next submission
// never overlaps a transaction that can still be processed.
func (c *Client) SendAndConfirm(ctx context.Context, instructions []types.Instruction, feePayer types.Account, signers []types.Account, commitment Commitment) (string, error) {
	if commitment == "" {
		commitment = c.commitment
	}
	if commitment.rank() == 0 {
		return "", dropperr.WithDetails(dropperr.ErrInvalidInput, map[string]string{"commitment": string(commitment)})
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	blockhash, err := chain.RetryWithConfig(ctx, c.retry, func(ctx context.Context) (Blockhash, error) {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return Blockhash{}, err
		}
		return c.rpc.LatestBlockhash(ctx)
	})
	if err != nil {
		return "", dropperr.WithCause(dropperr.ErrNetworkError, fmt.Errorf("latest blockhash: %w", err))
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: uniqueSigners(feePayer, signers),
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer.PublicKey,
			RecentBlockhash: blockhash.Hash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return "", dropperr.WithCause(dropperr.ErrInvalidInput, fmt.Errorf("building transaction: %w", err))
	}

	if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
		return "", err
	}
	signature, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", classifySendError(err)
	}
	c.logger.Debug("submitted %s, awaiting %s", MaskKey(signature), commitment)

	if err := c.awaitSignature(ctx, signature, commitment, blockhash.LastValidBlockHeight); err != nil {
		return signature, err
	}
	c.logger.Debug("%s reached %s", MaskKey(signature), commitment)
	return signature, nil
}

// awaitSignature polls the signature status until it reaches commitment.
// When the confirm timeout passes or the node stops answering, it falls back
// to awaitExpiry and reports the original failure only once the transaction
// can no longer land.
func (c *Client) awaitSignature(ctx context.Context, signature string, commitment Commitment, lastValidBlockHeight uint64) error {
	confirmCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	err := chain.Poll(confirmCtx, c.pollInterval, func(ctx context.Context) (bool, error) {
		status, err := chain.RetryWithConfig(ctx, c.retry, func(ctx context.Context) (*SignatureStatus, error) {
			if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
				return nil, err
			}
			return c.rpc.SignatureStatus(ctx, signature)
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
				return false, context.DeadlineExceeded
			}
			return false, dropperr.WithCause(dropperr.ErrNetworkError, fmt.Errorf("signature status: %w", err))
		}
		if status == nil {
			return false, nil
		}
		if status.Err != nil {
			return false, rejected(signature, status)
		}
		return reached(status, commitment), nil
	})
	if err == nil {
		return nil
	}

	// The parent context ending is the caller's doing, not a slow node
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var unresolved error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Error("%s not %s after %s", MaskKey(signature), commitment, c.confirmTimeout)
		unresolved = dropperr.WithDetails(dropperr.ErrConfirmTimeout, map[string]string{
			"signature": signature,
			"timeout":   c.confirmTimeout.String(),
		})
	case errors.Is(err, dropperr.ErrNetworkError):
		unresolved = err
	default:
		return err
	}

	landed, err := c.awaitExpiry(ctx, signature, commitment, lastValidBlockHeight)
	if err != nil {
		return err
	}
	if landed {
		return nil
	}
	return unresolved
}

// awaitExpiry keeps watching an unresolved transaction until it reaches
// commitment (landed) or the block height passes lastValidBlockHeight while
// the node has not seen it. Lookup failures are logged and polled through;
// only ctx ends the wait early. A zero bound means expiry cannot be told
// and the wait ends at once.
func (c *Client) awaitExpiry(ctx context.Context, signature string, commitment Commitment, lastValidBlockHeight uint64) (landed bool, err error) {
	if lastValidBlockHeight == 0 {
		return false, nil
	}
	c.logger.Debug("holding %s until block height passes %d", MaskKey(signature), lastValidBlockHeight)

	err = chain.Poll(ctx, c.pollInterval, func(ctx context.Context) (bool, error) {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return false, err
		}
		status, err := c.rpc.SignatureStatus(ctx, signature)
		if err != nil {
			c.logger.Debug("signature status for %s: %v", MaskKey(signature), err)
			return false, nil
		}
		if status != nil {
			if status.Err != nil {
				return false, rejected(signature, status)
			}
			// Seen in a block: it lands or drops regardless of blockhash age
			landed = reached(status, commitment)
			return landed, nil
		}

		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return false, err
		}
		height, err := c.rpc.BlockHeight(ctx)
		if err != nil {
			c.logger.Debug("block height: %v", err)
			return false, nil
		}
		return height > lastValidBlockHeight, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	if landed {
		c.logger.Debug("%s reached %s after the confirm timeout", MaskKey(signature), commitment)
	} else {
		c.logger.Debug("%s expired at block height %d", MaskKey(signature), lastValidBlockHeight)
	}
	return landed, nil
}

func rejected(signature string, status *SignatureStatus) error {
	return dropperr.WithDetails(dropperr.ErrTxRejected, map[string]string{
		"signature": signature,
		"error":     fmt.Sprint(status.Err),
	})
}

// reached reports whether status is at least as deep as commitment.
func reached(status *SignatureStatus, commitment Commitment) bool {
	if status.ConfirmationStatus == "" {
		// Old nodes only report confirmations, which go nil once rooted
		if status.Confirmations == nil {
			return true
		}
		return commitment != CommitmentFinalized && *status.Confirmations > 0
	}
	return Commitment(status.ConfirmationStatus).rank() >= commitment.rank()
}

// insufficientMarkers identify preflight failures caused by a short payer balance.
var insufficientMarkers = []string{
	"insufficient lamports",
	"insufficient funds",
	"no record of a prior credit",
}

func classifySendError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range insufficientMarkers {
		if strings.Contains(msg, marker) {
			return dropperr.WithCause(dropperr.ErrInsufficientFunds, err)
		}
	}
	if chain.IsRetryable(err) {
		return dropperr.WithCause(dropperr.ErrNetworkError, err)
	}
	return dropperr.WithCause(dropperr.ErrTxRejected, err)
}

// uniqueSigners puts the fee payer first and drops repeated keys.
func uniqueSigners(feePayer types.Account, signers []types.Account) []types.Account {
	out := []types.Account{feePayer}
	seen := map[common.PublicKey]bool{feePayer.PublicKey: true}
	for _, s := range signers {
		if seen[s.PublicKey] {
			continue
		}
		seen[s.PublicKey] = true
		out = append(out, s)
	}
	return out
}
