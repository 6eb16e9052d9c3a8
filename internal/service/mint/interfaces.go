package mint

import (
	"context"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/claim"
	"github.com/mrz1836/cnftdrop/internal/solana"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
)

// Connection submits payer transactions and blocks until they confirm.
// Satisfied by *solana.Client.
type Connection interface {
	SendAndConfirm(ctx context.Context, instructions []types.Instruction, feePayer types.Account, signers []types.Account, commitment solana.Commitment) (string, error)
}

// Submitter mints one compressed NFT and returns once it is confirmed.
// Satisfied by *solana.Client.
type Submitter interface {
	MintToCollection(
		ctx context.Context,
		payer types.Account,
		merkleTree common.PublicKey,
		collectionMint common.PublicKey,
		collectionMetadata common.PublicKey,
		collectionEdition common.PublicKey,
		payload bubblegum.MetadataArgs,
		leafOwner common.PublicKey,
	) (string, error)
}

// ClaimWalletFactory creates a fresh claim wallet per call.
// Satisfied by *claim.LinkFactory.
type ClaimWalletFactory interface {
	Create() (*claim.Wallet, error)
}

// Recorder observes a batch run. Satisfied by *metrics.Batch.
type Recorder interface {
	Funded(lamports uint64)
	EntryDone(errorKind string, elapsed time.Duration)
}

// LogWriter provides logging capabilities.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

type nopRecorder struct{}

func (nopRecorder) Funded(uint64)                    {}
func (nopRecorder) EntryDone(string, time.Duration) {}
