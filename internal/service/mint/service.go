// Package mint runs the mint-and-fund pipeline: for every catalog entry it
// funds a fresh claim wallet, builds the compressed metadata and mints the
// leaf to that wallet, one payer transaction at a time.
package mint

import (
	"context"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/catalog"
	"github.com/mrz1836/cnftdrop/internal/solana"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// DefaultClaimFundingLamports is the balance each claim wallet receives.
const DefaultClaimFundingLamports uint64 = 1_000_000

// Config holds the configuration for the mint service.
type Config struct {
	Connection Connection
	Submitter  Submitter
	Factory    ClaimWalletFactory
	// Commitment the funding transfer is confirmed at; empty means the connection default.
	Commitment      solana.Commitment
	FundingLamports uint64
	Options         Options
	// DryRun materializes every entry with an unfunded claim wallet and sends nothing.
	DryRun   bool
	Progress ProgressCallback
	Recorder Recorder
	Logger   LogWriter
}

// Service sequences funding and minting over a catalog.
type Service struct {
	funder    *Funder
	conn      Connection
	submitter Submitter
	factory   ClaimWalletFactory
	lamports  uint64
	opts      Options
	dryRun    bool
	progress  ProgressCallback
	recorder  Recorder
	logger    LogWriter
}

// NewService creates a new mint service.
func NewService(cfg *Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	lamports := cfg.FundingLamports
	if lamports == 0 {
		lamports = DefaultClaimFundingLamports
	}

	return &Service{
		funder:    NewFunder(cfg.Connection, cfg.Factory, cfg.Commitment, logger),
		conn:      cfg.Connection,
		submitter: cfg.Submitter,
		factory:   cfg.Factory,
		lamports:  lamports,
		opts:      cfg.Options,
		dryRun:    cfg.DryRun,
		progress:  cfg.Progress,
		recorder:  recorder,
		logger:    logger,
	}
}

// Run processes entries in order and returns one MintResult per attempted
// entry. A failed entry is recorded and the next one is attempted.
//
// While ctx stays alive every entry is attempted, so there is exactly one
// result per entry and the error is nil. Once ctx ends, Run stops before the
// next entry and returns the results so far, fewer than len(entries), with
// ctx.Err(); the remaining entries get no result. The only other error is
// ErrConfiguration for an unusable setup, returned before anything is sent.
func (s *Service) Run(ctx context.Context, payer types.Account, tree TreeContext, entries []catalog.NFTMetadata) ([]MintResult, error) {
	if err := s.checkPreconditions(payer, tree); err != nil {
		return nil, err
	}

	results := make([]MintResult, 0, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			s.logger.Error("run stopped before entry %d of %d: %v", i+1, len(entries), err)
			return results, err
		}

		started := time.Now()
		var result MintResult
		if s.dryRun {
			result = s.preview(i, entry, payer)
		} else {
			result = s.processEntry(ctx, i, entry, payer, tree)
		}
		s.recorder.EntryDone(result.ErrorKind, time.Since(started))
		results = append(results, result)

		if s.progress != nil {
			s.progress(ProgressUpdate{Completed: i + 1, Total: len(entries), Result: result})
		}
	}

	return results, nil
}

func (s *Service) checkPreconditions(payer types.Account, tree TreeContext) error {
	details := map[string]string{}
	if missing := tree.Missing(); len(missing) > 0 {
		details["missing"] = strings.Join(missing, ", ")
	}
	if payer.PublicKey == (common.PublicKey{}) || len(payer.PrivateKey) == 0 {
		details["payer"] = "empty"
	}
	if s.factory == nil {
		details["claim_wallet_factory"] = "not configured"
	}
	if !s.dryRun && (s.conn == nil || s.submitter == nil) {
		details["connection"] = "not configured"
	}

	if len(details) > 0 {
		return dropperr.WithSuggestion(
			dropperr.WithDetails(dropperr.ErrConfiguration, details),
			"Check the keys file and the payer source",
		)
	}
	return nil
}

// processEntry funds, materializes and mints a single entry.
func (s *Service) processEntry(ctx context.Context, index int, entry catalog.NFTMetadata, payer types.Account, tree TreeContext) MintResult {
	result := MintResult{CatalogIndex: index, Name: entry.Name}

	wallet, fundingSig, err := s.funder.Fund(ctx, payer, s.lamports)
	if wallet != nil {
		result.ClaimWallet = wallet.PublicKey().ToBase58()
		result.ClaimHandle = wallet.Handle
	}
	if err != nil {
		return fail(result, err)
	}
	result.FundingTxSignature = fundingSig
	s.recorder.Funded(s.lamports)

	claimKey := wallet.PublicKey()
	payload := s.materialize(entry, payer.PublicKey, claimKey)

	mintSig, err := s.submitter.MintToCollection(
		ctx,
		payer,
		tree.TreeAddress,
		tree.CollectionMint,
		tree.CollectionMetadataAccount,
		tree.CollectionMasterEditionAccount,
		payload,
		claimKey,
	)
	if err != nil {
		s.logger.Error("entry %d %q: mint failed: %v", index, entry.Name, err)
		return fail(result, dropperr.WithCause(dropperr.ErrMintSubmission, err))
	}
	result.MintTxSignature = mintSig

	s.logger.Debug("entry %d %q minted to %s: %s", index, entry.Name, solana.MaskKey(result.ClaimWallet), mintSig)
	return result
}

// preview materializes an entry for a dry run without touching the network.
func (s *Service) preview(index int, entry catalog.NFTMetadata, payer types.Account) MintResult {
	result := MintResult{CatalogIndex: index, Name: entry.Name, DryRun: true}

	wallet, err := s.factory.Create()
	if err != nil {
		return fail(result, dropperr.WithCause(dropperr.ErrFunding, err))
	}
	result.ClaimWallet = wallet.PublicKey().ToBase58()
	result.ClaimHandle = wallet.Handle

	payload := s.materialize(entry, payer.PublicKey, wallet.PublicKey())
	s.logger.Debug("dry run entry %d %q: %d creators, uri %s", index, entry.Name, len(payload.Creators), payload.URI)
	return result
}

func (s *Service) materialize(entry catalog.NFTMetadata, payer, claimKey common.PublicKey) bubblegum.MetadataArgs {
	if s.opts.IncludeClaimCreator {
		return Materialize(entry, payer, &claimKey, s.opts)
	}
	return Materialize(entry, payer, nil, s.opts)
}

func fail(result MintResult, err error) MintResult {
	result.ErrorKind = dropperr.Code(err)
	result.Error = err.Error()
	return result
}
