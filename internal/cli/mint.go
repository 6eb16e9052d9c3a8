package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"

	"github.com/mrz1836/cnftdrop/internal/catalog"
	"github.com/mrz1836/cnftdrop/internal/claim"
	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/keystore"
	"github.com/mrz1836/cnftdrop/internal/ledger"
	"github.com/mrz1836/cnftdrop/internal/metrics"
	"github.com/mrz1836/cnftdrop/internal/output"
	"github.com/mrz1836/cnftdrop/internal/service/mint"
	"github.com/mrz1836/cnftdrop/internal/solana"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// metricsPushTimeout bounds the Pushgateway upload after a run.
const metricsPushTimeout = 10 * time.Second

// mintCmd runs a batch.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a catalog into the collection",
	Long: `Mint every catalog entry into the configured Merkle tree.

Each entry gets its own claim wallet: the wallet is funded from the payer, then
the NFT is minted with the wallet as leaf owner. Entries run one at a time and
a failed entry does not stop the batch. Claim links are printed as entries
finish and written to a results file that is never overwritten.

Without --catalog the built-in sample catalog is minted.

Example:
  cnftdrop mint --catalog drop.yaml --dry-run
  cnftdrop mint --catalog drop.yaml --keys keys.json --payer payer.json
  cnftdrop mint --catalog drop.yaml --encrypt-to age1...`,
	RunE: runMint,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	mintCatalogFile string
	mintKeysFile    string
	mintPayer       string
	mintResultsFile string
	mintEncryptTo   []string
	mintDryRun      bool
	mintLamports    uint64
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(mintCmd)

	mintCmd.Flags().StringVar(&mintCatalogFile, "catalog", "", "catalog file (YAML or JSON)")
	mintCmd.Flags().StringVar(&mintKeysFile, "keys", "", "tree and collection keys file (default: keys.tree_file)")
	mintCmd.Flags().StringVar(&mintPayer, "payer", "", "payer source: keypair file, secretmanager://..., or mnemonic")
	mintCmd.Flags().StringVar(&mintResultsFile, "results", "", "results file (default: a new file in ledger.dir)")
	mintCmd.Flags().StringArrayVar(&mintEncryptTo, "encrypt-to", nil, "age recipient for the results file (repeatable)")
	mintCmd.Flags().BoolVar(&mintDryRun, "dry-run", false, "materialize entries without sending transactions")
	mintCmd.Flags().Uint64Var(&mintLamports, "lamports", 0, "lamports per claim wallet (default: funding.claim_lamports)")
}

//nolint:gocognit,gocyclo // Batch setup is a linear sequence of checks
func runMint(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if err := cc.Cfg.Validate(); err != nil {
		return err
	}

	lamports := cc.Cfg.Funding.ClaimLamports
	if mintLamports > 0 {
		lamports = mintLamports
	}

	// Reject bad encryption settings before anything is funded
	sealing := mintSealing(cc.Cfg)
	if err := sealing.Validate(); err != nil {
		return err
	}

	entries, err := loadMintCatalog(cmd)
	if err != nil {
		return err
	}

	tree, err := keystore.LoadTreeContext(firstNonEmpty(mintKeysFile, cc.Cfg.Keys.TreeFile))
	if err != nil {
		return err
	}

	commitment, err := solana.ParseCommitment(cc.Cfg.RPC.Commitment)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	payer, err := loadPayer(ctx, firstNonEmpty(mintPayer, cc.Cfg.Keys.Payer))
	if err != nil {
		return err
	}

	var client ChainClient
	if !mintDryRun {
		if client, err = newChainClient(cc.Cfg, cc.Log); err != nil {
			return err
		}
		warnLowBalance(ctx, cmd.ErrOrStderr(), cc, client, payer, lamports*uint64(len(entries)))
	}

	progressW := cmd.OutOrStdout()
	if cc.Fmt.IsJSON() {
		progressW = cmd.ErrOrStderr()
	}

	batch := metrics.NewBatch()
	svcCfg := &mint.Config{
		Factory:         claim.NewLinkFactory(cc.Cfg.Claim.BaseURL),
		Commitment:      commitment,
		FundingLamports: lamports,
		Options: mint.Options{
			SellerFeeBasisPoints: cc.Cfg.Mint.SellerFeeBasisPoints,
			IncludeClaimCreator:  cc.Cfg.Mint.IncludeClaimCreator,
		},
		DryRun: mintDryRun,
		Progress: func(u mint.ProgressUpdate) {
			outln(progressW, output.ProgressLine(u))
		},
		Recorder: batch,
		Logger:   cc.Log.Named("mint"),
	}
	if client != nil {
		svcCfg.Connection = client
		svcCfg.Submitter = client
	}

	started := time.Now()
	cc.Log.Info("mint run started: entries=%d payer=%s dry_run=%t",
		len(entries), solana.MaskKey(payer.PublicKey.ToBase58()), mintDryRun)
	results, runErr := mint.NewService(svcCfg).Run(ctx, payer, tree, entries)

	var (
		ledgerPath string
		ledgerErr  error
	)
	if len(results) > 0 {
		ledgerPath = firstNonEmpty(mintResultsFile, ledger.DefaultPath(cc.Cfg.Ledger.Dir, started, sealing.Enabled()))
		ledgerErr = ledger.Write(ledgerPath, ledger.Record{
			StartedAt:       started.UTC(),
			FinishedAt:      time.Now().UTC(),
			DryRun:          mintDryRun,
			Payer:           payer.PublicKey.ToBase58(),
			TreeAddress:     tree.TreeAddress.ToBase58(),
			CollectionMint:  tree.CollectionMint.ToBase58(),
			FundingLamports: lamports,
			Results:         results,
		}, sealing)
		if ledgerErr != nil {
			cc.Log.Error("writing results file %s: %v", ledgerPath, ledgerErr)
			output.Warnf(cmd.ErrOrStderr(), "results file was not written; keep the claim links printed above")
			ledgerPath = ""
		}
	}

	pushMetrics(cmd, cc, batch)

	if err := output.WriteResults(cmd.OutOrStdout(), cc.Fmt.Format(), output.ResultsOutput{
		DryRun:  mintDryRun,
		Ledger:  ledgerPath,
		Results: results,
	}); err != nil {
		return err
	}

	cc.Log.Info("mint run finished: entries=%d failed=%d elapsed=%s",
		len(results), mint.Failed(results), batch.Elapsed())

	switch {
	case runErr != nil:
		return runErr
	case ledgerErr != nil:
		return ledgerErr
	}
	if failed := mint.Failed(results); failed > 0 {
		return dropperr.WithSuggestion(
			dropperr.WithDetails(dropperr.ErrPartialBatch, map[string]string{
				"failed": strconv.Itoa(failed) + " of " + strconv.Itoa(len(results)),
			}),
			"Failed entries are listed in the results file. Re-run them with a catalog of just those entries",
		)
	}
	return nil
}

// mintSealing picks the results encryption: flag recipients, then configured
// recipients, then the ledger passphrase from the environment.
func mintSealing(c *config.Config) ledger.Sealing {
	recipients := mintEncryptTo
	if len(recipients) == 0 {
		recipients = c.Ledger.Recipients
	}
	if len(recipients) > 0 {
		return ledger.Sealing{Recipients: recipients}
	}
	return ledger.Sealing{Passphrase: os.Getenv(config.EnvLedgerSecret)}
}

func loadMintCatalog(cmd *cobra.Command) ([]catalog.NFTMetadata, error) {
	if mintCatalogFile == "" {
		output.Warnf(cmd.ErrOrStderr(), "no --catalog given, minting the built-in sample catalog")
		return catalog.Sample(), nil
	}
	path, err := config.ExpandPath(mintCatalogFile)
	if err != nil {
		return nil, err
	}
	return catalog.LoadFile(path)
}

// warnLowBalance reports a payer that cannot cover every claim wallet.
// Transaction fees come on top, so this is a lower bound.
func warnLowBalance(ctx context.Context, w io.Writer, cc *CommandContext, client ChainClient, payer types.Account, required uint64) {
	balance, err := client.Balance(ctx, payer.PublicKey)
	if err != nil {
		cc.Log.Error("payer balance lookup failed: %v", err)
		return
	}
	if balance < required {
		output.Warnf(w, "payer holds %s SOL, the batch needs at least %s SOL for claim wallets",
			formatSOL(balance), formatSOL(required))
	}
}

func pushMetrics(cmd *cobra.Command, cc *CommandContext, batch *metrics.Batch) {
	url := cc.Cfg.Metrics.PushGateway
	if url == "" {
		return
	}
	ctx, cancel := contextWithTimeout(cmd, metricsPushTimeout)
	defer cancel()
	if err := batch.Push(ctx, url, cc.Cfg.Metrics.Job); err != nil {
		cc.Log.Error("metrics push failed: %v", err)
		output.Warnf(cmd.ErrOrStderr(), "metrics push failed: %v", err)
	}
}

// formatSOL renders lamports as SOL with up to nine decimals.
func formatSOL(lamports uint64) string {
	const lamportsPerSOL = 1_000_000_000
	whole := lamports / lamportsPerSOL
	frac := lamports % lamportsPerSOL
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	s := fmt.Sprintf("%d.%09d", whole, frac)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return s
}
