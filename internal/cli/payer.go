package cli

import (
	"context"
	"os"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"

	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/keystore"
	"github.com/mrz1836/cnftdrop/internal/output"
	"github.com/mrz1836/cnftdrop/internal/solana"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// fundingHint is what a fresh payer needs before a small batch.
const fundingHint = "Send 1.1 SOL to this wallet"

// payerCmd shows or creates the payer wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var payerCmd = &cobra.Command{
	Use:   "payer",
	Short: "Show the payer wallet",
	Long: `Show the address and balance of the wallet that pays for claim wallets
and mint fees.

With --generate a new keypair is written in solana-keygen format. An existing
file is never overwritten.

Example:
  cnftdrop payer
  cnftdrop payer --payer secretmanager://projects/p/secrets/payer
  cnftdrop payer --generate ~/.cnftdrop/payer.json`,
	RunE: runPayer,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	payerSource   string
	payerGenerate string
)

// payerOutput is the JSON shape of the payer command.
type payerOutput struct {
	Address  string  `json:"address"`
	Lamports *uint64 `json:"lamports,omitempty"`
	File     string  `json:"file,omitempty"`
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(payerCmd)

	payerCmd.Flags().StringVar(&payerSource, "payer", "", "payer source: keypair file, secretmanager://..., or mnemonic")
	payerCmd.Flags().StringVar(&payerGenerate, "generate", "", "write a new keypair to this file")
}

func runPayer(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if payerGenerate != "" {
		return generatePayer(cmd, cc, payerGenerate)
	}

	ctx, cancel := contextWithTimeout(cmd, cc.Cfg.RPC.ConfirmTimeout)
	defer cancel()

	payer, err := loadPayer(ctx, firstNonEmpty(payerSource, cc.Cfg.Keys.Payer))
	if err != nil {
		return err
	}

	result := payerOutput{Address: payer.PublicKey.ToBase58()}
	client, err := newChainClient(cc.Cfg, cc.Log)
	if err == nil {
		var lamports uint64
		if lamports, err = client.Balance(ctx, payer.PublicKey); err == nil {
			result.Lamports = &lamports
		}
	}
	if err != nil {
		cc.Log.Error("payer balance lookup failed: %v", err)
	}

	if cc.Fmt.IsJSON() {
		return cc.Fmt.Print(result)
	}

	w := cmd.OutOrStdout()
	out(w, "Payer: %s\n", result.Address)
	if result.Lamports != nil {
		out(w, "Balance: %s SOL\n", formatSOL(*result.Lamports))
	} else {
		output.Warnf(cmd.ErrOrStderr(), "balance unavailable from %s", cc.Cfg.RPC.URL)
	}
	if result.Lamports == nil || *result.Lamports == 0 {
		outln(w)
		outln(w, fundingHint)
	}
	return nil
}

func generatePayer(cmd *cobra.Command, cc *CommandContext, path string) error {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	acc := types.NewAccount()
	if err := solana.WriteKeypairFile(expanded, acc); err != nil {
		if dropperr.Is(err, dropperr.ErrInvalidInput) || os.IsExist(err) {
			return dropperr.WithSuggestion(err, "Choose another --generate path; existing keypairs are never replaced")
		}
		return err
	}
	cc.Log.Info("generated payer %s at %s", solana.MaskKey(acc.PublicKey.ToBase58()), expanded)

	result := payerOutput{Address: acc.PublicKey.ToBase58(), File: expanded}
	if cc.Fmt.IsJSON() {
		return cc.Fmt.Print(result)
	}

	w := cmd.OutOrStdout()
	output.Successf(w, "Keypair written to %s", expanded)
	out(w, "Payer: %s\n\n", result.Address)
	outln(w, fundingHint)
	return nil
}

// loadPayer resolves a payer source, taking mnemonic material from the environment.
func loadPayer(ctx context.Context, source string) (types.Account, error) {
	return keystore.LoadPayer(ctx, source, keystore.Options{
		Mnemonic:   os.Getenv(config.EnvMnemonic),
		Passphrase: os.Getenv(config.EnvPassphrase),
	})
}
