package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/cnftdrop/internal/claim"
	"github.com/mrz1836/cnftdrop/internal/output"
)

// claimCmd is the parent command for claim link operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Work with claim links",
	Long:  `Inspect the claim links handed out by a mint run.`,
}

// claimInspectCmd resolves a claim link to its wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var claimInspectCmd = &cobra.Command{
	Use:   "inspect <link>",
	Short: "Show the wallet behind a claim link",
	Long: `Derive the wallet address a claim link controls. The link itself is
never logged.

Example:
  cnftdrop claim inspect 'https://tiplink.io/i#3yZe...'
  cnftdrop claim inspect '3yZe...' --balance
  cnftdrop claim inspect 'https://tiplink.io/i#3yZe...' --qr`,
	Args: cobra.ExactArgs(1),
	RunE: runClaimInspect,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	claimShowQR      bool
	claimShowBalance bool
)

// claimOutput is the JSON shape of claim inspect.
type claimOutput struct {
	Address  string  `json:"address"`
	Lamports *uint64 `json:"lamports,omitempty"`
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(claimCmd)
	claimCmd.AddCommand(claimInspectCmd)

	claimInspectCmd.Flags().BoolVar(&claimShowQR, "qr", false, "render the link as a QR code")
	claimInspectCmd.Flags().BoolVar(&claimShowBalance, "balance", false, "look up the wallet balance")
}

func runClaimInspect(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	wallet, err := claim.ParseHandle(args[0])
	if err != nil {
		return err
	}

	result := claimOutput{Address: wallet.PublicKey().ToBase58()}
	if claimShowBalance {
		client, err := newChainClient(cc.Cfg, cc.Log)
		if err != nil {
			return err
		}
		ctx, cancel := contextWithTimeout(cmd, cc.Cfg.RPC.ConfirmTimeout)
		defer cancel()
		lamports, err := client.Balance(ctx, wallet.PublicKey())
		if err != nil {
			return err
		}
		result.Lamports = &lamports
	}

	if cc.Fmt.IsJSON() {
		return cc.Fmt.Print(result)
	}

	w := cmd.OutOrStdout()
	out(w, "Claim wallet: %s\n", result.Address)
	if result.Lamports != nil {
		out(w, "Balance: %s SOL\n", formatSOL(*result.Lamports))
	}
	if claimShowQR {
		outln(w)
		return output.RenderQR(w, wallet.Handle, output.DefaultQRConfig())
	}
	return nil
}
