package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cnftdrop/internal/config"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and create the cnftdrop configuration file.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.cnftdrop/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  cnftdrop config init
  cnftdrop config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: the file, then environment
overrides, then flags.

Example:
  cnftdrop config show
  cnftdrop config show -o json`,
	RunE: runConfigShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return dropperr.WithSuggestion(
			dropperr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Rehome(cc.Cfg.Home)

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - rpc.url: Your Solana RPC endpoint")
	outln(w, "  - keys.payer: Payer keypair file, secretmanager://..., or mnemonic")
	outln(w, "  - keys.tree_file: Keys file naming the tree and collection")
	outln(w, "  - funding.claim_lamports: Lamports sent to every claim wallet")
	outln(w, "  - ledger.recipients: age recipients for results files (optional)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if cc.Fmt.IsJSON() {
		return cc.Fmt.Print(cc.Cfg)
	}
	displayConfigText(cmd.OutOrStdout(), cc.Cfg)
	return nil
}

func displayConfigText(w io.Writer, c *config.Config) {
	outln(w, "cnftdrop Configuration")
	outln(w, "======================")
	outln(w)
	out(w, "Home: %s\n", c.Home)
	outln(w)
	outln(w, "RPC:")
	out(w, "  URL:             %s\n", config.SanitizeURL(c.RPC.URL))
	out(w, "  Commitment:      %s\n", c.RPC.Commitment)
	out(w, "  Confirm timeout: %s\n", c.RPC.ConfirmTimeout)
	out(w, "  Poll interval:   %s\n", c.RPC.PollInterval)
	out(w, "  Rate limit:      %s/s (burst %d)\n", strconv.FormatFloat(c.RPC.RatePerSecond, 'f', -1, 64), c.RPC.Burst)
	outln(w)
	outln(w, "Mint:")
	out(w, "  Claim funding:   %d lamports (%s SOL)\n", c.Funding.ClaimLamports, formatSOL(c.Funding.ClaimLamports))
	out(w, "  Seller fee:      %d bps\n", c.Mint.SellerFeeBasisPoints)
	out(w, "  Claim creator:   %t\n", c.Mint.IncludeClaimCreator)
	out(w, "  Claim links:     %s\n", c.Claim.BaseURL)
	outln(w)
	outln(w, "Keys:")
	out(w, "  Payer:           %s\n", c.Keys.Payer)
	out(w, "  Tree file:       %s\n", c.Keys.TreeFile)
	outln(w)
	outln(w, "Ledger:")
	out(w, "  Dir:             %s\n", c.Ledger.Dir)
	out(w, "  Recipients:      %d\n", len(c.Ledger.Recipients))
	if c.Metrics.PushGateway != "" {
		outln(w)
		outln(w, "Metrics:")
		out(w, "  Push gateway:    %s\n", config.SanitizeURL(c.Metrics.PushGateway))
		out(w, "  Job:             %s\n", c.Metrics.Job)
	}
	outln(w)
	outln(w, "Output:")
	out(w, "  Format:          %s\n", c.Output.DefaultFormat)
	out(w, "  Verbose:         %t\n", c.Output.Verbose)
	outln(w)
	outln(w, "Logging:")
	out(w, "  Level:           %s\n", c.Logging.Level)
	out(w, "  File:            %s\n", c.Logging.File)
}
