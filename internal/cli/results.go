package cli

import (
	"os"

	"filippo.io/age"
	"github.com/spf13/cobra"

	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/ledger"
	"github.com/mrz1836/cnftdrop/internal/output"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// resultsCmd reads back a results file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var resultsCmd = &cobra.Command{
	Use:   "results <file>",
	Short: "Show a results file",
	Long: `Print the outcome of a previous mint run. Sealed files are opened with
an age identity file, or with CNFTDROP_LEDGER_PASSPHRASE when they were sealed
with a passphrase.

With --links the claim link of every minted entry is printed, one per line,
ready to hand out. Failed entries are skipped; re-run them with a catalog of
just those entries.

Example:
  cnftdrop results ~/.cnftdrop/runs/run-20261015-120000.json
  cnftdrop results run.json.age --identity key.txt --links`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	resultsIdentity string
	resultsLinks    bool
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().StringVar(&resultsIdentity, "identity", "", "age identity file for sealed results")
	resultsCmd.Flags().BoolVar(&resultsLinks, "links", false, "print only the claim links of minted entries")
}

func runResults(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	identities, err := resultsIdentities()
	if err != nil {
		return err
	}

	rec, err := ledger.Read(args[0], identities)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if resultsLinks {
		for _, r := range rec.Results {
			if r.Succeeded() {
				outln(w, r.ClaimHandle)
			}
		}
		return nil
	}

	if !cc.Fmt.IsJSON() {
		out(w, "Run started %s, tree %s, %s SOL per claim wallet\n\n",
			rec.StartedAt.Format("2006-01-02 15:04:05 MST"), rec.TreeAddress, formatSOL(rec.FundingLamports))
	}
	return output.WriteResults(w, cc.Fmt.Format(), output.ResultsOutput{
		DryRun:  rec.DryRun,
		Results: rec.Results,
	})
}

// resultsIdentities prefers the identity file, then the ledger passphrase.
func resultsIdentities() ([]age.Identity, error) {
	if resultsIdentity != "" {
		path, err := config.ExpandPath(resultsIdentity)
		if err != nil {
			return nil, err
		}
		// #nosec G304 -- identity path is supplied by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, dropperr.WithDetails(dropperr.WithCause(dropperr.ErrNotFound, err), map[string]string{"identity": path})
		}
		return ledger.ParseIdentities(data)
	}
	if passphrase := os.Getenv(config.EnvLedgerSecret); passphrase != "" {
		return ledger.PassphraseIdentity(passphrase)
	}
	return nil, nil
}
