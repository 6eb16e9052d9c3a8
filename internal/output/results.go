package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mrz1836/cnftdrop/internal/service/mint"
	"github.com/mrz1836/cnftdrop/internal/solana"
)

// ResultsOutput is the JSON shape of a finished run.
type ResultsOutput struct {
	Total   int               `json:"total"`
	Failed  int               `json:"failed"`
	DryRun  bool              `json:"dry_run,omitempty"`
	Ledger  string            `json:"ledger,omitempty"`
	Results []mint.MintResult `json:"results"`
}

// ProgressLine describes one finished entry, claim link included.
func ProgressLine(u mint.ProgressUpdate) string {
	r := u.Result
	prefix := fmt.Sprintf("[%d/%d] %s", u.Completed, u.Total, r.Name)

	switch {
	case r.DryRun:
		return fmt.Sprintf("%s: dry run, claim wallet %s\n        claim link: %s", prefix, r.ClaimWallet, r.ClaimHandle)
	case r.Succeeded():
		return fmt.Sprintf("%s: minted %s\n        claim link: %s", prefix, r.MintTxSignature, r.ClaimHandle)
	case r.ClaimHandle != "" && r.FundingTxSignature != "":
		// Funded but not minted: the link still holds lamports
		return fmt.Sprintf("%s: %s\n        funded claim link: %s", prefix, r.ErrorKind, r.ClaimHandle)
	default:
		return fmt.Sprintf("%s: %s", prefix, r.ErrorKind)
	}
}

// WriteResults renders a run summary. Text output omits claim links, which
// were already printed per entry and are kept in the ledger.
func WriteResults(w io.Writer, format Format, out ResultsOutput) error {
	out.Total = len(out.Results)
	out.Failed = mint.Failed(out.Results)
	if format == FormatJSON {
		return writeJSON(w, out)
	}

	table := NewTable("#", "NAME", "RESULT", "CLAIM WALLET", "MINT TX")
	for _, r := range out.Results {
		result := "ok"
		switch {
		case r.DryRun:
			result = "dry-run"
		case !r.Succeeded():
			result = r.ErrorKind
		}
		table.AddRow(strconv.Itoa(r.CatalogIndex), r.Name, result, solana.MaskKey(r.ClaimWallet), solana.MaskKey(r.MintTxSignature))
	}
	if err := table.Render(w); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n%d entries, %d failed\n", out.Total, out.Failed); err != nil {
		return err
	}
	if out.Ledger != "" {
		if _, err := fmt.Fprintf(w, "Results written to %s\n", out.Ledger); err != nil {
			return err
		}
	}
	return nil
}
