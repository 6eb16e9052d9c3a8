// Package ledger writes the results of a run, claim links included, to a
// new file that is never overwritten, optionally sealed with age.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"

	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/fileutil"
	"github.com/mrz1836/cnftdrop/internal/service/mint"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// FormatVersion is written into every results file.
const FormatVersion = 1

// Record is the content of one results file.
type Record struct {
	Version         int               `json:"version"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
	DryRun          bool              `json:"dry_run,omitempty"`
	Payer           string            `json:"payer"`
	TreeAddress     string            `json:"tree_address"`
	CollectionMint  string            `json:"collection_mint"`
	FundingLamports uint64            `json:"funding_lamports"`
	Failed          int               `json:"failed"`
	Results         []mint.MintResult `json:"results"`
}

// DefaultPath names a results file in dir after when the run started.
func DefaultPath(dir string, started time.Time, sealed bool) string {
	name := "run-" + started.UTC().Format("20060102-150405") + ".json"
	if sealed {
		name += ".age"
	}
	return filepath.Join(dir, name)
}

// Write stores rec at path. An existing file is an error: results hold the
// only copy of each claim secret.
func Write(path string, rec Record, sealing Sealing) error {
	if rec.Version == 0 {
		rec.Version = FormatVersion
	}
	rec.Failed = mint.Failed(rec.Results)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	data = append(data, '\n')

	if sealing.Enabled() {
		recipients, err := sealing.recipients()
		if err != nil {
			return err
		}
		if data, err = seal(data, recipients); err != nil {
			return fmt.Errorf("encrypting results: %w", err)
		}
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return err
	}
	if err := fileutil.WriteNew(expanded, data, 0o600); err != nil {
		if dropperr.Is(err, fileutil.ErrExists) {
			return dropperr.WithDetails(dropperr.ErrInvalidInput, map[string]string{"results": expanded + " already exists"})
		}
		return err
	}
	return nil
}

// Read loads a results file, decrypting it with identities when sealed.
func Read(path string, identities []age.Identity) (*Record, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- results path is supplied by the operator
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dropperr.WithDetails(dropperr.ErrNotFound, map[string]string{"results": expanded})
		}
		return nil, err
	}

	if isSealed(data) {
		if len(identities) == 0 {
			return nil, dropperr.WithSuggestion(dropperr.ErrDecryptionFailed, "Pass --identity or set CNFTDROP_LEDGER_PASSPHRASE")
		}
		if data, err = open(data, identities); err != nil {
			return nil, err
		}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
	}
	return &rec, nil
}
