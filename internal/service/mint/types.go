package mint

import (
	"github.com/blocto/solana-go-sdk/common"
)

// TreeContext identifies the pre-existing Merkle tree and the collection
// its leaves are minted into. It is read-only during a run.
type TreeContext struct {
	TreeAddress                    common.PublicKey
	TreeAuthority                  common.PublicKey
	CollectionMint                 common.PublicKey
	CollectionMetadataAccount      common.PublicKey
	CollectionMasterEditionAccount common.PublicKey
}

// Missing lists the required fields that are unset, by keys-file name.
func (t TreeContext) Missing() []string {
	var missing []string
	zero := common.PublicKey{}
	if t.TreeAddress == zero {
		missing = append(missing, "treeAddress")
	}
	if t.CollectionMint == zero {
		missing = append(missing, "collectionMint")
	}
	if t.CollectionMetadataAccount == zero {
		missing = append(missing, "collectionMetadataAccount")
	}
	if t.CollectionMasterEditionAccount == zero {
		missing = append(missing, "collectionMasterEditionAccount")
	}
	return missing
}

// Options are the fixed parts of every minted payload.
type Options struct {
	SellerFeeBasisPoints uint16
	// IncludeClaimCreator lists the claim wallet as a 0% creator.
	IncludeClaimCreator bool
}

// MintResult is the outcome of one catalog entry.
type MintResult struct {
	CatalogIndex       int    `json:"catalog_index"`
	Name               string `json:"name"`
	ClaimWallet        string `json:"claim_wallet,omitempty"`
	ClaimHandle        string `json:"claim_handle,omitempty"`
	FundingTxSignature string `json:"funding_tx_signature,omitempty"`
	MintTxSignature    string `json:"mint_tx_signature,omitempty"`
	ErrorKind          string `json:"error_kind,omitempty"`
	Error              string `json:"error,omitempty"`
	DryRun             bool   `json:"dry_run,omitempty"`
}

// Succeeded reports whether the entry was minted.
func (r MintResult) Succeeded() bool {
	return r.MintTxSignature != "" && r.ErrorKind == "" && r.Error == ""
}

// Failed counts the entries that did not succeed.
// Dry-run entries are not failures.
func Failed(results []MintResult) int {
	n := 0
	for _, r := range results {
		if !r.DryRun && !r.Succeeded() {
			n++
		}
	}
	return n
}

// ProgressUpdate is reported once per finished entry.
type ProgressUpdate struct {
	Completed int
	Total     int
	Result    MintResult
}

// ProgressCallback is called after every entry.
type ProgressCallback func(ProgressUpdate)
