package keystore

import (
	"encoding/json"
	"os"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/service/mint"
	"github.com/mrz1836/cnftdrop/internal/solana"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// treeFile is the keys file layout. Unknown entries are ignored.
type treeFile struct {
	TreeAddress                    string `json:"treeAddress"`
	TreeAuthority                  string `json:"treeAuthority,omitempty"`
	CollectionMint                 string `json:"collectionMint"`
	CollectionMetadataAccount      string `json:"collectionMetadataAccount"`
	CollectionMasterEditionAccount string `json:"collectionMasterEditionAccount"`
}

// LoadTreeContext reads the tree and collection keys from a JSON file of
// base58 strings. Absent entries stay zero so the run can report them;
// an absent tree authority is derived from the tree address.
func LoadTreeContext(path string) (mint.TreeContext, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return mint.TreeContext{}, err
	}

	// #nosec G304 -- keys file path comes from config or flags
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return mint.TreeContext{}, dropperr.WithSuggestion(
				dropperr.WithDetails(dropperr.ErrNotFound, map[string]string{"keys_file": expanded}),
				"Point keys.tree_file or --keys at the file written when the tree was created",
			)
		}
		return mint.TreeContext{}, err
	}

	return ParseTreeContext(data)
}

// ParseTreeContext decodes keys file contents.
func ParseTreeContext(data []byte) (mint.TreeContext, error) {
	var raw treeFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return mint.TreeContext{}, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
	}

	var tc mint.TreeContext
	fields := []struct {
		name  string
		value string
		dst   *common.PublicKey
	}{
		{"treeAddress", raw.TreeAddress, &tc.TreeAddress},
		{"treeAuthority", raw.TreeAuthority, &tc.TreeAuthority},
		{"collectionMint", raw.CollectionMint, &tc.CollectionMint},
		{"collectionMetadataAccount", raw.CollectionMetadataAccount, &tc.CollectionMetadataAccount},
		{"collectionMasterEditionAccount", raw.CollectionMasterEditionAccount, &tc.CollectionMasterEditionAccount},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		key, err := solana.ParsePublicKey(f.value)
		if err != nil {
			return mint.TreeContext{}, dropperr.WithDetails(err, map[string]string{"key": f.name})
		}
		*f.dst = key
	}

	if tc.TreeAuthority == (common.PublicKey{}) && tc.TreeAddress != (common.PublicKey{}) {
		authority, err := bubblegum.FindTreeAuthority(tc.TreeAddress)
		if err != nil {
			return mint.TreeContext{}, dropperr.WithCause(dropperr.ErrInvalidAddress, err)
		}
		tc.TreeAuthority = authority
	}

	return tc, nil
}
