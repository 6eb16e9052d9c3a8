package cli

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/spf13/cobra"

	"github.com/mrz1836/cnftdrop/internal/keystore"
	"github.com/mrz1836/cnftdrop/internal/output"
	"github.com/mrz1836/cnftdrop/internal/service/mint"
)

// keysCmd is the parent command for tree and collection keys.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Inspect tree and collection keys",
	Long:  `Inspect the keys file naming the Merkle tree and collection a run mints into.`,
}

// keysShowCmd prints the loaded tree context.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tree and collection keys",
	Long: `Load the keys file and print every key a mint run uses. A missing tree
authority is derived from the tree address. Keys a run requires but the file
lacks are listed as missing.

Example:
  cnftdrop keys show
  cnftdrop keys show --keys .local_keys/keys.json -o json`,
	RunE: runKeysShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var keysFile string

// keysOutput is the JSON shape of keys show.
type keysOutput struct {
	File                           string   `json:"file"`
	TreeAddress                    string   `json:"treeAddress,omitempty"`
	TreeAuthority                  string   `json:"treeAuthority,omitempty"`
	CollectionMint                 string   `json:"collectionMint,omitempty"`
	CollectionMetadataAccount      string   `json:"collectionMetadataAccount,omitempty"`
	CollectionMasterEditionAccount string   `json:"collectionMasterEditionAccount,omitempty"`
	Missing                        []string `json:"missing,omitempty"`
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysShowCmd)

	keysShowCmd.Flags().StringVar(&keysFile, "keys", "", "tree and collection keys file (default: keys.tree_file)")
}

func runKeysShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	path := firstNonEmpty(keysFile, cc.Cfg.Keys.TreeFile)

	tree, err := keystore.LoadTreeContext(path)
	if err != nil {
		return err
	}

	result := describeTree(path, tree)
	if cc.Fmt.IsJSON() {
		return cc.Fmt.Print(result)
	}

	table := output.NewTable("KEY", "ADDRESS")
	table.AddRow("treeAddress", result.TreeAddress)
	table.AddRow("treeAuthority", result.TreeAuthority)
	table.AddRow("collectionMint", result.CollectionMint)
	table.AddRow("collectionMetadataAccount", result.CollectionMetadataAccount)
	table.AddRow("collectionMasterEditionAccount", result.CollectionMasterEditionAccount)

	w := cmd.OutOrStdout()
	out(w, "Keys file: %s\n\n", result.File)
	if err := table.Render(w); err != nil {
		return err
	}
	for _, name := range result.Missing {
		output.Warnf(cmd.ErrOrStderr(), "%s is missing; mint runs will refuse to start", name)
	}
	return nil
}

func describeTree(path string, tree mint.TreeContext) keysOutput {
	return keysOutput{
		File:                           path,
		TreeAddress:                    keyString(tree.TreeAddress),
		TreeAuthority:                  keyString(tree.TreeAuthority),
		CollectionMint:                 keyString(tree.CollectionMint),
		CollectionMetadataAccount:      keyString(tree.CollectionMetadataAccount),
		CollectionMasterEditionAccount: keyString(tree.CollectionMasterEditionAccount),
		Missing:                        tree.Missing(),
	}
}

// keyString renders an unset key as empty rather than the system program.
func keyString(k common.PublicKey) string {
	if k == (common.PublicKey{}) {
		return ""
	}
	return k.ToBase58()
}
