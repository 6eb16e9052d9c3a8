// Package bubblegum builds instructions for the Metaplex Bubblegum compressed NFT program.
package bubblegum

import (
	"crypto/sha256"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// Program addresses referenced by Bubblegum mints.
var (
	ProgramID                   = common.PublicKeyFromString("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	NoopProgramID               = common.PublicKeyFromString("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")
	AccountCompressionProgramID = common.PublicKeyFromString("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK")
	TokenMetadataProgramID      = common.MetaplexTokenMetaProgramID
	SystemProgramID             = common.SystemProgramID
)

// collectionCPISeed seeds the PDA Bubblegum signs collection CPIs with.
const collectionCPISeed = "collection_cpi"

// FindTreeAuthority derives the tree config PDA for a Merkle tree.
func FindTreeAuthority(merkleTree common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress([][]byte{merkleTree.Bytes()}, ProgramID)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("deriving tree authority: %w", err)
	}
	return pda, nil
}

// FindCollectionCPISigner derives the PDA Bubblegum uses to verify collections.
func FindCollectionCPISigner() (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress([][]byte{[]byte(collectionCPISeed)}, ProgramID)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("deriving collection cpi signer: %w", err)
	}
	return pda, nil
}

// discriminator returns the 8-byte Anchor selector for a global instruction.
func discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}
