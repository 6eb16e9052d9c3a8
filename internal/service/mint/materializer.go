package mint

import (
	"github.com/blocto/solana-go-sdk/common"

	"github.com/mrz1836/cnftdrop/internal/catalog"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
)

// Materialize builds the compressed-mint payload for entry. The payer holds
// the full creator share; a non-nil claim key is appended with a zero share.
// The collection is left unset and attached when the instruction is built.
func Materialize(entry catalog.NFTMetadata, payer common.PublicKey, claim *common.PublicKey, opts Options) bubblegum.MetadataArgs {
	creators := []bubblegum.Creator{{Address: payer, Verified: false, Share: 100}}
	if claim != nil {
		creators = append(creators, bubblegum.Creator{Address: *claim, Verified: false, Share: 0})
	}

	return bubblegum.MetadataArgs{
		Name:                 entry.Name,
		Symbol:               entry.Symbol,
		URI:                  entry.Image,
		SellerFeeBasisPoints: opts.SellerFeeBasisPoints,
		PrimarySaleHappened:  false,
		IsMutable:            false,
		EditionNonce:         bubblegum.Uint8(0),
		TokenStandard:        bubblegum.Uint8(bubblegum.TokenStandardNonFungible),
		Collection:           nil,
		Uses:                 nil,
		TokenProgramVersion:  bubblegum.TokenProgramVersionOriginal,
		Creators:             creators,
	}
}
