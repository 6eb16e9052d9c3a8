package bubblegum

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/near/borsh-go"
)

// TokenStandard values understood by Bubblegum. Only NonFungible is mintable.
const (
	TokenStandardNonFungible        uint8 = 0
	TokenStandardFungibleAsset      uint8 = 1
	TokenStandardFungible           uint8 = 2
	TokenStandardNonFungibleEdition uint8 = 3
)

// TokenProgramVersion values.
const (
	TokenProgramVersionOriginal  uint8 = 0
	TokenProgramVersionToken2022 uint8 = 1
)

// Creator is one entry of the creator list. Shares across a list sum to 100.
type Creator struct {
	Address  common.PublicKey
	Verified bool
	Share    uint8
}

// Collection links a leaf to its collection mint.
type Collection struct {
	Verified bool
	Key      common.PublicKey
}

// Uses limits how often a token can be used.
type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// MetadataArgs is the leaf metadata passed to mint instructions.
// Field order is the borsh layout; pointer fields encode as Option.
type MetadataArgs struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *uint8
	Collection           *Collection
	Uses                 *Uses
	TokenProgramVersion  uint8
	Creators             []Creator
}

// ShareTotal sums the creator shares.
func (m MetadataArgs) ShareTotal() int {
	total := 0
	for _, c := range m.Creators {
		total += int(c.Share)
	}
	return total
}

// WithCollection returns a copy of m bound to an unverified collection.
// Bubblegum verifies the collection inside mint_to_collection_v1.
func (m MetadataArgs) WithCollection(collectionMint common.PublicKey) MetadataArgs {
	m.Collection = &Collection{Verified: false, Key: collectionMint}
	m.Creators = append([]Creator(nil), m.Creators...)
	return m
}

// Encode serializes m with borsh.
func (m MetadataArgs) Encode() ([]byte, error) {
	data, err := borsh.Serialize(m)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata args: %w", err)
	}
	return data, nil
}

// Uint8 returns a pointer to v for the Option fields of MetadataArgs.
func Uint8(v uint8) *uint8 {
	return &v
}
