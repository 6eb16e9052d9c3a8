package bubblegum

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// ErrInvalidCreatorShares is returned when creator shares do not sum to 100.
var ErrInvalidCreatorShares = errors.New("creator shares must sum to 100")

// MintToCollectionV1Param holds the accounts of a mint_to_collection_v1 call.
// The payer doubles as tree delegate and collection authority.
type MintToCollectionV1Param struct {
	MerkleTree         common.PublicKey
	TreeAuthority      common.PublicKey // derived from MerkleTree when zero
	LeafOwner          common.PublicKey
	LeafDelegate       common.PublicKey // defaults to LeafOwner when zero
	Payer              common.PublicKey
	CollectionMint     common.PublicKey
	CollectionMetadata common.PublicKey
	CollectionEdition  common.PublicKey
	Metadata           MetadataArgs
}

type mintToCollectionV1Data struct {
	Discriminator [8]byte
	Metadata      MetadataArgs
}

// MintToCollectionV1 builds the instruction minting one leaf into a collection.
// The metadata is bound to CollectionMint before encoding.
func MintToCollectionV1(param MintToCollectionV1Param) (types.Instruction, error) {
	if param.Metadata.ShareTotal() != 100 {
		return types.Instruction{}, fmt.Errorf("%w: got %d", ErrInvalidCreatorShares, param.Metadata.ShareTotal())
	}

	treeAuthority := param.TreeAuthority
	if treeAuthority == (common.PublicKey{}) {
		derived, err := FindTreeAuthority(param.MerkleTree)
		if err != nil {
			return types.Instruction{}, err
		}
		treeAuthority = derived
	}

	leafDelegate := param.LeafDelegate
	if leafDelegate == (common.PublicKey{}) {
		leafDelegate = param.LeafOwner
	}

	cpiSigner, err := FindCollectionCPISigner()
	if err != nil {
		return types.Instruction{}, err
	}

	data, err := borsh.Serialize(mintToCollectionV1Data{
		Discriminator: discriminator("mint_to_collection_v1"),
		Metadata:      param.Metadata.WithCollection(param.CollectionMint),
	})
	if err != nil {
		return types.Instruction{}, fmt.Errorf("encoding mint_to_collection_v1: %w", err)
	}

	return types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: treeAuthority, IsSigner: false, IsWritable: true},
			{PubKey: param.LeafOwner, IsSigner: false, IsWritable: false},
			{PubKey: leafDelegate, IsSigner: false, IsWritable: false},
			{PubKey: param.MerkleTree, IsSigner: false, IsWritable: true},
			{PubKey: param.Payer, IsSigner: true, IsWritable: true},
			{PubKey: param.Payer, IsSigner: true, IsWritable: false}, // tree delegate
			{PubKey: param.Payer, IsSigner: true, IsWritable: false}, // collection authority
			// No delegate record: the program ID stands in for the optional account
			{PubKey: ProgramID, IsSigner: false, IsWritable: false},
			{PubKey: param.CollectionMint, IsSigner: false, IsWritable: false},
			{PubKey: param.CollectionMetadata, IsSigner: false, IsWritable: true},
			{PubKey: param.CollectionEdition, IsSigner: false, IsWritable: false},
			{PubKey: cpiSigner, IsSigner: false, IsWritable: false},
			{PubKey: NoopProgramID, IsSigner: false, IsWritable: false},
			{PubKey: AccountCompressionProgramID, IsSigner: false, IsWritable: false},
			{PubKey: TokenMetadataProgramID, IsSigner: false, IsWritable: false},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}
