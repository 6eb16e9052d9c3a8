package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Transfer moves lamports from the payer to "to" and waits for commitment.
func (c *Client) Transfer(ctx context.Context, from types.Account, to common.PublicKey, lamports uint64, commitment Commitment) (string, error) {
	ix := system.Transfer(system.TransferParam{
		From:   from.PublicKey,
		To:     to,
		Amount: lamports,
	})
	return c.SendAndConfirm(ctx, []types.Instruction{ix}, from, nil, commitment)
}

// MintToCollection mints one compressed NFT into merkleTree on behalf of
// collectionMint and waits for the client's commitment. payer signs as fee
// payer, tree delegate and collection authority; leafOwner receives the leaf.
func (c *Client) MintToCollection(
	ctx context.Context,
	payer types.Account,
	merkleTree common.PublicKey,
	collectionMint common.PublicKey,
	collectionMetadata common.PublicKey,
	collectionEdition common.PublicKey,
	payload bubblegum.MetadataArgs,
	leafOwner common.PublicKey,
) (string, error) {
	ix, err := bubblegum.MintToCollectionV1(bubblegum.MintToCollectionV1Param{
		MerkleTree:         merkleTree,
		LeafOwner:          leafOwner,
		Payer:              payer.PublicKey,
		CollectionMint:     collectionMint,
		CollectionMetadata: collectionMetadata,
		CollectionEdition:  collectionEdition,
		Metadata:           payload,
	})
	if err != nil {
		return "", dropperr.WithCause(dropperr.ErrInvalidInput, err)
	}

	c.logger.Debug("minting %q to %s in tree %s", payload.Name, MaskKey(leafOwner.ToBase58()), MaskKey(merkleTree.ToBase58()))
	return c.SendAndConfirm(ctx, []types.Instruction{ix}, payer, nil, "")
}
