package pikavault

import (
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instructionBytes(t *testing.T, ix solana.Instruction) []byte {
	data, err := ix.Data()
	require.NoError(t, err)

	return data
}

func TestNewInitializeMarketplaceInstruction(t *testing.T) {
	admin := randomKey(t)
	marketplace := randomKey(t)
	treasury := randomKey(t)

	ix, err := NewInitializeMarketplaceInstruction(250, admin, marketplace, treasury)
	require.NoError(t, err)

	assert.Equal(t, ProgramID, ix.ProgramID())

	data := instructionBytes(t, ix)
	assert.Equal(t, InstructionInitializeMarketplace[:], data[:8])

	var args initializeMarketplaceArgs
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&args))
	assert.Equal(t, uint16(250), args.Fee)

	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, admin, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, marketplace, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, treasury, accounts[2].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[3].PublicKey)
}

func TestNewRegisterUserInstruction(t *testing.T) {
	user := randomKey(t)
	userAccount := randomKey(t)

	ix, err := NewRegisterUserInstruction(user, userAccount)
	require.NoError(t, err)

	// No args: the data is the discriminator alone.
	assert.Equal(t, InstructionRegisterUser[:], instructionBytes(t, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, user, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, userAccount, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)
}

func TestNewMintAndListInstruction(t *testing.T) {
	meta := MintAndListAccounts{
		Maker:          randomKey(t),
		UserAccount:    randomKey(t),
		Marketplace:    randomKey(t),
		NftMint:        randomKey(t),
		MakerAta:       randomKey(t),
		Vault:          randomKey(t),
		Listing:        randomKey(t),
		CollectionMint: randomKey(t),
		Metadata:       randomKey(t),
		MasterEdition:  randomKey(t),
	}

	ix, err := NewMintAndListInstruction("Pikachu", "PIKA", 1_500_000_000, `{"rarity":"holo"}`, "https://ipfs.io/ipfs/Qm", meta)
	require.NoError(t, err)

	data := instructionBytes(t, ix)
	assert.Equal(t, InstructionMintAndList[:], data[:8])

	var args mintAndListArgs
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&args))
	assert.Equal(t, "Pikachu", args.Name)
	assert.Equal(t, "PIKA", args.Symbol)
	assert.Equal(t, uint64(1_500_000_000), args.ListingPrice)
	assert.Equal(t, `{"rarity":"holo"}`, args.CardMetadata)
	assert.Equal(t, "https://ipfs.io/ipfs/Qm", args.ImageUrl)

	accounts := ix.Accounts()
	require.Len(t, accounts, 15)

	assert.Equal(t, meta.Maker, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)

	// The freshly generated mint signs its own creation.
	assert.Equal(t, meta.NftMint, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)
	assert.True(t, accounts[3].IsWritable)

	assert.Equal(t, meta.Vault, accounts[5].PublicKey)
	assert.Equal(t, meta.Listing, accounts[6].PublicKey)
	assert.Equal(t, solana.SysVarRentPubkey, accounts[10].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[11].PublicKey)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, accounts[12].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[13].PublicKey)
	assert.Equal(t, MetadataProgramID, accounts[14].PublicKey)
}

func TestNewPurchaseInstruction(t *testing.T) {
	meta := PurchaseAccounts{
		Buyer:         randomKey(t),
		BuyerAccount:  randomKey(t),
		SellerAccount: randomKey(t),
		Marketplace:   randomKey(t),
		Listing:       randomKey(t),
		Escrow:        randomKey(t),
		NftMint:       randomKey(t),
	}

	ix, err := NewPurchaseInstruction(meta)
	require.NoError(t, err)

	assert.Equal(t, InstructionPurchase[:], instructionBytes(t, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 8)

	// The buyer is the only signer.
	for i, account := range accounts {
		if i == 0 {
			assert.True(t, account.IsSigner)
			continue
		}
		assert.False(t, account.IsSigner, "account %d must not sign", i)
	}

	assert.Equal(t, meta.Escrow, accounts[5].PublicKey)
	assert.True(t, accounts[5].IsWritable)
	assert.Equal(t, meta.NftMint, accounts[6].PublicKey)
	assert.False(t, accounts[6].IsWritable)
}

func TestNewDelistInstruction(t *testing.T) {
	meta := DelistAccounts{
		Owner:       randomKey(t),
		UserAccount: randomKey(t),
		Marketplace: randomKey(t),
		NftMint:     randomKey(t),
		OwnerAta:    randomKey(t),
		Vault:       randomKey(t),
		Listing:     randomKey(t),
	}

	ix, err := NewDelistInstruction(meta)
	require.NoError(t, err)

	assert.Equal(t, InstructionDelist[:], instructionBytes(t, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 10)
	assert.Equal(t, meta.Owner, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, meta.OwnerAta, accounts[4].PublicKey)
	assert.True(t, accounts[4].IsWritable)
	assert.Equal(t, meta.Vault, accounts[5].PublicKey)
	assert.True(t, accounts[5].IsWritable)
}

func TestNewReleaseEscrowInstruction_NoSigners(t *testing.T) {
	meta := ReleaseEscrowAccounts{
		Seller:            randomKey(t),
		Buyer:             randomKey(t),
		Escrow:            randomKey(t),
		Listing:           randomKey(t),
		Marketplace:       randomKey(t),
		NftMint:           randomKey(t),
		Vault:             randomKey(t),
		BuyerTokenAccount: randomKey(t),
	}

	ix, err := NewReleaseEscrowInstruction(meta)
	require.NoError(t, err)

	assert.Equal(t, InstructionReleaseEscrow[:], instructionBytes(t, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 11)

	// The fee payer signs the transaction; no instruction account does.
	for i, account := range accounts {
		assert.False(t, account.IsSigner, "account %d must not sign", i)
	}

	assert.Equal(t, meta.Seller, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, meta.Buyer, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, meta.BuyerTokenAccount, accounts[7].PublicKey)
}

func TestNewRefundInstruction(t *testing.T) {
	meta := RefundAccounts{
		Buyer:         randomKey(t),
		BuyerAccount:  randomKey(t),
		SellerAccount: randomKey(t),
		Marketplace:   randomKey(t),
		Listing:       randomKey(t),
		Escrow:        randomKey(t),
	}

	ix, err := NewRefundInstruction(meta)
	require.NoError(t, err)

	assert.Equal(t, InstructionRefund[:], instructionBytes(t, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 7)
	assert.Equal(t, meta.Buyer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, meta.Escrow, accounts[5].PublicKey)
	assert.True(t, accounts[5].IsWritable)
	assert.Equal(t, solana.SystemProgramID, accounts[6].PublicKey)
}
