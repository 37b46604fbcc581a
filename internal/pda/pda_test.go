package pda

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testProgramId  = solana.MustPublicKeyFromBase58("6aLg7Q1yji5fNMoGWFxS5nhcq3ZojGpf3rVyUQyM7Eg8")
	testMetadataId = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

func randomKey(t *testing.T) solana.PublicKey {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return key.PublicKey()
}

func TestMarketplace_Deterministic(t *testing.T) {
	authority := randomKey(t)

	first, firstBump, err := Marketplace(authority, testProgramId)
	require.NoError(t, err)

	second, secondBump, err := Marketplace(authority, testProgramId)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstBump, secondBump)
}

func TestMarketplace_RejectsZeroKey(t *testing.T) {
	_, _, err := Marketplace(solana.PublicKey{}, testProgramId)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrMalformedKey{})
}

func TestTreasury_DistinctFromMarketplace(t *testing.T) {
	marketplace, _, err := Marketplace(randomKey(t), testProgramId)
	require.NoError(t, err)

	treasury, _, err := Treasury(marketplace, testProgramId)
	require.NoError(t, err)

	assert.NotEqual(t, marketplace, treasury)
}

func TestUserAccount_DistinctPerUser(t *testing.T) {
	first, _, err := UserAccount(randomKey(t), testProgramId)
	require.NoError(t, err)

	second, _, err := UserAccount(randomKey(t), testProgramId)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestListing_DistinctPerMint(t *testing.T) {
	marketplace := randomKey(t)

	first, _, err := Listing(marketplace, randomKey(t), testProgramId)
	require.NoError(t, err)

	second, _, err := Listing(marketplace, randomKey(t), testProgramId)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestListing_RejectsZeroMint(t *testing.T) {
	_, _, err := Listing(randomKey(t), solana.PublicKey{}, testProgramId)
	require.Error(t, err)

	var malformed ErrMalformedKey
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "nftMint", malformed.Name)
}

func TestEscrow_DerivedFromListing(t *testing.T) {
	listing, _, err := Listing(randomKey(t), randomKey(t), testProgramId)
	require.NoError(t, err)

	escrow, _, err := Escrow(listing, testProgramId)
	require.NoError(t, err)

	again, _, err := Escrow(listing, testProgramId)
	require.NoError(t, err)

	assert.Equal(t, escrow, again)
	assert.NotEqual(t, listing, escrow)
}

func TestMetadata_MasterEditionDiffer(t *testing.T) {
	mint := randomKey(t)

	metadata, _, err := Metadata(mint, testMetadataId)
	require.NoError(t, err)

	edition, _, err := MasterEdition(mint, testMetadataId)
	require.NoError(t, err)

	assert.NotEqual(t, metadata, edition)
}

func TestVault_IsListingAssociatedTokenAccount(t *testing.T) {
	listing, _, err := Listing(randomKey(t), randomKey(t), testProgramId)
	require.NoError(t, err)

	mint := randomKey(t)

	vault, err := Vault(listing, mint)
	require.NoError(t, err)

	ata, err := AssociatedTokenAccount(listing, mint)
	require.NoError(t, err)

	assert.Equal(t, ata, vault)
}
