package pikavault

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) solana.PublicKey {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return key.PublicKey()
}

func TestDecodeMarketplace(t *testing.T) {
	marketplace := entity.Marketplace{
		Authority:    randomKey(t),
		Fee:          250,
		Bump:         254,
		TreasuryBump: 253,
	}

	data, err := EncodeMarketplace(marketplace)
	require.NoError(t, err)

	decoded, err := DecodeMarketplace(data)
	require.NoError(t, err)
	assert.Equal(t, marketplace, decoded)
}

func TestDecodeUserAccount(t *testing.T) {
	user := entity.UserAccount{
		Authority: randomKey(t),
		Bump:      255,
		NftSold:   3,
		NftBought: 1,
		NftListed: 7,
		CreatedAt: 1700000000,
	}

	data, err := EncodeUserAccount(user)
	require.NoError(t, err)

	decoded, err := DecodeUserAccount(data)
	require.NoError(t, err)
	assert.Equal(t, user, decoded)
}

func TestDecodeListing(t *testing.T) {
	listing := entity.ListingAccount{
		Owner:        randomKey(t),
		NftAddress:   randomKey(t),
		CardMetadata: `{"name":"Pikachu","rarity":"holo"}`,
		ListingPrice: 1_500_000_000,
		Status:       entity.ListingSold,
		CreatedAt:    1700000001,
		ImageUrl:     "https://ipfs.io/ipfs/QmExample",
		Bump:         252,
	}

	data, err := EncodeListing(listing)
	require.NoError(t, err)

	decoded, err := DecodeListing(data)
	require.NoError(t, err)
	assert.Equal(t, listing, decoded)
	assert.Equal(t, entity.ListingSold, decoded.Status)
}

func TestDecodeEscrow(t *testing.T) {
	escrow := entity.Escrow{
		Seller:       randomKey(t),
		Buyer:        randomKey(t),
		Bump:         251,
		NftMint:      randomKey(t),
		SaleAmount:   1_500_000_000,
		LockedAmount: 1_500_000_000,
		Timestamp:    1700000002,
	}

	data, err := EncodeEscrow(escrow)
	require.NoError(t, err)

	decoded, err := DecodeEscrow(data)
	require.NoError(t, err)
	assert.Equal(t, escrow, decoded)
}

func TestDecode_DiscriminatorMismatch(t *testing.T) {
	data, err := EncodeEscrow(entity.Escrow{Seller: randomKey(t), Buyer: randomKey(t)})
	require.NoError(t, err)

	// Escrow bytes presented as a listing must fail loudly, not decode into
	// garbage fields.
	_, err = DecodeListing(data)
	require.Error(t, err)

	var decodeErr DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "listingAccount", decodeErr.Account)
	assert.Equal(t, "discriminator mismatch", decodeErr.Reason)
}

func TestDecode_Truncated(t *testing.T) {
	_, err := DecodeMarketplace([]byte{192, 137, 219})
	require.Error(t, err)

	var decodeErr DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "marketplace", decodeErr.Account)
}

func TestDecode_TruncatedBody(t *testing.T) {
	data, err := EncodeListing(entity.ListingAccount{
		Owner:        randomKey(t),
		NftAddress:   randomKey(t),
		CardMetadata: "{}",
		ListingPrice: 1,
	})
	require.NoError(t, err)

	_, err = DecodeListing(data[:len(data)-4])
	require.Error(t, err)
	assert.ErrorAs(t, err, &DecodeError{})
}
