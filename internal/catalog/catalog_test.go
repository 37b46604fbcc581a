package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubListingRepo struct {
	listings []entity.Listing
	scans    int
}

func (r *stubListingRepo) GetListing(ctx context.Context, marketplace, nftMint solana.PublicKey) (entity.Listing, error) {
	for _, listing := range r.listings {
		if listing.Account.NftAddress.Equals(nftMint) {
			return listing, nil
		}
	}

	return entity.Listing{}, repository.ErrListingNotFound
}

func (r *stubListingRepo) GetListingByAddress(ctx context.Context, address solana.PublicKey) (entity.Listing, error) {
	for _, listing := range r.listings {
		if listing.Address.Equals(address) {
			return listing, nil
		}
	}

	return entity.Listing{}, repository.ErrListingNotFound
}

func (r *stubListingRepo) GetAllListings(ctx context.Context) ([]entity.Listing, error) {
	r.scans++
	return r.listings, nil
}

func (r *stubListingRepo) GetListingsByOwner(ctx context.Context, owner solana.PublicKey) ([]entity.Listing, error) {
	owned := make([]entity.Listing, 0)
	for _, listing := range r.listings {
		if listing.Account.Owner.Equals(owner) {
			owned = append(owned, listing)
		}
	}

	return owned, nil
}

func randomKey(t *testing.T) solana.PublicKey {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return key.PublicKey()
}

func testListing(t *testing.T) entity.Listing {
	t.Helper()

	return entity.Listing{
		Address: randomKey(t),
		Account: entity.ListingAccount{
			Owner:        randomKey(t),
			NftAddress:   randomKey(t),
			CardMetadata: `{"name":"Pikachu","rarity":"holo"}`,
			ListingPrice: 1_000_000_000,
			Status:       entity.ListingActive,
			CreatedAt:    1700000000,
		},
	}
}

func TestRows_ServedFromCache(t *testing.T) {
	repo := &stubListingRepo{listings: []entity.Listing{testListing(t)}}
	service := NewService(repo, time.Minute)

	first, err := service.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Pikachu", first[0].Name)

	second, err := service.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, repo.scans)
}

func TestRows_InvalidateForcesRescan(t *testing.T) {
	repo := &stubListingRepo{listings: []entity.Listing{testListing(t)}}
	service := NewService(repo, time.Minute)

	_, err := service.Rows(context.Background())
	require.NoError(t, err)

	service.Invalidate()

	_, err = service.Rows(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.scans)
}

func TestRowsByOwner(t *testing.T) {
	mine := testListing(t)
	other := testListing(t)
	repo := &stubListingRepo{listings: []entity.Listing{mine, other}}
	service := NewService(repo, time.Minute)

	rows, err := service.RowsByOwner(context.Background(), mine.Account.Owner)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, mine.Address, rows[0].Listing)
}

func TestRow(t *testing.T) {
	listing := testListing(t)
	repo := &stubListingRepo{listings: []entity.Listing{listing}}
	service := NewService(repo, time.Minute)

	row, err := service.Row(context.Background(), randomKey(t), listing.Account.NftAddress)
	require.NoError(t, err)

	assert.Equal(t, listing.Address, row.Listing)
	assert.Equal(t, "holo", row.Rarity)
}

func TestRow_NotFound(t *testing.T) {
	service := NewService(&stubListingRepo{}, time.Minute)

	_, err := service.Row(context.Background(), randomKey(t), randomKey(t))
	assert.ErrorIs(t, err, repository.ErrListingNotFound)
}
