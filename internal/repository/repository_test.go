package repository

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/pda"
	"github.com/pikavault/pikavault-go/internal/pikavault"
	"github.com/pikavault/pikavault-go/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSession serves fixed account bytes from memory and records the filters
// of every scan.
type stubSession struct {
	accounts    map[solana.PublicKey][]byte
	scanResult  rpc.GetProgramAccountsResult
	scanFilters []rpc.RPCFilter
}

func newStubSession() *stubSession {
	return &stubSession{accounts: make(map[solana.PublicKey][]byte)}
}

func (s *stubSession) Identity() (solana.PublicKey, error) {
	return solana.PublicKey{}, wallet.ErrNoIdentity
}

func (s *stubSession) CanSign() bool {
	return false
}

func (s *stubSession) FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	if data, ok := s.accounts[address]; ok {
		return data, nil
	}

	return nil, wallet.ErrAccountNotFound
}

func (s *stubSession) ScanProgramAccounts(ctx context.Context, program solana.PublicKey, filters []rpc.RPCFilter) (rpc.GetProgramAccountsResult, error) {
	s.scanFilters = filters
	return s.scanResult, nil
}

func (s *stubSession) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	return 0, nil
}

func (s *stubSession) SubmitAndConfirm(ctx context.Context, instructions []solana.Instruction, signers []solana.PrivateKey) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func keyedAccount(t *testing.T, address solana.PublicKey, data []byte) *rpc.KeyedAccount {
	t.Helper()

	wrapped := rpc.DataBytesOrJSONFromBytes(data)

	return &rpc.KeyedAccount{
		Pubkey:  address,
		Account: &rpc.Account{Data: wrapped},
	}
}

func randomKey(t *testing.T) solana.PublicKey {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return key.PublicKey()
}

func TestMarketplaceRepository_GetMarketplace(t *testing.T) {
	session := newStubSession()
	repo := NewMarketplaceRepository(session, pikavault.ProgramID)

	authority := randomKey(t)
	address, _, err := pda.Marketplace(authority, pikavault.ProgramID)
	require.NoError(t, err)

	marketplace := entity.Marketplace{Authority: authority, Fee: 500, Bump: 254, TreasuryBump: 253}
	session.accounts[address], err = pikavault.EncodeMarketplace(marketplace)
	require.NoError(t, err)

	found, err := repo.GetMarketplace(context.Background(), authority)
	require.NoError(t, err)
	assert.Equal(t, marketplace, found)
}

func TestMarketplaceRepository_NotFound(t *testing.T) {
	repo := NewMarketplaceRepository(newStubSession(), pikavault.ProgramID)

	_, err := repo.GetMarketplace(context.Background(), randomKey(t))
	assert.ErrorIs(t, err, ErrMarketplaceNotFound)
}

func TestUserRepository_NotRegistered(t *testing.T) {
	repo := NewUserRepository(newStubSession(), pikavault.ProgramID)

	user := randomKey(t)
	address, _, err := pda.UserAccount(user, pikavault.ProgramID)
	require.NoError(t, err)

	registration, err := repo.GetUser(context.Background(), user)
	require.NoError(t, err)

	assert.False(t, registration.Registered)
	assert.Nil(t, registration.Account)
	assert.Equal(t, address, registration.Address)
}

func TestUserRepository_Registered(t *testing.T) {
	session := newStubSession()
	repo := NewUserRepository(session, pikavault.ProgramID)

	user := randomKey(t)
	address, _, err := pda.UserAccount(user, pikavault.ProgramID)
	require.NoError(t, err)

	account := entity.UserAccount{Authority: user, Bump: 255, NftSold: 2, NftBought: 1, NftListed: 4, CreatedAt: 1700000000}
	session.accounts[address], err = pikavault.EncodeUserAccount(account)
	require.NoError(t, err)

	registration, err := repo.GetUser(context.Background(), user)
	require.NoError(t, err)

	assert.True(t, registration.Registered)
	require.NotNil(t, registration.Account)
	assert.Equal(t, account, *registration.Account)
}

func TestUserRepository_CorruptAccount(t *testing.T) {
	session := newStubSession()
	repo := NewUserRepository(session, pikavault.ProgramID)

	user := randomKey(t)
	address, _, err := pda.UserAccount(user, pikavault.ProgramID)
	require.NoError(t, err)

	// Wrong discriminator: a decode failure, never a NotRegistered outcome.
	session.accounts[address], err = pikavault.EncodeEscrow(entity.Escrow{Seller: user, Buyer: user})
	require.NoError(t, err)

	_, err = repo.GetUser(context.Background(), user)
	require.Error(t, err)
	assert.ErrorAs(t, err, &pikavault.DecodeError{})
}

func TestListingRepository_GetListing(t *testing.T) {
	session := newStubSession()
	repo := NewListingRepository(session, pikavault.ProgramID)

	marketplace := randomKey(t)
	mint := randomKey(t)
	address, _, err := pda.Listing(marketplace, mint, pikavault.ProgramID)
	require.NoError(t, err)

	account := entity.ListingAccount{
		Owner:        randomKey(t),
		NftAddress:   mint,
		CardMetadata: "{}",
		ListingPrice: 1_000_000_000,
		Status:       entity.ListingActive,
		CreatedAt:    1700000000,
		ImageUrl:     "https://ipfs.io/ipfs/Qm",
		Bump:         254,
	}
	session.accounts[address], err = pikavault.EncodeListing(account)
	require.NoError(t, err)

	listing, err := repo.GetListing(context.Background(), marketplace, mint)
	require.NoError(t, err)

	assert.Equal(t, address, listing.Address)
	assert.Equal(t, account, listing.Account)
}

func TestListingRepository_NotFound(t *testing.T) {
	repo := NewListingRepository(newStubSession(), pikavault.ProgramID)

	_, err := repo.GetListing(context.Background(), randomKey(t), randomKey(t))
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestListingRepository_GetAllListings(t *testing.T) {
	session := newStubSession()
	repo := NewListingRepository(session, pikavault.ProgramID)

	account := entity.ListingAccount{Owner: randomKey(t), NftAddress: randomKey(t), CardMetadata: "{}", ListingPrice: 1}
	data, err := pikavault.EncodeListing(account)
	require.NoError(t, err)

	address := randomKey(t)
	session.scanResult = rpc.GetProgramAccountsResult{keyedAccount(t, address, data)}

	listings, err := repo.GetAllListings(context.Background())
	require.NoError(t, err)

	require.Len(t, listings, 1)
	assert.Equal(t, address, listings[0].Address)
	assert.Equal(t, account, listings[0].Account)

	// The scan narrows to listing accounts by discriminator.
	require.Len(t, session.scanFilters, 1)
	require.NotNil(t, session.scanFilters[0].Memcmp)
	assert.Equal(t, uint64(0), session.scanFilters[0].Memcmp.Offset)
	assert.Equal(t, solana.Base58(pikavault.AccountListing[:]), session.scanFilters[0].Memcmp.Bytes)
}

func TestListingRepository_GetListingsByOwner(t *testing.T) {
	session := newStubSession()
	repo := NewListingRepository(session, pikavault.ProgramID)

	owner := randomKey(t)

	_, err := repo.GetListingsByOwner(context.Background(), owner)
	require.NoError(t, err)

	require.Len(t, session.scanFilters, 2)
	require.NotNil(t, session.scanFilters[1].Memcmp)
	assert.Equal(t, uint64(pikavault.ListingOwnerOffset), session.scanFilters[1].Memcmp.Offset)
	assert.Equal(t, solana.Base58(owner.Bytes()), session.scanFilters[1].Memcmp.Bytes)
}

func TestListingRepository_GetListingsByOwner_ZeroKey(t *testing.T) {
	repo := NewListingRepository(newStubSession(), pikavault.ProgramID)

	_, err := repo.GetListingsByOwner(context.Background(), solana.PublicKey{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &pikavault.ValidationError{})
}

func TestEscrowRepository_GetEscrow(t *testing.T) {
	session := newStubSession()
	repo := NewEscrowRepository(session, pikavault.ProgramID)

	listing := randomKey(t)
	address, _, err := pda.Escrow(listing, pikavault.ProgramID)
	require.NoError(t, err)

	escrow := entity.Escrow{
		Seller:       randomKey(t),
		Buyer:        randomKey(t),
		Bump:         255,
		NftMint:      randomKey(t),
		SaleAmount:   5,
		LockedAmount: 5,
		Timestamp:    1700000000,
	}
	session.accounts[address], err = pikavault.EncodeEscrow(escrow)
	require.NoError(t, err)

	found, err := repo.GetEscrow(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, escrow, found)
}

func TestEscrowRepository_NotFound(t *testing.T) {
	repo := NewEscrowRepository(newStubSession(), pikavault.ProgramID)

	_, err := repo.GetEscrow(context.Background(), randomKey(t))
	assert.ErrorIs(t, err, ErrEscrowNotFound)
}
