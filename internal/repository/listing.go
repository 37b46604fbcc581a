package repository

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/pda"
	"github.com/pikavault/pikavault-go/internal/pikavault"
	"github.com/pikavault/pikavault-go/internal/wallet"
	"go.uber.org/zap"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

type ListingRepository interface {
	GetListing(ctx context.Context, marketplace, nftMint solana.PublicKey) (entity.Listing, error)
	GetListingByAddress(ctx context.Context, address solana.PublicKey) (entity.Listing, error)
	GetAllListings(ctx context.Context) ([]entity.Listing, error)
	GetListingsByOwner(ctx context.Context, owner solana.PublicKey) ([]entity.Listing, error)
}

type listingRepository struct {
	session   wallet.Session
	programId solana.PublicKey
}

func NewListingRepository(session wallet.Session, programId solana.PublicKey) ListingRepository {
	return listingRepository{session, programId}
}

func (r listingRepository) GetListing(ctx context.Context, marketplace, nftMint solana.PublicKey) (entity.Listing, error) {
	address, _, err := pda.Listing(marketplace, nftMint, r.programId)
	if err != nil {
		return entity.Listing{}, err
	}

	return r.GetListingByAddress(ctx, address)
}

func (r listingRepository) GetListingByAddress(ctx context.Context, address solana.PublicKey) (entity.Listing, error) {
	data, err := r.session.FetchAccount(ctx, address)
	if err != nil {
		if errors.Is(err, wallet.ErrAccountNotFound) {
			return entity.Listing{}, ErrListingNotFound
		}
		return entity.Listing{}, err
	}

	account, err := pikavault.DecodeListing(data)
	if err != nil {
		return entity.Listing{}, err
	}

	return entity.Listing{Address: address, Account: account}, nil
}

func (r listingRepository) GetAllListings(ctx context.Context) ([]entity.Listing, error) {
	return r.scan(ctx, []rpc.RPCFilter{discriminatorFilter()})
}

// GetListingsByOwner filters server side with a memcmp over the serialized
// owner field, so the node only returns the owner's listings.
func (r listingRepository) GetListingsByOwner(ctx context.Context, owner solana.PublicKey) ([]entity.Listing, error) {
	if owner.IsZero() {
		return nil, pikavault.ValidationError{Field: "owner", Reason: "zero public key"}
	}

	return r.scan(ctx, []rpc.RPCFilter{
		discriminatorFilter(),
		{
			Memcmp: &rpc.RPCFilterMemcmp{
				Offset: pikavault.ListingOwnerOffset,
				Bytes:  solana.Base58(owner.Bytes()),
			},
		},
	})
}

func (r listingRepository) scan(ctx context.Context, filters []rpc.RPCFilter) ([]entity.Listing, error) {
	accounts, err := r.session.ScanProgramAccounts(ctx, r.programId, filters)
	if err != nil {
		return nil, err
	}

	listings := make([]entity.Listing, 0, len(accounts))
	for _, keyed := range accounts {
		account, err := pikavault.DecodeListing(keyed.Account.Data.GetBinary())
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("address", keyed.Pubkey.String())).Error("Listing scan: corrupt account")
			return nil, err
		}

		listings = append(listings, entity.Listing{Address: keyed.Pubkey, Account: account})
	}

	return listings, nil
}

func discriminatorFilter() rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: 0,
			Bytes:  solana.Base58(pikavault.AccountListing[:]),
		},
	}
}
