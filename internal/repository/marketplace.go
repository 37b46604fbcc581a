package repository

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/pda"
	"github.com/pikavault/pikavault-go/internal/pikavault"
	"github.com/pikavault/pikavault-go/internal/wallet"
)

var (
	ErrMarketplaceNotFound = errors.New("marketplace not found")
)

type MarketplaceRepository interface {
	GetMarketplace(ctx context.Context, authority solana.PublicKey) (entity.Marketplace, error)
	GetMarketplaceByAddress(ctx context.Context, address solana.PublicKey) (entity.Marketplace, error)
}

type marketplaceRepository struct {
	session   wallet.Session
	programId solana.PublicKey
}

func NewMarketplaceRepository(session wallet.Session, programId solana.PublicKey) MarketplaceRepository {
	return marketplaceRepository{session, programId}
}

func (r marketplaceRepository) GetMarketplace(ctx context.Context, authority solana.PublicKey) (entity.Marketplace, error) {
	address, _, err := pda.Marketplace(authority, r.programId)
	if err != nil {
		return entity.Marketplace{}, err
	}

	return r.GetMarketplaceByAddress(ctx, address)
}

func (r marketplaceRepository) GetMarketplaceByAddress(ctx context.Context, address solana.PublicKey) (entity.Marketplace, error) {
	data, err := r.session.FetchAccount(ctx, address)
	if err != nil {
		if errors.Is(err, wallet.ErrAccountNotFound) {
			return entity.Marketplace{}, ErrMarketplaceNotFound
		}
		return entity.Marketplace{}, err
	}

	return pikavault.DecodeMarketplace(data)
}
