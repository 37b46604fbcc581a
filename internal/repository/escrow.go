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
	ErrEscrowNotFound = errors.New("escrow not found")
)

type EscrowRepository interface {
	GetEscrow(ctx context.Context, listing solana.PublicKey) (entity.Escrow, error)
	GetEscrowByAddress(ctx context.Context, address solana.PublicKey) (entity.Escrow, error)
}

type escrowRepository struct {
	session   wallet.Session
	programId solana.PublicKey
}

func NewEscrowRepository(session wallet.Session, programId solana.PublicKey) EscrowRepository {
	return escrowRepository{session, programId}
}

func (r escrowRepository) GetEscrow(ctx context.Context, listing solana.PublicKey) (entity.Escrow, error) {
	address, _, err := pda.Escrow(listing, r.programId)
	if err != nil {
		return entity.Escrow{}, err
	}

	return r.GetEscrowByAddress(ctx, address)
}

func (r escrowRepository) GetEscrowByAddress(ctx context.Context, address solana.PublicKey) (entity.Escrow, error) {
	data, err := r.session.FetchAccount(ctx, address)
	if err != nil {
		if errors.Is(err, wallet.ErrAccountNotFound) {
			return entity.Escrow{}, ErrEscrowNotFound
		}
		return entity.Escrow{}, err
	}

	return pikavault.DecodeEscrow(data)
}
