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

type UserRepository interface {
	GetUser(ctx context.Context, user solana.PublicKey) (entity.Registration, error)
}

type userRepository struct {
	session   wallet.Session
	programId solana.PublicKey
}

func NewUserRepository(session wallet.Session, programId solana.PublicKey) UserRepository {
	return userRepository{session, programId}
}

// GetUser returns a tagged registration outcome. Account absence is the
// NotRegistered case, not an error; a layout mismatch is still fatal.
func (r userRepository) GetUser(ctx context.Context, user solana.PublicKey) (entity.Registration, error) {
	address, _, err := pda.UserAccount(user, r.programId)
	if err != nil {
		return entity.Registration{}, err
	}

	data, err := r.session.FetchAccount(ctx, address)
	if err != nil {
		if errors.Is(err, wallet.ErrAccountNotFound) {
			return entity.Registration{Registered: false, Address: address}, nil
		}
		return entity.Registration{}, err
	}

	account, err := pikavault.DecodeUserAccount(data)
	if err != nil {
		return entity.Registration{}, err
	}

	return entity.Registration{Registered: true, Account: &account, Address: address}, nil
}
