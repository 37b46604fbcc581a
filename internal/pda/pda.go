// Package pda derives every program address involved in a trade. Derivation
// is pure: identical inputs always produce the identical (address, bump) pair
// and no network access happens here. A malformed (zero) input key fails
// before anything is submitted.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	marketplaceSeed = "marketplace"
	treasurySeed    = "treasury"
	userAccountSeed = "user_account"
	escrowSeed      = "escrow"
	metadataSeed    = "metadata"
	editionSeed     = "edition"
)

// ErrMalformedKey wraps the offending input name.
type ErrMalformedKey struct {
	Name string
}

func (e ErrMalformedKey) Error() string {
	return fmt.Sprintf("malformed public key: %s", e.Name)
}

func requireKeys(keys map[string]solana.PublicKey) error {
	for name, key := range keys {
		if key.IsZero() {
			return ErrMalformedKey{Name: name}
		}
	}

	return nil
}

// Marketplace derives the marketplace PDA for an admin authority.
func Marketplace(authority, programId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"authority": authority, "programId": programId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress([][]byte{[]byte(marketplaceSeed), authority.Bytes()}, programId)
}

// Treasury derives the fee treasury owned by a marketplace.
func Treasury(marketplace, programId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"marketplace": marketplace, "programId": programId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress([][]byte{[]byte(treasurySeed), marketplace.Bytes()}, programId)
}

// UserAccount derives the per-identity registration account.
func UserAccount(user, programId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"user": user, "programId": programId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress([][]byte{[]byte(userAccountSeed), user.Bytes()}, programId)
}

// Listing derives the listing for a (marketplace, mint) pair. The seeds are
// the two addresses alone, no literal prefix.
func Listing(marketplace, nftMint, programId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"marketplace": marketplace, "nftMint": nftMint, "programId": programId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress([][]byte{marketplace.Bytes(), nftMint.Bytes()}, programId)
}

// Escrow derives the escrow for a listing.
func Escrow(listing, programId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"listing": listing, "programId": programId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress([][]byte{[]byte(escrowSeed), listing.Bytes()}, programId)
}

// Metadata derives the token metadata account. It lives under the metadata
// program, not the marketplace program.
func Metadata(nftMint, metadataProgramId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"nftMint": nftMint, "metadataProgramId": metadataProgramId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress(
		[][]byte{[]byte(metadataSeed), metadataProgramId.Bytes(), nftMint.Bytes()},
		metadataProgramId,
	)
}

// MasterEdition derives the master edition account for a mint.
func MasterEdition(nftMint, metadataProgramId solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := requireKeys(map[string]solana.PublicKey{"nftMint": nftMint, "metadataProgramId": metadataProgramId}); err != nil {
		return solana.PublicKey{}, 0, err
	}

	return solana.FindProgramAddress(
		[][]byte{[]byte(metadataSeed), metadataProgramId.Bytes(), nftMint.Bytes(), []byte(editionSeed)},
		metadataProgramId,
	)
}

// AssociatedTokenAccount derives the holding account for (wallet, mint). The
// wallet may be a PDA, as with the listing vault.
func AssociatedTokenAccount(wallet, nftMint solana.PublicKey) (solana.PublicKey, error) {
	if err := requireKeys(map[string]solana.PublicKey{"wallet": wallet, "nftMint": nftMint}); err != nil {
		return solana.PublicKey{}, err
	}

	addr, _, err := solana.FindAssociatedTokenAddress(wallet, nftMint)
	return addr, err
}

// Vault derives the program-controlled token account holding a listed NFT,
// the associated token account owned by the listing PDA.
func Vault(listing, nftMint solana.PublicKey) (solana.PublicKey, error) {
	return AssociatedTokenAccount(listing, nftMint)
}
