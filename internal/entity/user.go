package entity

import (
	"github.com/gagliardetto/solana-go"
)

// UserAccount is the decoded per-participant account. Absence on chain means
// the identity never registered.
type UserAccount struct {
	Authority solana.PublicKey `json:"authority"`
	Bump      uint8            `json:"bump"`
	NftSold   uint64           `json:"nftSold"`
	NftBought uint64           `json:"nftBought"`
	NftListed uint64           `json:"nftListed"`
	CreatedAt int64            `json:"createdAt"`
}

// Registration is the tagged result of a user lookup, so call sites never
// have to infer registration from a nil account.
type Registration struct {
	Registered bool             `json:"registered"`
	Account    *UserAccount     `json:"account,omitempty"`
	Address    solana.PublicKey `json:"address"`
}
