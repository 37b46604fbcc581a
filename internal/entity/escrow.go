package entity

import (
	"github.com/gagliardetto/solana-go"
)

// Escrow is the decoded escrow account created by purchase. Existence implies
// the listing was purchased and funds are custodied; release and refund are
// mutually exclusive one-shot resolutions.
type Escrow struct {
	Seller       solana.PublicKey `json:"seller"`
	Buyer        solana.PublicKey `json:"buyer"`
	Bump         uint8            `json:"bump"`
	NftMint      solana.PublicKey `json:"nftMint"`
	SaleAmount   uint64           `json:"saleAmount"`
	LockedAmount uint64           `json:"lockedAmount"`
	Timestamp    int64            `json:"timestamp"`
}
