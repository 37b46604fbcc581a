package entity

import (
	"github.com/gagliardetto/solana-go"
)

// Marketplace is the decoded MarketPlace account. One exists per admin
// authority and its fee is fixed at initialization.
type Marketplace struct {
	Authority    solana.PublicKey `json:"authority"`
	Fee          uint16           `json:"fee"`
	Bump         uint8            `json:"bump"`
	TreasuryBump uint8            `json:"treasuryBump"`
}

const MaxFeeBasisPoints uint16 = 10000
