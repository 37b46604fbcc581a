package entity

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gosimple/slug"
)

type ListingStatus uint8

// Variant order matches the on-chain enum.
const (
	ListingActive ListingStatus = iota
	ListingSold
	ListingUnlisted
)

func (s ListingStatus) String() string {
	switch s {
	case ListingActive:
		return "active"
	case ListingSold:
		return "sold"
	case ListingUnlisted:
		return "unlisted"
	}

	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// Terminal reports whether no further economic operation may target the
// listing. Sold listings still await escrow resolution so they are not
// terminal here.
func (s ListingStatus) Terminal() bool {
	return s == ListingUnlisted
}

// ListingAccount is the decoded listing for one (marketplace, mint) pair.
type ListingAccount struct {
	Owner        solana.PublicKey `json:"owner"`
	NftAddress   solana.PublicKey `json:"nftAddress"`
	CardMetadata string           `json:"cardMetadata"`
	ListingPrice uint64           `json:"listingPrice"`
	Status       ListingStatus    `json:"status"`
	CreatedAt    int64            `json:"createdAt"`
	ImageUrl     string           `json:"imageUrl"`
	Bump         uint8            `json:"bump"`
}

func (l ListingAccount) Slug() string {
	return CreateListingSlug(l.NftAddress)
}

func CreateListingSlug(nftMint solana.PublicKey) string {
	return slug.Make(fmt.Sprintf("listing-%s", nftMint.String()))
}

// Listing pairs a decoded account with its derived address, the shape
// returned by catalog scans.
type Listing struct {
	Address solana.PublicKey `json:"address"`
	Account ListingAccount   `json:"account"`
}
