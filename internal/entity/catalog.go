package entity

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// CatalogRow is the display shape handed to UI consumers of the catalog.
type CatalogRow struct {
	Slug         string           `json:"slug"`
	Listing      solana.PublicKey `json:"listing"`
	NftMint      solana.PublicKey `json:"nftMint"`
	Owner        solana.PublicKey `json:"owner"`
	Name         string           `json:"name"`
	Rarity       string           `json:"rarity"`
	Price        uint64           `json:"price"`
	ImageUrl     string           `json:"imageUrl"`
	Status       string           `json:"status"`
	CreatedAt    int64            `json:"createdAt"`
	CardMetadata string           `json:"cardMetadata"`
}

// cardMetadata is the free-form JSON string stored on the listing. Name and
// rarity are best effort; a row with an unparseable metadata blob still
// renders from the on-chain fields.
type cardMetadata struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
}

func NewCatalogRow(listing Listing) CatalogRow {
	row := CatalogRow{
		Slug:         listing.Account.Slug(),
		Listing:      listing.Address,
		NftMint:      listing.Account.NftAddress,
		Owner:        listing.Account.Owner,
		Price:        listing.Account.ListingPrice,
		ImageUrl:     listing.Account.ImageUrl,
		Status:       listing.Account.Status.String(),
		CreatedAt:    listing.Account.CreatedAt,
		CardMetadata: listing.Account.CardMetadata,
	}

	var md cardMetadata
	if err := json.Unmarshal([]byte(listing.Account.CardMetadata), &md); err == nil {
		row.Name = md.Name
		row.Rarity = md.Rarity
	}

	return row
}
