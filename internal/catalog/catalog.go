// Package catalog turns on-chain listings into display rows for browsing.
// Rows are cached for a short TTL only; the chain stays authoritative and
// every write invalidates the cache, so the catalog never serves a state it
// invented locally.
package catalog

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/patrickmn/go-cache"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/event"
	"github.com/pikavault/pikavault-go/internal/repository"
	"go.uber.org/zap"
)

const (
	allRowsKey = "catalog.rows"
)

type Service interface {
	Rows(ctx context.Context) ([]entity.CatalogRow, error)
	RowsByOwner(ctx context.Context, owner solana.PublicKey) ([]entity.CatalogRow, error)
	Row(ctx context.Context, marketplace, nftMint solana.PublicKey) (entity.CatalogRow, error)
	Invalidate()
}

type service struct {
	listingRepo repository.ListingRepository
	cache       *cache.Cache
}

func NewService(listingRepo repository.ListingRepository, ttl time.Duration) Service {
	s := service{
		listingRepo: listingRepo,
		cache:       cache.New(ttl, 2*ttl),
	}

	// Any lifecycle write makes cached rows stale.
	for _, t := range []event.Type{
		event.ListingCreatedEvent,
		event.ListingSoldEvent,
		event.ListingDelistedEvent,
		event.EscrowReleasedEvent,
		event.EscrowRefundedEvent,
	} {
		event.AddEventListener(t, func(msg interface{}) {
			s.Invalidate()
		})
	}

	return s
}

func (s service) Rows(ctx context.Context) ([]entity.CatalogRow, error) {
	if cached, found := s.cache.Get(allRowsKey); found {
		return cached.([]entity.CatalogRow), nil
	}

	listings, err := s.listingRepo.GetAllListings(ctx)
	if err != nil {
		return nil, err
	}

	rows := toRows(listings)
	s.cache.Set(allRowsKey, rows, cache.DefaultExpiration)

	return rows, nil
}

func (s service) RowsByOwner(ctx context.Context, owner solana.PublicKey) ([]entity.CatalogRow, error) {
	listings, err := s.listingRepo.GetListingsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return toRows(listings), nil
}

func (s service) Row(ctx context.Context, marketplace, nftMint solana.PublicKey) (entity.CatalogRow, error) {
	listing, err := s.listingRepo.GetListing(ctx, marketplace, nftMint)
	if err != nil {
		return entity.CatalogRow{}, err
	}

	return entity.NewCatalogRow(listing), nil
}

func (s service) Invalidate() {
	s.cache.Flush()
	zap.L().Debug("Catalog: cache invalidated")
}

func toRows(listings []entity.Listing) []entity.CatalogRow {
	rows := make([]entity.CatalogRow, 0, len(listings))
	for _, listing := range listings {
		rows = append(rows, entity.NewCatalogRow(listing))
	}

	return rows
}
