// Package dic wires the application graph. The getters mirror the services
// the commands need; definitions stay in one place.
package dic

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/asset"
	"github.com/pikavault/pikavault-go/internal/catalog"
	"github.com/pikavault/pikavault-go/internal/config"
	"github.com/pikavault/pikavault-go/internal/elastic_search"
	"github.com/pikavault/pikavault-go/internal/ipfs"
	"github.com/pikavault/pikavault-go/internal/marketplace"
	"github.com/pikavault/pikavault-go/internal/messenger"
	"github.com/pikavault/pikavault-go/internal/repository"
	"github.com/pikavault/pikavault-go/internal/wallet"
	di "github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(definitions()...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func definitions() []di.Def {
	return []di.Def{
		{
			Name: "programId",
			Build: func(ctn di.Container) (interface{}, error) {
				return solana.PublicKeyFromBase58(config.Get().Solana.ProgramId)
			},
		},
		{
			Name: "metadataProgramId",
			Build: func(ctn di.Container) (interface{}, error) {
				return solana.PublicKeyFromBase58(config.Get().Solana.MetadataProgId)
			},
		},
		{
			Name: "session",
			Build: func(ctn di.Container) (interface{}, error) {
				return wallet.NewSession(config.Get().Solana)
			},
		},
		{
			Name: "marketplace.repo",
			Build: func(ctn di.Container) (interface{}, error) {
				return repository.NewMarketplaceRepository(
					ctn.Get("session").(wallet.Session),
					ctn.Get("programId").(solana.PublicKey),
				), nil
			},
		},
		{
			Name: "user.repo",
			Build: func(ctn di.Container) (interface{}, error) {
				return repository.NewUserRepository(
					ctn.Get("session").(wallet.Session),
					ctn.Get("programId").(solana.PublicKey),
				), nil
			},
		},
		{
			Name: "listing.repo",
			Build: func(ctn di.Container) (interface{}, error) {
				return repository.NewListingRepository(
					ctn.Get("session").(wallet.Session),
					ctn.Get("programId").(solana.PublicKey),
				), nil
			},
		},
		{
			Name: "escrow.repo",
			Build: func(ctn di.Container) (interface{}, error) {
				return repository.NewEscrowRepository(
					ctn.Get("session").(wallet.Session),
					ctn.Get("programId").(solana.PublicKey),
				), nil
			},
		},
		{
			Name: "marketplace.service",
			Build: func(ctn di.Container) (interface{}, error) {
				return marketplace.NewService(
					ctn.Get("session").(wallet.Session),
					ctn.Get("user.repo").(repository.UserRepository),
					ctn.Get("listing.repo").(repository.ListingRepository),
					ctn.Get("escrow.repo").(repository.EscrowRepository),
					ctn.Get("marketplace.repo").(repository.MarketplaceRepository),
					ctn.Get("programId").(solana.PublicKey),
					ctn.Get("metadataProgramId").(solana.PublicKey),
				), nil
			},
		},
		{
			Name: "catalog",
			Build: func(ctn di.Container) (interface{}, error) {
				return catalog.NewService(
					ctn.Get("listing.repo").(repository.ListingRepository),
					time.Duration(config.Get().CatalogCacheTtl)*time.Second,
				), nil
			},
		},
		{
			Name: "elastic",
			Build: func(ctn di.Container) (interface{}, error) {
				elastic, err := elastic_search.New()
				if err != nil {
					zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
				}

				return elastic, nil
			},
		},
		{
			Name: "catalog.indexer",
			Build: func(ctn di.Container) (interface{}, error) {
				return catalog.NewIndexer(
					ctn.Get("listing.repo").(repository.ListingRepository),
					ctn.Get("elastic").(elastic_search.Index),
				), nil
			},
		},
		{
			Name: "messenger",
			Build: func(ctn di.Container) (interface{}, error) {
				return messenger.NewMessenger(config.Get().Aws)
			},
		},
		{
			Name: "asset.store",
			Build: func(ctn di.Container) (interface{}, error) {
				if config.Get().Aws.Bucket != "" {
					return asset.NewS3Store(config.Get().Aws)
				}

				return ipfs.NewPinata(config.Get().Pinata), nil
			},
		},
	}
}

func (c *Container) GetSession() wallet.Session {
	return c.ctn.Get("session").(wallet.Session)
}

func (c *Container) GetMarketplaceRepo() repository.MarketplaceRepository {
	return c.ctn.Get("marketplace.repo").(repository.MarketplaceRepository)
}

func (c *Container) GetUserRepo() repository.UserRepository {
	return c.ctn.Get("user.repo").(repository.UserRepository)
}

func (c *Container) GetListingRepo() repository.ListingRepository {
	return c.ctn.Get("listing.repo").(repository.ListingRepository)
}

func (c *Container) GetEscrowRepo() repository.EscrowRepository {
	return c.ctn.Get("escrow.repo").(repository.EscrowRepository)
}

func (c *Container) GetMarketplaceService() marketplace.Service {
	return c.ctn.Get("marketplace.service").(marketplace.Service)
}

func (c *Container) GetCatalog() catalog.Service {
	return c.ctn.Get("catalog").(catalog.Service)
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetCatalogIndexer() catalog.Indexer {
	return c.ctn.Get("catalog.indexer").(catalog.Indexer)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetAssetStore() asset.Store {
	return c.ctn.Get("asset.store").(asset.Store)
}
