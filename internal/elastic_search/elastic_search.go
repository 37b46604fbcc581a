package elastic_search

import (
	"context"

	"github.com/olivere/elastic/v7"
	"github.com/pikavault/pikavault-go/internal/config"
	"github.com/pikavault/pikavault-go/internal/entity"
	"go.uber.org/zap"
)

type Index interface {
	GetClient() *elastic.Client

	InstallMappings() error

	SaveListing(ctx context.Context, row entity.CatalogRow) error
	DeleteListing(ctx context.Context, slug string) error
}

type index struct {
	client *elastic.Client
}

func New() (Index, error) {
	cfg := config.Get().ElasticSearch

	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.Hosts...),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.HealthCheck),
	}

	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return index{client: client}, nil
}

func (i index) GetClient() *elastic.Client {
	return i.client
}

func (i index) InstallMappings() error {
	ctx := context.Background()

	exists, err := i.client.IndexExists(ListingIndex.Get()).Do(ctx)
	if err != nil {
		return err
	}

	if !exists {
		if _, err := i.client.CreateIndex(ListingIndex.Get()).BodyString(listingMapping).Do(ctx); err != nil {
			return err
		}
		zap.L().With(zap.String("index", ListingIndex.Get())).Info("ES: mapping installed")
	}

	return nil
}

func (i index) SaveListing(ctx context.Context, row entity.CatalogRow) error {
	_, err := i.client.Index().
		Index(ListingIndex.Get()).
		Id(row.Slug).
		BodyJson(row).
		Do(ctx)

	return err
}

func (i index) DeleteListing(ctx context.Context, slug string) error {
	_, err := i.client.Delete().
		Index(ListingIndex.Get()).
		Id(slug).
		Do(ctx)

	return err
}
