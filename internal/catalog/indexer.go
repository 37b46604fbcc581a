package catalog

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/olivere/elastic/v7"
	"github.com/pikavault/pikavault-go/internal/elastic_search"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/repository"
	"go.uber.org/zap"
)

// Indexer mirrors on-chain listings into Elasticsearch so the catalog can be
// filtered and sorted without scanning the chain on every browse. The mirror
// is rebuilt from chain state, never mutated from local guesses.
type Indexer interface {
	ReindexAll(ctx context.Context) (int, error)
	IndexListing(ctx context.Context, address solana.PublicKey) error
	Search(ctx context.Context, query Query) ([]entity.CatalogRow, error)
}

type Query struct {
	Owner  string
	Status string
	Rarity string
	// MinPrice/MaxPrice bound the price in the smallest currency unit; zero
	// means unbounded.
	MinPrice uint64
	MaxPrice uint64
	Size     int
}

type indexer struct {
	listingRepo repository.ListingRepository
	elastic     elastic_search.Index
}

func NewIndexer(listingRepo repository.ListingRepository, elastic elastic_search.Index) Indexer {
	return indexer{listingRepo, elastic}
}

func (i indexer) ReindexAll(ctx context.Context) (int, error) {
	listings, err := i.listingRepo.GetAllListings(ctx)
	if err != nil {
		return 0, err
	}

	for _, listing := range listings {
		if err := i.elastic.SaveListing(ctx, entity.NewCatalogRow(listing)); err != nil {
			return 0, err
		}
	}

	zap.L().With(zap.Int("count", len(listings))).Info("Catalog: full reindex complete")

	return len(listings), nil
}

func (i indexer) IndexListing(ctx context.Context, address solana.PublicKey) error {
	listing, err := i.listingRepo.GetListingByAddress(ctx, address)
	if err != nil {
		return err
	}

	if err := i.elastic.SaveListing(ctx, entity.NewCatalogRow(listing)); err != nil {
		return err
	}

	zap.L().With(zap.String("listing", address.String()), zap.String("status", listing.Account.Status.String())).Info("Catalog: listing indexed")

	return nil
}

func (i indexer) Search(ctx context.Context, query Query) ([]entity.CatalogRow, error) {
	boolQuery := elastic.NewBoolQuery()

	if query.Owner != "" {
		boolQuery.Must(elastic.NewTermQuery("owner", query.Owner))
	}
	if query.Status != "" {
		boolQuery.Must(elastic.NewTermQuery("status", query.Status))
	}
	if query.Rarity != "" {
		boolQuery.Must(elastic.NewTermQuery("rarity", query.Rarity))
	}
	if query.MinPrice > 0 || query.MaxPrice > 0 {
		rangeQuery := elastic.NewRangeQuery("price")
		if query.MinPrice > 0 {
			rangeQuery.Gte(query.MinPrice)
		}
		if query.MaxPrice > 0 {
			rangeQuery.Lte(query.MaxPrice)
		}
		boolQuery.Must(rangeQuery)
	}

	size := query.Size
	if size == 0 {
		size = 100
	}

	result, err := i.elastic.GetClient().
		Search(elastic_search.ListingIndex.Get()).
		Query(boolQuery).
		Sort("createdAt", false).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]entity.CatalogRow, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var row entity.CatalogRow
		if err := json.Unmarshal(hit.Source, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}
