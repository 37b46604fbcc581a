package elastic_search

import (
	"fmt"

	"github.com/pikavault/pikavault-go/internal/config"
)

type Indices string

const (
	ListingIndex Indices = "listing"
)

func (i Indices) Get() string {
	return fmt.Sprintf("%s.%s", config.Get().CatalogIndex, i)
}

const listingMapping = `{
  "mappings": {
    "properties": {
      "slug":         {"type": "keyword"},
      "listing":      {"type": "keyword"},
      "nftMint":      {"type": "keyword"},
      "owner":        {"type": "keyword"},
      "name":         {"type": "text"},
      "rarity":       {"type": "keyword"},
      "price":        {"type": "long"},
      "imageUrl":     {"type": "keyword", "index": false},
      "status":       {"type": "keyword"},
      "createdAt":    {"type": "date", "format": "epoch_second"},
      "cardMetadata": {"type": "text", "index": false}
    }
  }
}`
