package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pikavault/pikavault-go/internal/dev"
	"github.com/pikavault/pikavault-go/internal/log"
	"github.com/pikavault/pikavault-go/internal/repository"
	"go.uber.org/zap"
)

// Server exposes the catalog over HTTP for UI consumers: browse, filter,
// single row, and an image proxy so cards render without the browser
// touching IPFS gateways directly.
type Server struct {
	catalog     Service
	indexer     Indexer
	listingRepo repository.ListingRepository
	http        *retryablehttp.Client
}

func NewServer(catalog Service, indexer Indexer, listingRepo repository.ListingRepository) Server {
	client := retryablehttp.NewClient()
	client.Logger = log.NewClientLogger()
	client.RetryMax = 2

	return Server{catalog: catalog, indexer: indexer, listingRepo: listingRepo, http: client}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/listings", s.handleListings).Methods("GET")
	r.HandleFunc("/listings/{address}", s.handleListing).Methods("GET")
	r.HandleFunc("/asset/{address}", s.handleAsset).Methods("GET")

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "PikaVault Catalog")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleListings serves filtered rows from the ES mirror when any filter is
// present, and falls back to a plain chain scan otherwise.
func (s Server) handleListings(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := Query{
		Owner:  params.Get("owner"),
		Status: params.Get("status"),
		Rarity: params.Get("rarity"),
	}
	if v := params.Get("minPrice"); v != "" {
		query.MinPrice, _ = strconv.ParseUint(v, 10, 64)
	}
	if v := params.Get("maxPrice"); v != "" {
		query.MaxPrice, _ = strconv.ParseUint(v, 10, 64)
	}

	if query != (Query{}) && s.indexer != nil {
		rows, err := s.indexer.Search(r.Context(), query)
		if err != nil {
			zap.L().With(zap.Error(err)).Error("Catalog: search failed")
			http.Error(w, "catalog search failed", http.StatusInternalServerError)
			return
		}

		writeJson(w, rows)
		return
	}

	rows, err := s.catalog.Rows(r.Context())
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Catalog: scan failed")
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return
	}

	writeJson(w, rows)
}

func (s Server) handleListing(w http.ResponseWriter, r *http.Request) {
	address, err := listingAddress(r)
	if err != nil {
		http.Error(w, "invalid listing address", http.StatusBadRequest)
		return
	}

	listing, err := s.listingRepo.GetListingByAddress(r.Context(), address)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("address", address.String())).Warn("Listing not available")
		http.Error(w, "listing not available", http.StatusNotFound)
		return
	}

	writeJson(w, listing)
}

func (s Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	address, err := listingAddress(r)
	if err != nil {
		http.Error(w, "invalid listing address", http.StatusBadRequest)
		return
	}

	listing, err := s.listingRepo.GetListingByAddress(r.Context(), address)
	if err != nil {
		http.Error(w, "listing not available", http.StatusNotFound)
		return
	}

	resp, err := s.http.Get(listing.Account.ImageUrl)
	if err == nil {
		defer resp.Body.Close()
	}
	if err != nil || resp.StatusCode != 200 {
		report := dev.NewError("catalog", "asset_fetch", fmt.Errorf("image unavailable: %s", listing.Account.ImageUrl), map[string]interface{}{
			"listing": address.String(),
		})
		zap.L().With(zap.String("slug", report.Slug()), zap.String("error", report.Error)).Warn("Asset not available")
		http.Error(w, "asset not available", http.StatusNotFound)
		return
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		http.Error(w, "failed to process asset", http.StatusInternalServerError)
		return
	}

	data := buf.Bytes()
	w.Header().Add("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func listingAddress(r *http.Request) (solana.PublicKey, error) {
	raw, ok := mux.Vars(r)["address"]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("missing address")
	}

	return solana.PublicKeyFromBase58(raw)
}

func writeJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().With(zap.Error(err)).Error("Catalog: response encoding failed")
	}
}
