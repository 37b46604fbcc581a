package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/config"
	"github.com/pikavault/pikavault-go/internal/dic"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/event"
	"github.com/pikavault/pikavault-go/internal/marketplace"
	"github.com/pikavault/pikavault-go/internal/messenger"
	"github.com/pikavault/pikavault-go/internal/pda"
	"github.com/pikavault/pikavault-go/internal/pikavault"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var container *dic.Container

func main() {
	config.Init("cli")

	var err error
	container, err = dic.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	if config.Get().Aws.Region != "" {
		relayCatalogRefresh()
	}

	app := &cli.App{
		Name:  "vault-cli",
		Usage: "PikaVault marketplace operations",
		Commands: []*cli.Command{
			{
				Name:   "init-marketplace",
				Usage:  "Initialize the marketplace for the bound admin identity",
				Action: initMarketplace,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "fee", Value: 1000, Usage: "marketplace fee in basis points (0-10000)"},
				},
			},
			{
				Name:   "register",
				Usage:  "Register the bound identity as a marketplace user",
				Action: registerUser,
			},
			{
				Name:   "mint-list",
				Usage:  "Mint a trading card NFT and list it for sale",
				Action: mintAndList,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "marketplace", Usage: "marketplace address (defaults to the configured admin's marketplace)"},
					&cli.StringFlag{Name: "collection", Usage: "collection mint address"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "symbol", Value: "PIKA"},
					&cli.Uint64Flag{Name: "price", Required: true, Usage: "listing price in lamports"},
					&cli.StringFlag{Name: "metadata", Value: "{}", Usage: "card metadata JSON"},
					&cli.StringFlag{Name: "image", Usage: "path to the card image; uploaded to the configured asset store"},
					&cli.StringFlag{Name: "image-url", Usage: "pre-uploaded image URL"},
				},
			},
			{
				Name:   "purchase",
				Usage:  "Purchase a listed card, locking funds in escrow",
				Action: purchase,
				Flags:  tradeFlags(),
			},
			{
				Name:   "release",
				Usage:  "Release escrow: deliver the NFT to the buyer and pay the seller",
				Action: releaseEscrow,
				Flags:  tradeFlags(),
			},
			{
				Name:   "refund",
				Usage:  "Refund the locked funds to the buyer",
				Action: refund,
				Flags:  tradeFlags(),
			},
			{
				Name:   "delist",
				Usage:  "Delist an active listing and reclaim the NFT",
				Action: delist,
				Flags:  tradeFlags(),
			},
			{
				Name:   "listing",
				Usage:  "Fetch a single listing",
				Action: showListing,
				Flags:  tradeFlags(),
			},
			{
				Name:   "listings",
				Usage:  "List the full catalog, or one owner's listings",
				Action: showListings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Usage: "filter by owner address"},
				},
			},
			{
				Name:   "user",
				Usage:  "Show a user's registration and counters",
				Action: showUser,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Usage: "user address (defaults to the bound identity)"},
				},
			},
			{
				Name:   "marketplace",
				Usage:  "Show the marketplace account",
				Action: showMarketplace,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "authority", Usage: "marketplace authority (defaults to the configured admin)"},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the catalog index from chain state",
				Action: reindex,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Command failed")
	}
}

func tradeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "marketplace", Usage: "marketplace address (defaults to the configured admin's marketplace)"},
		&cli.StringFlag{Name: "mint", Required: true, Usage: "NFT mint address"},
	}
}

// relayCatalogRefresh forwards every lifecycle event to the catalog refresh
// queue so catalogd picks the change up.
func relayCatalogRefresh() {
	publish := func(msg interface{}) {
		address, ok := msg.(solana.PublicKey)
		if !ok {
			return
		}

		body, _ := json.Marshal(messenger.Listing{Address: address.String()})
		if err := container.GetMessenger().SendMessage(messenger.CatalogRefresh, body); err != nil {
			zap.L().With(zap.Error(err)).Warn("Failed to queue catalog refresh")
		}
	}

	for _, t := range []event.Type{
		event.ListingCreatedEvent,
		event.ListingSoldEvent,
		event.ListingDelistedEvent,
		event.EscrowReleasedEvent,
		event.EscrowRefundedEvent,
	} {
		event.AddEventListener(t, publish)
	}
}

func initMarketplace(c *cli.Context) error {
	fee, err := feeBasisPoints(c.Uint64("fee"))
	if err != nil {
		return err
	}

	result, err := container.GetMarketplaceService().InitializeMarketplace(c.Context, fee)
	if err != nil {
		return err
	}

	fmt.Printf("marketplace: %s\ntreasury: %s\nsignature: %s\n", result.Marketplace, result.Treasury, result.Signature)
	return nil
}

// feeBasisPoints narrows the flag value. The fee is immutable once the
// marketplace exists, so an out-of-range value must fail here instead of
// wrapping into a small fee that gets submitted.
func feeBasisPoints(value uint64) (uint16, error) {
	if value > uint64(entity.MaxFeeBasisPoints) {
		return 0, pikavault.ValidationError{Field: "fee", Reason: "fee exceeds 10000 basis points"}
	}

	return uint16(value), nil
}

func registerUser(c *cli.Context) error {
	result, err := container.GetMarketplaceService().RegisterUser(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("userAccount: %s\nsignature: %s\n", result.UserAccount, result.Signature)
	return nil
}

func mintAndList(c *cli.Context) error {
	marketplaceAddr, err := marketplaceAddress(c.String("marketplace"))
	if err != nil {
		return err
	}

	imageUrl := c.String("image-url")
	if path := c.String("image"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		imageUrl, err = container.GetAssetStore().Store(c.Context, filepath.Base(path), data)
		if err != nil {
			return err
		}
	}

	var collection solana.PublicKey
	if raw := firstNonEmpty(c.String("collection"), config.Get().Solana.CollectionMint); raw != "" {
		if collection, err = solana.PublicKeyFromBase58(raw); err != nil {
			return err
		}
	}

	result, err := container.GetMarketplaceService().MintAndList(c.Context, marketplace.MintAndListParams{
		Marketplace:    marketplaceAddr,
		CollectionMint: collection,
		Name:           c.String("name"),
		Symbol:         c.String("symbol"),
		ListingPrice:   c.Uint64("price"),
		CardMetadata:   c.String("metadata"),
		ImageUrl:       imageUrl,
	})
	if err != nil {
		return err
	}

	fmt.Printf("nftMint: %s\nlisting: %s\nvault: %s\nsignature: %s\n", result.NftMint, result.Listing, result.Vault, result.Signature)
	return nil
}

func purchase(c *cli.Context) error {
	marketplaceAddr, mint, err := tradeArgs(c)
	if err != nil {
		return err
	}

	result, err := container.GetMarketplaceService().Purchase(c.Context, marketplaceAddr, mint)
	if err != nil {
		return err
	}

	fmt.Printf("escrow: %s\nstatus: %s\nsignature: %s\n", result.Escrow, result.Listing.Account.Status, result.Signature)
	return nil
}

func releaseEscrow(c *cli.Context) error {
	marketplaceAddr, mint, err := tradeArgs(c)
	if err != nil {
		return err
	}

	result, err := container.GetMarketplaceService().ReleaseEscrow(c.Context, marketplaceAddr, mint)
	if err != nil {
		return err
	}

	fmt.Printf("buyerTokenAccount: %s\nsignature: %s\n", result.BuyerTokenAccount, result.Signature)
	return nil
}

func refund(c *cli.Context) error {
	marketplaceAddr, mint, err := tradeArgs(c)
	if err != nil {
		return err
	}

	result, err := container.GetMarketplaceService().Refund(c.Context, marketplaceAddr, mint)
	if err != nil {
		return err
	}

	fmt.Printf("status after refund: %s\nsignature: %s\n", result.Status, result.Signature)
	return nil
}

func delist(c *cli.Context) error {
	marketplaceAddr, mint, err := tradeArgs(c)
	if err != nil {
		return err
	}

	result, err := container.GetMarketplaceService().Delist(c.Context, marketplaceAddr, mint)
	if err != nil {
		return err
	}

	fmt.Printf("ownerAta: %s\nsignature: %s\n", result.OwnerAta, result.Signature)
	return nil
}

func showListing(c *cli.Context) error {
	marketplaceAddr, mint, err := tradeArgs(c)
	if err != nil {
		return err
	}

	listing, err := container.GetListingRepo().GetListing(c.Context, marketplaceAddr, mint)
	if err != nil {
		return err
	}

	return printJson(listing)
}

func showListings(c *cli.Context) error {
	ctx := context.Background()

	if raw := c.String("owner"); raw != "" {
		owner, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return err
		}

		listings, err := container.GetListingRepo().GetListingsByOwner(ctx, owner)
		if err != nil {
			return err
		}

		return printJson(listings)
	}

	rows, err := container.GetCatalog().Rows(ctx)
	if err != nil {
		return err
	}

	return printJson(rows)
}

func showUser(c *cli.Context) error {
	address := c.String("address")

	var user solana.PublicKey
	var err error
	if address != "" {
		user, err = solana.PublicKeyFromBase58(address)
	} else {
		user, err = container.GetSession().Identity()
	}
	if err != nil {
		return err
	}

	registration, err := container.GetUserRepo().GetUser(c.Context, user)
	if err != nil {
		return err
	}

	return printJson(registration)
}

func showMarketplace(c *cli.Context) error {
	authorityRaw := firstNonEmpty(c.String("authority"), config.Get().Solana.Admin)
	authority, err := solana.PublicKeyFromBase58(authorityRaw)
	if err != nil {
		return err
	}

	m, err := container.GetMarketplaceRepo().GetMarketplace(c.Context, authority)
	if err != nil {
		return err
	}

	return printJson(m)
}

func reindex(c *cli.Context) error {
	if err := container.GetElastic().InstallMappings(); err != nil {
		return err
	}

	count, err := container.GetCatalogIndexer().ReindexAll(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d listings\n", count)
	return nil
}

func tradeArgs(c *cli.Context) (solana.PublicKey, solana.PublicKey, error) {
	marketplaceAddr, err := marketplaceAddress(c.String("marketplace"))
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}

	mint, err := solana.PublicKeyFromBase58(c.String("mint"))
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}

	return marketplaceAddr, mint, nil
}

// marketplaceAddress resolves the flag value, falling back to the PDA of the
// configured admin authority.
func marketplaceAddress(raw string) (solana.PublicKey, error) {
	if raw != "" {
		return solana.PublicKeyFromBase58(raw)
	}

	admin, err := solana.PublicKeyFromBase58(config.Get().Solana.Admin)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("no marketplace flag and no MARKETPLACE_ADMIN configured: %w", err)
	}

	programId, err := solana.PublicKeyFromBase58(config.Get().Solana.ProgramId)
	if err != nil {
		return solana.PublicKey{}, err
	}

	address, _, err := pda.Marketplace(admin, programId)
	return address, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func printJson(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
