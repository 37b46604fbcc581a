// Package marketplace assembles and submits the escrow-backed listing
// lifecycle operations. Every builder validates its inputs, re-fetches the
// entities it depends on, derives the full account set and submits a single
// strictly-ordered instruction. On-chain state stays authoritative: a
// program rejection is never retried blindly, and results carry re-fetched
// state rather than local assumptions.
package marketplace

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/event"
	"github.com/pikavault/pikavault-go/internal/pda"
	"github.com/pikavault/pikavault-go/internal/pikavault"
	"github.com/pikavault/pikavault-go/internal/repository"
	"github.com/pikavault/pikavault-go/internal/wallet"
	"go.uber.org/zap"
)

var (
	ErrAlreadyInitialized = errors.New("marketplace already initialized for this authority")
	ErrAlreadyRegistered  = errors.New("user already registered")
	ErrNotRegistered      = errors.New("user is not registered")
	ErrNotListingOwner    = errors.New("caller does not own this listing")
)

type Service interface {
	InitializeMarketplace(ctx context.Context, fee uint16) (InitializeResult, error)
	RegisterUser(ctx context.Context) (RegisterResult, error)
	MintAndList(ctx context.Context, params MintAndListParams) (MintAndListResult, error)
	Purchase(ctx context.Context, marketplace, nftMint solana.PublicKey) (PurchaseResult, error)
	ReleaseEscrow(ctx context.Context, marketplace, nftMint solana.PublicKey) (ReleaseResult, error)
	Refund(ctx context.Context, marketplace, nftMint solana.PublicKey) (RefundResult, error)
	Delist(ctx context.Context, marketplace, nftMint solana.PublicKey) (DelistResult, error)
}

type service struct {
	session         wallet.Session
	userRepo        repository.UserRepository
	listingRepo     repository.ListingRepository
	escrowRepo      repository.EscrowRepository
	marketplaceRepo repository.MarketplaceRepository
	programId       solana.PublicKey
	metadataProgId  solana.PublicKey
}

func NewService(
	session wallet.Session,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	escrowRepo repository.EscrowRepository,
	marketplaceRepo repository.MarketplaceRepository,
	programId solana.PublicKey,
	metadataProgId solana.PublicKey,
) Service {
	return service{session, userRepo, listingRepo, escrowRepo, marketplaceRepo, programId, metadataProgId}
}

type InitializeResult struct {
	Signature   solana.Signature
	Marketplace solana.PublicKey
	Treasury    solana.PublicKey
}

func (s service) InitializeMarketplace(ctx context.Context, fee uint16) (InitializeResult, error) {
	if fee > entity.MaxFeeBasisPoints {
		return InitializeResult{}, pikavault.ValidationError{Field: "fee", Reason: "fee exceeds 10000 basis points"}
	}

	admin, err := s.session.Identity()
	if err != nil {
		return InitializeResult{}, err
	}

	marketplace, _, err := pda.Marketplace(admin, s.programId)
	if err != nil {
		return InitializeResult{}, err
	}

	treasury, _, err := pda.Treasury(marketplace, s.programId)
	if err != nil {
		return InitializeResult{}, err
	}

	if _, err := s.marketplaceRepo.GetMarketplaceByAddress(ctx, marketplace); err == nil {
		return InitializeResult{}, ErrAlreadyInitialized
	} else if !errors.Is(err, repository.ErrMarketplaceNotFound) {
		return InitializeResult{}, err
	}

	ix, err := pikavault.NewInitializeMarketplaceInstruction(fee, admin, marketplace, treasury)
	if err != nil {
		return InitializeResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, nil)
	if err != nil {
		return InitializeResult{}, err
	}

	zap.L().With(
		zap.String("marketplace", marketplace.String()),
		zap.Uint16("fee", fee),
		zap.String("signature", sig.String()),
	).Info("Marketplace initialized")

	return InitializeResult{Signature: sig, Marketplace: marketplace, Treasury: treasury}, nil
}

type RegisterResult struct {
	Signature   solana.Signature
	UserAccount solana.PublicKey
}

// RegisterUser creates the caller's user account. Registering twice is a
// hard failure, surfaced here before submission when the account already
// exists.
func (s service) RegisterUser(ctx context.Context) (RegisterResult, error) {
	user, err := s.session.Identity()
	if err != nil {
		return RegisterResult{}, err
	}

	registration, err := s.userRepo.GetUser(ctx, user)
	if err != nil {
		return RegisterResult{}, err
	}
	if registration.Registered {
		return RegisterResult{}, ErrAlreadyRegistered
	}

	ix, err := pikavault.NewRegisterUserInstruction(user, registration.Address)
	if err != nil {
		return RegisterResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, nil)
	if err != nil {
		return RegisterResult{}, err
	}

	zap.L().With(zap.String("user", user.String()), zap.String("signature", sig.String())).Info("User registered")

	event.EmitEvent(event.UserRegisteredEvent, registration.Address)

	return RegisterResult{Signature: sig, UserAccount: registration.Address}, nil
}

type MintAndListParams struct {
	Marketplace    solana.PublicKey
	CollectionMint solana.PublicKey
	Name           string
	Symbol         string
	ListingPrice   uint64
	CardMetadata   string
	ImageUrl       string
}

type MintAndListResult struct {
	Signature solana.Signature
	NftMint   solana.PublicKey
	Listing   solana.PublicKey
	Vault     solana.PublicKey
	Metadata  solana.PublicKey
}

// MintAndList mints a fresh NFT and lists it in one call. The asset never
// exists unlisted: it is created directly into the vault derived from the
// listing address.
func (s service) MintAndList(ctx context.Context, params MintAndListParams) (MintAndListResult, error) {
	if params.ListingPrice == 0 {
		return MintAndListResult{}, pikavault.ValidationError{Field: "listingPrice", Reason: "price must be greater than zero"}
	}
	if params.Name == "" {
		return MintAndListResult{}, pikavault.ValidationError{Field: "name", Reason: "name is required"}
	}
	if params.Marketplace.IsZero() {
		return MintAndListResult{}, pikavault.ValidationError{Field: "marketplace", Reason: "zero public key"}
	}

	maker, err := s.session.Identity()
	if err != nil {
		return MintAndListResult{}, err
	}

	registration, err := s.userRepo.GetUser(ctx, maker)
	if err != nil {
		return MintAndListResult{}, err
	}
	if !registration.Registered {
		return MintAndListResult{}, ErrNotRegistered
	}

	// Fresh throwaway keypair for the new mint; it signs once at creation.
	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return MintAndListResult{}, err
	}
	nftMint := mintKey.PublicKey()

	listing, _, err := pda.Listing(params.Marketplace, nftMint, s.programId)
	if err != nil {
		return MintAndListResult{}, err
	}

	metadata, _, err := pda.Metadata(nftMint, s.metadataProgId)
	if err != nil {
		return MintAndListResult{}, err
	}

	masterEdition, _, err := pda.MasterEdition(nftMint, s.metadataProgId)
	if err != nil {
		return MintAndListResult{}, err
	}

	makerAta, err := pda.AssociatedTokenAccount(maker, nftMint)
	if err != nil {
		return MintAndListResult{}, err
	}

	vault, err := pda.Vault(listing, nftMint)
	if err != nil {
		return MintAndListResult{}, err
	}

	ix, err := pikavault.NewMintAndListInstruction(
		params.Name,
		params.Symbol,
		params.ListingPrice,
		params.CardMetadata,
		params.ImageUrl,
		pikavault.MintAndListAccounts{
			Maker:          maker,
			UserAccount:    registration.Address,
			Marketplace:    params.Marketplace,
			NftMint:        nftMint,
			MakerAta:       makerAta,
			Vault:          vault,
			Listing:        listing,
			CollectionMint: params.CollectionMint,
			Metadata:       metadata,
			MasterEdition:  masterEdition,
		},
	)
	if err != nil {
		return MintAndListResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, []solana.PrivateKey{mintKey})
	if err != nil {
		return MintAndListResult{}, err
	}

	zap.L().With(
		zap.String("nftMint", nftMint.String()),
		zap.String("listing", listing.String()),
		zap.Uint64("price", params.ListingPrice),
		zap.String("signature", sig.String()),
	).Info("NFT minted and listed")

	event.EmitEvent(event.ListingCreatedEvent, listing)

	return MintAndListResult{
		Signature: sig,
		NftMint:   nftMint,
		Listing:   listing,
		Vault:     vault,
		Metadata:  metadata,
	}, nil
}

type PurchaseResult struct {
	Signature solana.Signature
	Listing   entity.Listing
	Escrow    solana.PublicKey
}

// Purchase locks the buyer's funds into a new escrow and flips the listing
// to sold. The asset itself is only delivered later by ReleaseEscrow.
func (s service) Purchase(ctx context.Context, marketplace, nftMint solana.PublicKey) (PurchaseResult, error) {
	buyer, err := s.session.Identity()
	if err != nil {
		return PurchaseResult{}, err
	}

	listing, err := s.listingRepo.GetListing(ctx, marketplace, nftMint)
	if err != nil {
		return PurchaseResult{}, err
	}

	if listing.Account.Status != entity.ListingActive {
		return PurchaseResult{}, pikavault.ErrListingNotActive
	}
	if listing.Account.Owner.Equals(buyer) {
		return PurchaseResult{}, pikavault.ErrCannotBuyOwnListing
	}

	balance, err := s.session.Balance(ctx, buyer)
	if err != nil {
		return PurchaseResult{}, err
	}
	if balance < listing.Account.ListingPrice {
		return PurchaseResult{}, pikavault.ErrInsufficientFunds
	}

	buyerAccount, err := s.userRepo.GetUser(ctx, buyer)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !buyerAccount.Registered {
		return PurchaseResult{}, ErrNotRegistered
	}

	sellerAccount, _, err := pda.UserAccount(listing.Account.Owner, s.programId)
	if err != nil {
		return PurchaseResult{}, err
	}

	escrow, _, err := pda.Escrow(listing.Address, s.programId)
	if err != nil {
		return PurchaseResult{}, err
	}

	ix, err := pikavault.NewPurchaseInstruction(pikavault.PurchaseAccounts{
		Buyer:         buyer,
		BuyerAccount:  buyerAccount.Address,
		SellerAccount: sellerAccount,
		Marketplace:   marketplace,
		Listing:       listing.Address,
		Escrow:        escrow,
		NftMint:       nftMint,
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, nil)
	if err != nil {
		return PurchaseResult{}, err
	}

	zap.L().With(
		zap.String("listing", listing.Address.String()),
		zap.String("buyer", buyer.String()),
		zap.String("signature", sig.String()),
	).Info("Listing purchased, funds in escrow")

	event.EmitEvent(event.ListingSoldEvent, listing.Address)

	// State may have raced with another actor; the returned listing is a
	// fresh read, not the pre-submit snapshot.
	updated, err := s.listingRepo.GetListingByAddress(ctx, listing.Address)
	if err != nil {
		return PurchaseResult{}, err
	}

	return PurchaseResult{Signature: sig, Listing: updated, Escrow: escrow}, nil
}

type ReleaseResult struct {
	Signature         solana.Signature
	BuyerTokenAccount solana.PublicKey
}

// ReleaseEscrow delivers the NFT from the vault to the buyer and pays the
// seller (minus the marketplace fee). One-shot: a resolved escrow is
// rejected by the program and surfaced as escrowAlreadyReleased, never
// retried.
func (s service) ReleaseEscrow(ctx context.Context, marketplace, nftMint solana.PublicKey) (ReleaseResult, error) {
	listing, err := s.listingRepo.GetListing(ctx, marketplace, nftMint)
	if err != nil {
		return ReleaseResult{}, err
	}

	if listing.Account.Status != entity.ListingSold {
		return ReleaseResult{}, pikavault.ErrListingNotSold
	}

	escrowAddr, _, err := pda.Escrow(listing.Address, s.programId)
	if err != nil {
		return ReleaseResult{}, err
	}

	escrow, err := s.escrowRepo.GetEscrowByAddress(ctx, escrowAddr)
	if err != nil {
		return ReleaseResult{}, err
	}

	vault, err := pda.Vault(listing.Address, nftMint)
	if err != nil {
		return ReleaseResult{}, err
	}

	buyerTokenAccount, err := pda.AssociatedTokenAccount(escrow.Buyer, nftMint)
	if err != nil {
		return ReleaseResult{}, err
	}

	ix, err := pikavault.NewReleaseEscrowInstruction(pikavault.ReleaseEscrowAccounts{
		Seller:            escrow.Seller,
		Buyer:             escrow.Buyer,
		Escrow:            escrowAddr,
		Listing:           listing.Address,
		Marketplace:       marketplace,
		NftMint:           nftMint,
		Vault:             vault,
		BuyerTokenAccount: buyerTokenAccount,
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, nil)
	if err != nil {
		return ReleaseResult{}, err
	}

	zap.L().With(
		zap.String("escrow", escrowAddr.String()),
		zap.String("buyer", escrow.Buyer.String()),
		zap.String("signature", sig.String()),
	).Info("Escrow released, NFT delivered")

	event.EmitEvent(event.EscrowReleasedEvent, listing.Address)

	return ReleaseResult{Signature: sig, BuyerTokenAccount: buyerTokenAccount}, nil
}

type RefundResult struct {
	Signature solana.Signature
	// Status is the listing status observed after the refund confirmed. The
	// program decides where a refunded listing lands; the client reports what
	// it sees rather than assuming.
	Status entity.ListingStatus
}

// Refund returns the locked funds to the buyer. Mutually exclusive with
// ReleaseEscrow: exactly one of the two can ever succeed for an escrow.
func (s service) Refund(ctx context.Context, marketplace, nftMint solana.PublicKey) (RefundResult, error) {
	buyer, err := s.session.Identity()
	if err != nil {
		return RefundResult{}, err
	}

	listing, err := s.listingRepo.GetListing(ctx, marketplace, nftMint)
	if err != nil {
		return RefundResult{}, err
	}

	escrowAddr, _, err := pda.Escrow(listing.Address, s.programId)
	if err != nil {
		return RefundResult{}, err
	}

	escrow, err := s.escrowRepo.GetEscrowByAddress(ctx, escrowAddr)
	if err != nil {
		return RefundResult{}, err
	}

	if !escrow.Buyer.Equals(buyer) {
		return RefundResult{}, pikavault.ErrUnauthorizedRefund
	}

	buyerAccount, _, err := pda.UserAccount(buyer, s.programId)
	if err != nil {
		return RefundResult{}, err
	}

	sellerAccount, _, err := pda.UserAccount(escrow.Seller, s.programId)
	if err != nil {
		return RefundResult{}, err
	}

	ix, err := pikavault.NewRefundInstruction(pikavault.RefundAccounts{
		Buyer:         buyer,
		BuyerAccount:  buyerAccount,
		SellerAccount: sellerAccount,
		Marketplace:   marketplace,
		Listing:       listing.Address,
		Escrow:        escrowAddr,
	})
	if err != nil {
		return RefundResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, nil)
	if err != nil {
		return RefundResult{}, err
	}

	zap.L().With(
		zap.String("escrow", escrowAddr.String()),
		zap.String("buyer", buyer.String()),
		zap.String("signature", sig.String()),
	).Info("Escrow refunded")

	event.EmitEvent(event.EscrowRefundedEvent, listing.Address)

	updated, err := s.listingRepo.GetListingByAddress(ctx, listing.Address)
	if err != nil {
		return RefundResult{}, err
	}

	return RefundResult{Signature: sig, Status: updated.Account.Status}, nil
}

type DelistResult struct {
	Signature solana.Signature
	OwnerAta  solana.PublicKey
}

// Delist returns the NFT from the vault to its owner and parks the listing
// in the terminal unlisted state.
func (s service) Delist(ctx context.Context, marketplace, nftMint solana.PublicKey) (DelistResult, error) {
	owner, err := s.session.Identity()
	if err != nil {
		return DelistResult{}, err
	}

	listing, err := s.listingRepo.GetListing(ctx, marketplace, nftMint)
	if err != nil {
		return DelistResult{}, err
	}

	if listing.Account.Status != entity.ListingActive {
		return DelistResult{}, pikavault.ErrListingNotActive
	}
	if !listing.Account.Owner.Equals(owner) {
		return DelistResult{}, ErrNotListingOwner
	}

	userAccount, _, err := pda.UserAccount(owner, s.programId)
	if err != nil {
		return DelistResult{}, err
	}

	ownerAta, err := pda.AssociatedTokenAccount(owner, nftMint)
	if err != nil {
		return DelistResult{}, err
	}

	vault, err := pda.Vault(listing.Address, nftMint)
	if err != nil {
		return DelistResult{}, err
	}

	ix, err := pikavault.NewDelistInstruction(pikavault.DelistAccounts{
		Owner:       owner,
		UserAccount: userAccount,
		Marketplace: marketplace,
		NftMint:     nftMint,
		OwnerAta:    ownerAta,
		Vault:       vault,
		Listing:     listing.Address,
	})
	if err != nil {
		return DelistResult{}, err
	}

	sig, err := s.session.SubmitAndConfirm(ctx, []solana.Instruction{ix}, nil)
	if err != nil {
		return DelistResult{}, err
	}

	zap.L().With(
		zap.String("listing", listing.Address.String()),
		zap.String("signature", sig.String()),
	).Info("Listing delisted")

	event.EmitEvent(event.ListingDelistedEvent, listing.Address)

	return DelistResult{Signature: sig, OwnerAta: ownerAta}, nil
}
