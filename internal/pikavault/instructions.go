package pikavault

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// The account list of every instruction matches the program's declared
// order and mutability exactly. Nothing is appended, nothing reordered.

func instructionData(discriminator [8]byte, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])

	if args != nil {
		if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

type initializeMarketplaceArgs struct {
	Fee uint16
}

func NewInitializeMarketplaceInstruction(fee uint16, admin, marketplace, treasury solana.PublicKey) (solana.Instruction, error) {
	data, err := instructionData(InstructionInitializeMarketplace, initializeMarketplaceArgs{Fee: fee})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, true, true),
		solana.NewAccountMeta(marketplace, true, false),
		solana.NewAccountMeta(treasury, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

func NewRegisterUserInstruction(user, userAccount solana.PublicKey) (solana.Instruction, error) {
	data, err := instructionData(InstructionRegisterUser, nil)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(user, true, true),
		solana.NewAccountMeta(userAccount, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

type mintAndListArgs struct {
	Name         string
	Symbol       string
	ListingPrice uint64
	CardMetadata string
	ImageUrl     string
}

// MintAndListAccounts carries the full derived account set for mintAndList.
type MintAndListAccounts struct {
	Maker          solana.PublicKey
	UserAccount    solana.PublicKey
	Marketplace    solana.PublicKey
	NftMint        solana.PublicKey
	MakerAta       solana.PublicKey
	Vault          solana.PublicKey
	Listing        solana.PublicKey
	CollectionMint solana.PublicKey
	Metadata       solana.PublicKey
	MasterEdition  solana.PublicKey
}

func NewMintAndListInstruction(name, symbol string, listingPrice uint64, cardMetadata, imageUrl string, accounts MintAndListAccounts) (solana.Instruction, error) {
	data, err := instructionData(InstructionMintAndList, mintAndListArgs{
		Name:         name,
		Symbol:       symbol,
		ListingPrice: listingPrice,
		CardMetadata: cardMetadata,
		ImageUrl:     imageUrl,
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Maker, true, true),
		solana.NewAccountMeta(accounts.UserAccount, true, false),
		solana.NewAccountMeta(accounts.Marketplace, false, false),
		solana.NewAccountMeta(accounts.NftMint, true, true),
		solana.NewAccountMeta(accounts.MakerAta, true, false),
		solana.NewAccountMeta(accounts.Vault, true, false),
		solana.NewAccountMeta(accounts.Listing, true, false),
		solana.NewAccountMeta(accounts.CollectionMint, false, false),
		solana.NewAccountMeta(accounts.Metadata, true, false),
		solana.NewAccountMeta(accounts.MasterEdition, true, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(MetadataProgramID, false, false),
	}, data), nil
}

// PurchaseAccounts carries the derived account set for purchase.
type PurchaseAccounts struct {
	Buyer         solana.PublicKey
	BuyerAccount  solana.PublicKey
	SellerAccount solana.PublicKey
	Marketplace   solana.PublicKey
	Listing       solana.PublicKey
	Escrow        solana.PublicKey
	NftMint       solana.PublicKey
}

func NewPurchaseInstruction(accounts PurchaseAccounts) (solana.Instruction, error) {
	data, err := instructionData(InstructionPurchase, nil)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Buyer, true, true),
		solana.NewAccountMeta(accounts.BuyerAccount, true, false),
		solana.NewAccountMeta(accounts.SellerAccount, true, false),
		solana.NewAccountMeta(accounts.Marketplace, false, false),
		solana.NewAccountMeta(accounts.Listing, true, false),
		solana.NewAccountMeta(accounts.Escrow, true, false),
		solana.NewAccountMeta(accounts.NftMint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// DelistAccounts carries the derived account set for delist.
type DelistAccounts struct {
	Owner       solana.PublicKey
	UserAccount solana.PublicKey
	Marketplace solana.PublicKey
	NftMint     solana.PublicKey
	OwnerAta    solana.PublicKey
	Vault       solana.PublicKey
	Listing     solana.PublicKey
}

func NewDelistInstruction(accounts DelistAccounts) (solana.Instruction, error) {
	data, err := instructionData(InstructionDelist, nil)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Owner, true, true),
		solana.NewAccountMeta(accounts.UserAccount, true, false),
		solana.NewAccountMeta(accounts.Marketplace, false, false),
		solana.NewAccountMeta(accounts.NftMint, false, false),
		solana.NewAccountMeta(accounts.OwnerAta, true, false),
		solana.NewAccountMeta(accounts.Vault, true, false),
		solana.NewAccountMeta(accounts.Listing, true, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// ReleaseEscrowAccounts carries the derived account set for releaseEscrow.
// Neither seller nor buyer signs; the transaction fee payer provides the
// signature.
type ReleaseEscrowAccounts struct {
	Seller            solana.PublicKey
	Buyer             solana.PublicKey
	Escrow            solana.PublicKey
	Listing           solana.PublicKey
	Marketplace       solana.PublicKey
	NftMint           solana.PublicKey
	Vault             solana.PublicKey
	BuyerTokenAccount solana.PublicKey
}

func NewReleaseEscrowInstruction(accounts ReleaseEscrowAccounts) (solana.Instruction, error) {
	data, err := instructionData(InstructionReleaseEscrow, nil)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Seller, true, false),
		solana.NewAccountMeta(accounts.Buyer, true, false),
		solana.NewAccountMeta(accounts.Escrow, true, false),
		solana.NewAccountMeta(accounts.Listing, true, false),
		solana.NewAccountMeta(accounts.Marketplace, false, false),
		solana.NewAccountMeta(accounts.NftMint, false, false),
		solana.NewAccountMeta(accounts.Vault, true, false),
		solana.NewAccountMeta(accounts.BuyerTokenAccount, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// RefundAccounts carries the derived account set for refund.
type RefundAccounts struct {
	Buyer         solana.PublicKey
	BuyerAccount  solana.PublicKey
	SellerAccount solana.PublicKey
	Marketplace   solana.PublicKey
	Listing       solana.PublicKey
	Escrow        solana.PublicKey
}

func NewRefundInstruction(accounts RefundAccounts) (solana.Instruction, error) {
	data, err := instructionData(InstructionRefund, nil)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Buyer, true, true),
		solana.NewAccountMeta(accounts.BuyerAccount, true, false),
		solana.NewAccountMeta(accounts.SellerAccount, true, false),
		solana.NewAccountMeta(accounts.Marketplace, false, false),
		solana.NewAccountMeta(accounts.Listing, true, false),
		solana.NewAccountMeta(accounts.Escrow, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}
