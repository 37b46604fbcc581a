// Package pikavault speaks the PikaVault program's wire interface: Anchor
// instruction discriminators, borsh account layouts and declared error codes.
// Everything here must match the deployed program byte for byte.
package pikavault

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the deployed PikaVault marketplace program.
	ProgramID = solana.MustPublicKeyFromBase58("6aLg7Q1yji5fNMoGWFxS5nhcq3ZojGpf3rVyUQyM7Eg8")

	// MetadataProgramID is the Token Metadata program that owns metadata and
	// master edition accounts.
	MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Instruction discriminators, the first 8 bytes of instruction data.
var (
	InstructionInitializeMarketplace = [8]byte{47, 81, 64, 0, 96, 56, 105, 7}
	InstructionRegisterUser          = [8]byte{2, 241, 150, 223, 99, 214, 116, 97}
	InstructionMintAndList           = [8]byte{200, 161, 243, 36, 250, 45, 242, 13}
	InstructionPurchase              = [8]byte{21, 93, 113, 154, 193, 160, 242, 168}
	InstructionDelist                = [8]byte{55, 136, 205, 107, 107, 173, 4, 31}
	InstructionReleaseEscrow         = [8]byte{146, 253, 129, 233, 20, 145, 181, 206}
	InstructionRefund                = [8]byte{2, 96, 183, 251, 63, 208, 46, 46}
)

// Account discriminators, the first 8 bytes of every program-owned account.
var (
	AccountMarketplace = [8]byte{192, 137, 219, 100, 237, 125, 193, 183}
	AccountUserAccount = [8]byte{211, 33, 136, 16, 186, 110, 242, 127}
	AccountListing     = [8]byte{59, 89, 136, 25, 21, 196, 183, 13}
	AccountEscrow      = [8]byte{31, 213, 123, 187, 186, 22, 218, 155}
)

// ListingOwnerOffset is the byte offset of the serialized owner field inside
// a listing account, used for server-side memcmp filters. The owner follows
// the 8 byte discriminator.
const ListingOwnerOffset = 8
