package pikavault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/pikavault/pikavault-go/internal/entity"
)

// DecodeError means fetched bytes do not match the expected layout. It is
// fatal and deliberately distinct from an account simply not existing.
type DecodeError struct {
	Account string
	Reason  string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Account, e.Reason)
}

func decodeAccount(name string, discriminator [8]byte, data []byte, out interface{}) error {
	if len(data) < 8 {
		return DecodeError{Account: name, Reason: "data shorter than discriminator"}
	}

	if !bytes.Equal(data[:8], discriminator[:]) {
		return DecodeError{Account: name, Reason: "discriminator mismatch"}
	}

	if err := bin.NewBorshDecoder(data[8:]).Decode(out); err != nil {
		return DecodeError{Account: name, Reason: err.Error()}
	}

	return nil
}

func encodeAccount(discriminator [8]byte, in interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])

	if err := bin.NewBorshEncoder(buf).Encode(in); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func DecodeMarketplace(data []byte) (entity.Marketplace, error) {
	var m entity.Marketplace
	err := decodeAccount("marketplace", AccountMarketplace, data, &m)
	return m, err
}

func DecodeUserAccount(data []byte) (entity.UserAccount, error) {
	var u entity.UserAccount
	err := decodeAccount("userAccount", AccountUserAccount, data, &u)
	return u, err
}

func DecodeListing(data []byte) (entity.ListingAccount, error) {
	var l entity.ListingAccount
	err := decodeAccount("listingAccount", AccountListing, data, &l)
	return l, err
}

func DecodeEscrow(data []byte) (entity.Escrow, error) {
	var e entity.Escrow
	err := decodeAccount("escrow", AccountEscrow, data, &e)
	return e, err
}

func EncodeMarketplace(m entity.Marketplace) ([]byte, error) {
	return encodeAccount(AccountMarketplace, m)
}

func EncodeUserAccount(u entity.UserAccount) ([]byte, error) {
	return encodeAccount(AccountUserAccount, u)
}

func EncodeListing(l entity.ListingAccount) ([]byte, error) {
	return encodeAccount(AccountListing, l)
}

func EncodeEscrow(e entity.Escrow) ([]byte, error) {
	return encodeAccount(AccountEscrow, e)
}
