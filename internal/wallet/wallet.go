// Package wallet binds a network endpoint and an optional signing identity
// into the session used by every builder and read accessor. A session with
// no identity is valid for reads; only signing operations require one.
package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pikavault/pikavault-go/internal/config"
	"github.com/pikavault/pikavault-go/internal/pikavault"
	"go.uber.org/zap"
)

var ErrAccountNotFound = errors.New("account not found")

var ErrNoIdentity = pikavault.ValidationError{Field: "identity", Reason: "no signing identity bound to this session"}

type Session interface {
	Identity() (solana.PublicKey, error)
	CanSign() bool

	FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error)
	ScanProgramAccounts(ctx context.Context, program solana.PublicKey, filters []rpc.RPCFilter) (rpc.GetProgramAccountsResult, error)
	Balance(ctx context.Context, address solana.PublicKey) (uint64, error)

	SubmitAndConfirm(ctx context.Context, instructions []solana.Instruction, signers []solana.PrivateKey) (solana.Signature, error)
}

type session struct {
	client     *rpc.Client
	signer     solana.PrivateKey
	commitment rpc.CommitmentType
	timeout    time.Duration
}

func NewSession(cfg config.SolanaConfig) (Session, error) {
	s := &session{
		client:     rpc.New(cfg.RpcUrl),
		commitment: rpc.CommitmentType(cfg.Commitment),
		timeout:    time.Duration(cfg.Timeout) * time.Second,
	}

	if cfg.PrivateKeyFile != "" {
		signer, err := solana.PrivateKeyFromSolanaKeygenFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, err
		}
		s.signer = signer
	}

	return s, nil
}

// NewSignerSession binds an in-memory key, used by tooling that generates
// throwaway identities.
func NewSignerSession(cfg config.SolanaConfig, signer solana.PrivateKey) Session {
	return &session{
		client:     rpc.New(cfg.RpcUrl),
		signer:     signer,
		commitment: rpc.CommitmentType(cfg.Commitment),
		timeout:    time.Duration(cfg.Timeout) * time.Second,
	}
}

func (s *session) Identity() (solana.PublicKey, error) {
	if s.signer == nil {
		return solana.PublicKey{}, ErrNoIdentity
	}

	return s.signer.PublicKey(), nil
}

func (s *session) CanSign() bool {
	return s.signer != nil
}

func (s *session) FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	out, err := s.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: s.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, pikavault.TransportError{Err: err}
	}

	if out.Value == nil {
		return nil, ErrAccountNotFound
	}

	return out.Value.Data.GetBinary(), nil
}

func (s *session) ScanProgramAccounts(ctx context.Context, program solana.PublicKey, filters []rpc.RPCFilter) (rpc.GetProgramAccountsResult, error) {
	out, err := s.client.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: s.commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    filters,
	})
	if err != nil {
		return nil, pikavault.TransportError{Err: err}
	}

	return out, nil
}

func (s *session) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	out, err := s.client.GetBalance(ctx, address, s.commitment)
	if err != nil {
		return 0, pikavault.TransportError{Err: err}
	}

	return out.Value, nil
}

// SubmitAndConfirm signs, submits and waits a bounded time for confirmation.
// On deadline it returns ErrUnknownOutcome: the transaction may still land,
// so callers re-fetch state before retrying.
func (s *session) SubmitAndConfirm(ctx context.Context, instructions []solana.Instruction, signers []solana.PrivateKey) (solana.Signature, error) {
	payer, err := s.Identity()
	if err != nil {
		return solana.Signature{}, err
	}

	recent, err := s.client.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return solana.Signature{}, pikavault.TransportError{Err: err}
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, err
	}

	keys := append([]solana.PrivateKey{s.signer}, signers...)
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(key) {
				return &keys[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: s.commitment,
	})
	if err != nil {
		return solana.Signature{}, pikavault.ParseSubmitError(err)
	}

	zap.L().With(zap.String("signature", sig.String())).Debug("Solana: transaction submitted")

	if err := s.awaitConfirmation(ctx, sig); err != nil {
		return sig, err
	}

	return sig, nil
}

func (s *session) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return pikavault.ErrUnknownOutcome
		case <-deadline.C:
			return pikavault.ErrUnknownOutcome
		case <-ticker.C:
			out, err := s.client.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				zap.L().With(zap.Error(err)).Warn("Solana: status poll failed")
				continue
			}

			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}

			status := out.Value[0]
			if status.Err != nil {
				return pikavault.ParseTransactionErr(status.Err)
			}

			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed || status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}
