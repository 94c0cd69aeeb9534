// Package wallet connects a signing session to a Solana RPC connection and
// turns transfer requests into signed, broadcast transactions.
package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brojonat/solwallet/service/metrics"
	"github.com/brojonat/solwallet/service/solana"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// Transfer kinds
const (
	KindNative = "native"
	KindToken  = "token"
)

// Connection is the subset of the RPC client the wallet needs.
// *solana.Client satisfies it.
type Connection interface {
	Cluster() solana.Cluster
	GetTokenAccountBalance(ctx context.Context, account solanago.PublicKey) (*solana.TokenBalance, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solanago.Hash, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	SendRawTransaction(ctx context.Context, rawTx []byte) (solanago.Signature, error)
}

// TransferRequest is one user-intended transfer. An empty TokenAddress means
// a native SOL transfer.
type TransferRequest struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	TokenAddress string          `json:"token_address,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// Validate checks the request fields in order and returns the first failure.
func (r TransferRequest) Validate() error {
	if r.From == "" {
		return ErrFromAddress
	}
	if r.To == "" {
		return ErrToAddress
	}
	if !r.Amount.IsPositive() {
		return ErrAmount
	}
	return nil
}

// TransferPlan is an assembled, unsigned transfer.
type TransferPlan struct {
	Kind         string                 `json:"kind"`
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	TokenMint    string                 `json:"token_mint,omitempty"`
	Amount       uint64                 `json:"amount"` // base units
	FeePayer     solanago.PublicKey     `json:"fee_payer"`
	Instructions []solanago.Instruction `json:"-"`
}

// ConnectResult is the session state after Connect.
type ConnectResult struct {
	IsConnected bool   `json:"is_connected"`
	PublicKey   string `json:"public_key"`
}

// Wallet is the entry point for session and transfer operations.
// It owns the connection and holds a non-owning reference to the session.
type Wallet struct {
	conn    Connection
	session Session
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Wallet. If metrics is nil, no metrics will be recorded.
func New(conn Connection, session Session, m *metrics.Metrics, logger *slog.Logger) *Wallet {
	return &Wallet{
		conn:    conn,
		session: session,
		metrics: m,
		logger:  logger,
	}
}

// Cluster returns the network the wallet's connection is bound to.
func (w *Wallet) Cluster() solana.Cluster {
	return w.conn.Cluster()
}

// Connect asks the session to connect. An already connected session is
// returned as is without prompting again.
func (w *Wallet) Connect(ctx context.Context) (*ConnectResult, error) {
	if w.session == nil {
		return nil, fmt.Errorf("Connect error: %w", ErrNoSession)
	}

	if w.session.IsConnected() {
		if pk := w.session.PublicKey(); !pk.IsZero() {
			return &ConnectResult{IsConnected: true, PublicKey: pk.String()}, nil
		}
	}

	pk, err := w.session.Connect(ctx)
	if w.metrics != nil {
		w.metrics.RecordSessionOperation("connect", err)
	}
	if err != nil {
		w.logger.DebugContext(ctx, "wallet connect failed", "error", err)
		return nil, fmt.Errorf("Connect error: %w", err)
	}

	w.logger.InfoContext(ctx, "wallet connected", "public_key", pk.String())
	return &ConnectResult{IsConnected: true, PublicKey: pk.String()}, nil
}

// Disconnect ends the session. Errors from the session are returned unchanged.
func (w *Wallet) Disconnect(ctx context.Context) error {
	if w.session == nil {
		return ErrNoSession
	}
	err := w.session.Disconnect(ctx)
	if w.metrics != nil {
		w.metrics.RecordSessionOperation("disconnect", err)
	}
	return err
}

// GetTokenBalance reads the balance of a token account.
func (w *Wallet) GetTokenBalance(ctx context.Context, tokenAccount solanago.PublicKey) (*solana.TokenBalance, error) {
	return w.conn.GetTokenAccountBalance(ctx, tokenAccount)
}

// GetTokenAccount derives the associated token account of owner for mint.
// The address is recomputed on every call.
func (w *Wallet) GetTokenAccount(mint, owner solanago.PublicKey) (solanago.PublicKey, error) {
	ata, _, err := solanago.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("failed to compute ATA: %w", err)
	}
	return ata, nil
}

// Transfer validates, assembles, signs and broadcasts a transfer in a single
// attempt.
func (w *Wallet) Transfer(ctx context.Context, req TransferRequest) (solanago.Signature, error) {
	plan, err := w.PlanTransfer(ctx, req)
	if err != nil {
		return solanago.Signature{}, err
	}
	return w.Submit(ctx, plan)
}

// PlanTransfer validates a request and assembles its instructions without
// signing or broadcasting. Validation failures return before any instruction
// is built or any network call is made.
func (w *Wallet) PlanTransfer(ctx context.Context, req TransferRequest) (*TransferPlan, error) {
	w.logger.DebugContext(ctx, "transfer requested",
		"from", req.From,
		"to", req.To,
		"amount", req.Amount,
		"token", req.TokenAddress,
	)

	if err := req.Validate(); err != nil {
		w.reject(rejectReason(err))
		return nil, err
	}

	from, err := parseAddress("from", req.From)
	if err != nil {
		w.reject("invalid_address")
		return nil, err
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		w.reject("invalid_address")
		return nil, err
	}

	amount, err := ToBaseUnits(req.Amount)
	if err != nil {
		w.reject("amount")
		return nil, fmt.Errorf("%w: %w", ErrAmount, err)
	}
	if amount == 0 {
		w.reject("amount")
		return nil, fmt.Errorf("%w: amount is below the smallest base unit", ErrAmount)
	}

	if req.TokenAddress == "" {
		instructions, err := nativeTransferInstructions(from, to, amount)
		if err != nil {
			return nil, err
		}
		return &TransferPlan{
			Kind:         KindNative,
			From:         from.String(),
			To:           to.String(),
			Amount:       amount,
			FeePayer:     from,
			Instructions: instructions,
		}, nil
	}

	return w.planTokenTransfer(ctx, from, to, req.TokenAddress, amount)
}

func (w *Wallet) planTokenTransfer(ctx context.Context, from, to solanago.PublicKey, tokenAddress string, amount uint64) (*TransferPlan, error) {
	if tokenAddress == "" {
		return nil, ErrTokenAddressRequired
	}

	mint, err := parseAddress("token", tokenAddress)
	if err != nil {
		w.reject("invalid_address")
		return nil, err
	}

	fromTokenAccount, err := w.GetTokenAccount(mint, from)
	if err != nil {
		return nil, err
	}
	toTokenAccount, err := w.GetTokenAccount(mint, to)
	if err != nil {
		return nil, err
	}

	w.logger.DebugContext(ctx, "resolved token accounts",
		"mint", mint.String(),
		"from", from.String(),
		"from_token_account", fromTokenAccount.String(),
		"to", to.String(),
		"to_token_account", toTokenAccount.String(),
	)

	// The connected wallet funds the destination token account.
	if w.session == nil {
		return nil, w.transferError(ctx, ErrNoSession)
	}
	if !w.session.IsConnected() {
		return nil, w.transferError(ctx, ErrNotConnected)
	}
	funder := w.session.PublicKey()

	rent, err := w.conn.GetMinimumBalanceForRentExemption(ctx, solana.TokenAccountSize)
	if err != nil {
		return nil, err
	}

	instructions, err := tokenTransferInstructions(tokenTransferAccounts{
		Mint:                    mint,
		Funder:                  funder,
		Source:                  from,
		Destination:             to,
		SourceTokenAccount:      fromTokenAccount,
		DestinationTokenAccount: toTokenAccount,
	}, rent, amount)
	if err != nil {
		return nil, err
	}

	return &TransferPlan{
		Kind:         KindToken,
		From:         from.String(),
		To:           to.String(),
		TokenMint:    mint.String(),
		Amount:       amount,
		FeePayer:     from,
		Instructions: instructions,
	}, nil
}

func (w *Wallet) reject(reason string) {
	if w.metrics != nil {
		w.metrics.RecordTransferRejected(reason)
	}
}

func rejectReason(err error) string {
	switch err {
	case ErrFromAddress:
		return "from_address"
	case ErrToAddress:
		return "to_address"
	case ErrAmount:
		return "amount"
	default:
		return "other"
	}
}

func parseAddress(field, address string) (solanago.PublicKey, error) {
	pk, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("%w: %s %q: %w", ErrInvalidAddress, field, address, err)
	}
	return pk, nil
}
