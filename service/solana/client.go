package solana

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brojonat/solwallet/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetTokenAccountBalance(
		ctx context.Context,
		account solana.PublicKey,
		commitment rpc.CommitmentType,
	) (*rpc.GetTokenAccountBalanceResult, error)

	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)

	GetMinimumBalanceForRentExemption(
		ctx context.Context,
		dataSize uint64,
		commitment rpc.CommitmentType,
	) (uint64, error)

	SendRawTransaction(
		ctx context.Context,
		rawTx []byte,
		opts rpc.TransactionOpts,
	) (solana.Signature, error)
}

// ErrEmptyResult is returned when the node answers without a value.
var ErrEmptyResult = errors.New("empty RPC result")

// Client is the connection handle used by the wallet.
// It is bound to one cluster and one commitment level at construction and is
// safe for concurrent use.
type Client struct {
	rpc        RPCClient
	cluster    Cluster
	commitment rpc.CommitmentType
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new Solana client.
// The cluster is also used for metrics labeling.
// If metrics is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, cluster Cluster, commitment rpc.CommitmentType, m *metrics.Metrics, logger *slog.Logger) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentProcessed
	}
	return &Client{
		rpc:        rpcClient,
		cluster:    cluster,
		commitment: commitment,
		logger:     logger,
		metrics:    m,
	}
}

// Cluster returns the network this client is bound to.
func (c *Client) Cluster() Cluster {
	return c.cluster
}

// GetTokenAccountBalance reads the balance of a token account.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (*TokenBalance, error) {
	start := time.Now()
	out, err := c.rpc.GetTokenAccountBalance(ctx, account, c.commitment)
	c.record(ctx, "GetTokenAccountBalance", start, err)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Value == nil {
		return nil, ErrEmptyResult
	}

	return &TokenBalance{
		Account:        account.String(),
		Amount:         out.Value.Amount,
		Decimals:       out.Value.Decimals,
		UIAmountString: out.Value.UiAmountString,
	}, nil
}

// GetLatestBlockhash fetches the most recent blockhash at the given commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error) {
	start := time.Now()
	out, err := c.rpc.GetLatestBlockhash(ctx, commitment)
	c.record(ctx, "GetLatestBlockhash", start, err)
	if err != nil {
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, ErrEmptyResult
	}
	return out.Value.Blockhash, nil
}

// GetMinimumBalanceForRentExemption returns the lamports an account of
// dataSize bytes must hold. The value depends on network state and is never cached.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	start := time.Now()
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, c.commitment)
	c.record(ctx, "GetMinimumBalanceForRentExemption", start, err)
	return lamports, err
}

// SendRawTransaction broadcasts a signed, serialized transaction.
// It does not wait for confirmation.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx []byte) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpc.SendRawTransaction(ctx, rawTx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	c.record(ctx, "SendRawTransaction", start, err)
	return sig, err
}

func (c *Client) record(ctx context.Context, method string, start time.Time, err error) {
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		c.logger.DebugContext(ctx, "solana RPC call failed",
			"method", method,
			"cluster", c.cluster,
			"error", err,
		)
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall(method, status, string(c.cluster), duration)
	}
}
