package nats

import (
	"time"

	"github.com/brojonat/solwallet/service/wallet"
	"github.com/gagliardetto/solana-go"
)

// TransferEvent is published to "transfers.{from_address}" after a transfer
// has been accepted by the cluster.
type TransferEvent struct {
	Signature string `json:"signature"`
	Kind      string `json:"kind"`
	Cluster   string `json:"cluster"`

	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	TokenMint   string `json:"token_mint,omitempty"`

	// Amount in base units.
	Amount uint64 `json:"amount"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// FromTransferPlan builds the event for a submitted plan.
func FromTransferPlan(plan *wallet.TransferPlan, sig solana.Signature, cluster string) *TransferEvent {
	return &TransferEvent{
		Signature:   sig.String(),
		Kind:        plan.Kind,
		Cluster:     cluster,
		FromAddress: plan.From,
		ToAddress:   plan.To,
		TokenMint:   plan.TokenMint,
		Amount:      plan.Amount,
		SubmittedAt: time.Now().UTC(),
	}
}
