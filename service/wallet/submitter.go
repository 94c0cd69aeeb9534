package wallet

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// blockhashCommitment is the commitment used when fetching the recent blockhash.
const blockhashCommitment = rpc.CommitmentFinalized

// Submit signs a planned transfer with the session and broadcasts it once.
// The returned signature means the node accepted the transaction, not that it
// was confirmed.
func (w *Wallet) Submit(ctx context.Context, plan *TransferPlan) (solanago.Signature, error) {
	sig, err := w.submit(ctx, plan.Instructions, plan.FeePayer)

	status := "success"
	if err != nil {
		status = "error"
	}
	if w.metrics != nil {
		w.metrics.RecordTransferSubmitted(plan.Kind, status)
	}
	if err != nil {
		return solanago.Signature{}, err
	}

	w.logger.InfoContext(ctx, "transfer submitted",
		"signature", sig.String(),
		"kind", plan.Kind,
		"from", plan.From,
		"to", plan.To,
		"amount", plan.Amount,
	)
	return sig, nil
}

func (w *Wallet) submit(ctx context.Context, instructions []solanago.Instruction, feePayer solanago.PublicKey) (solanago.Signature, error) {
	if w.session == nil {
		return solanago.Signature{}, w.transferError(ctx, ErrNoSession)
	}
	// The session may have ended since the plan was built.
	if !w.session.IsConnected() {
		return solanago.Signature{}, w.transferError(ctx, ErrNotConnected)
	}

	blockhash, err := w.conn.GetLatestBlockhash(ctx, blockhashCommitment)
	if err != nil {
		return solanago.Signature{}, w.transferError(ctx, fmt.Errorf("failed to get recent blockhash: %w", err))
	}

	tx, err := solanago.NewTransaction(instructions, blockhash, solanago.TransactionPayer(feePayer))
	if err != nil {
		return solanago.Signature{}, w.transferError(ctx, fmt.Errorf("failed to build transaction: %w", err))
	}

	signed, err := w.session.SignTransaction(ctx, tx)
	if w.metrics != nil {
		w.metrics.RecordSessionOperation("sign", err)
	}
	if err != nil {
		return solanago.Signature{}, w.transferError(ctx, err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return solanago.Signature{}, w.transferError(ctx, fmt.Errorf("failed to serialize transaction: %w", err))
	}

	sig, err := w.conn.SendRawTransaction(ctx, raw)
	if err != nil {
		return solanago.Signature{}, w.transferError(ctx, err)
	}
	return sig, nil
}

func (w *Wallet) transferError(ctx context.Context, err error) error {
	w.logger.DebugContext(ctx, "transfer failed", "error", err)
	return fmt.Errorf("transfer error: %w", err)
}
