package wallet

import (
	"fmt"

	"github.com/brojonat/solwallet/service/solana"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// tokenTransferAccounts are the addresses a token transfer touches.
type tokenTransferAccounts struct {
	Mint                    solanago.PublicKey
	Funder                  solanago.PublicKey // pays for the destination token account
	Source                  solanago.PublicKey // owner of the source token account
	Destination             solanago.PublicKey // owner of the destination token account
	SourceTokenAccount      solanago.PublicKey
	DestinationTokenAccount solanago.PublicKey
}

// nativeTransferInstructions moves lamports between two system accounts.
func nativeTransferInstructions(from, to solanago.PublicKey, lamports uint64) ([]solanago.Instruction, error) {
	transfer, err := system.NewTransferInstruction(lamports, from, to).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}
	return []solanago.Instruction{transfer}, nil
}

// tokenTransferInstructions creates and initializes the destination token
// account, then moves amount base units into it. The order is significant:
// the transfer references the account the first two instructions set up.
func tokenTransferInstructions(accts tokenTransferAccounts, rentLamports, amount uint64) ([]solanago.Instruction, error) {
	createAccount, err := system.NewCreateAccountInstruction(
		rentLamports,
		solana.TokenAccountSize,
		solanago.TokenProgramID,
		accts.Funder,
		accts.DestinationTokenAccount,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build create account instruction: %w", err)
	}

	initAccount, err := token.NewInitializeAccountInstruction(
		accts.DestinationTokenAccount,
		accts.Mint,
		accts.Destination,
		solanago.SysVarRentPubkey,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize account instruction: %w", err)
	}

	transfer, err := token.NewTransferInstruction(
		amount,
		accts.SourceTokenAccount,
		accts.DestinationTokenAccount,
		accts.Source,
		[]solanago.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build token transfer instruction: %w", err)
	}

	return []solanago.Instruction{createAccount, initAccount, transfer}, nil
}
