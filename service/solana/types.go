package solana

import (
	"github.com/gagliardetto/solana-go"
)

// TokenBalance is the balance of an SPL token account.
// This is our domain model, independent of the RPC response format.
type TokenBalance struct {
	Account        string `json:"account"`
	Amount         string `json:"amount"` // raw base units, as returned by the node
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"ui_amount"`
}

// InstructionSummary is a human readable description of a single instruction.
type InstructionSummary struct {
	Program  string            `json:"program"`
	Type     string            `json:"type"`
	Accounts map[string]string `json:"accounts"`
	Amount   *uint64           `json:"amount,omitempty"` // lamports or token base units
	Space    *uint64           `json:"space,omitempty"`
	Owner    *string           `json:"owner,omitempty"`
}

// Well-known Solana program IDs
var (
	// SystemProgramID is the native SOL transfer program
	SystemProgramID = solana.SystemProgramID

	// TokenProgramID is the SPL Token program
	TokenProgramID = solana.TokenProgramID
)

// TokenAccountSize is the byte length of an SPL token account.
const TokenAccountSize = 165
