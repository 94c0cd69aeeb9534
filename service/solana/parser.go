package solana

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// System Program instruction types
const (
	SystemProgramCreateAccountInstruction = uint32(0)
	SystemProgramTransferInstruction      = uint32(2)
)

// Token Program instruction types
const (
	TokenProgramInitializeAccountInstruction = uint8(1)
	TokenProgramTransferInstruction          = uint8(3)
	TokenProgramTransferCheckedInstruction   = uint8(12)
)

// DescribeInstructions decodes the instructions this module builds into
// summaries, in order. Unknown programs or instruction types are an error.
func DescribeInstructions(instructions []solana.Instruction) ([]InstructionSummary, error) {
	out := make([]InstructionSummary, 0, len(instructions))
	for i, inst := range instructions {
		summary, err := DescribeInstruction(inst)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, *summary)
	}
	return out, nil
}

// DescribeInstruction decodes a single System Program or SPL Token instruction.
func DescribeInstruction(inst solana.Instruction) (*InstructionSummary, error) {
	data, err := inst.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to encode instruction data: %w", err)
	}
	accounts := inst.Accounts()

	programID := inst.ProgramID()
	switch {
	case programID.Equals(SystemProgramID):
		return parseSystemInstruction(data, accounts)
	case programID.Equals(TokenProgramID):
		return parseTokenInstruction(data, accounts)
	default:
		return nil, fmt.Errorf("unsupported program %s", programID)
	}
}

func parseSystemInstruction(data []byte, accounts []*solana.AccountMeta) (*InstructionSummary, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("instruction data too short: %d bytes", len(data))
	}

	summary := &InstructionSummary{Program: "system"}
	instructionType := binary.LittleEndian.Uint32(data[0:4])

	switch instructionType {
	case SystemProgramTransferInstruction:
		// System Transfer instruction format:
		// [0..4]  = instruction type (u32, 2 = Transfer)
		// [4..12] = lamports (u64)
		// Accounts: [from, to]
		if len(data) < 12 {
			return nil, fmt.Errorf("transfer instruction data too short: %d bytes", len(data))
		}
		if len(accounts) < 2 {
			return nil, fmt.Errorf("transfer missing accounts")
		}
		lamports := binary.LittleEndian.Uint64(data[4:12])
		summary.Type = "transfer"
		summary.Amount = &lamports
		summary.Accounts = map[string]string{
			"from": accounts[0].PublicKey.String(),
			"to":   accounts[1].PublicKey.String(),
		}

	case SystemProgramCreateAccountInstruction:
		// CreateAccount instruction format:
		// [0..4]   = instruction type (u32, 0 = CreateAccount)
		// [4..12]  = lamports (u64)
		// [12..20] = space (u64)
		// [20..52] = owner program (pubkey)
		// Accounts: [funder, new account]
		if len(data) < 52 {
			return nil, fmt.Errorf("createAccount instruction data too short: %d bytes", len(data))
		}
		if len(accounts) < 2 {
			return nil, fmt.Errorf("createAccount missing accounts")
		}
		lamports := binary.LittleEndian.Uint64(data[4:12])
		space := binary.LittleEndian.Uint64(data[12:20])
		owner := solana.PublicKeyFromBytes(data[20:52]).String()
		summary.Type = "createAccount"
		summary.Amount = &lamports
		summary.Space = &space
		summary.Owner = &owner
		summary.Accounts = map[string]string{
			"funder":      accounts[0].PublicKey.String(),
			"new_account": accounts[1].PublicKey.String(),
		}

	default:
		return nil, fmt.Errorf("unknown system instruction type: %d", instructionType)
	}

	return summary, nil
}

func parseTokenInstruction(data []byte, accounts []*solana.AccountMeta) (*InstructionSummary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty instruction data")
	}

	summary := &InstructionSummary{Program: "spl-token"}
	instructionType := data[0]

	switch instructionType {
	case TokenProgramInitializeAccountInstruction:
		// InitializeAccount has no payload.
		// Accounts: [account, mint, owner, rent sysvar]
		if len(accounts) < 3 {
			return nil, fmt.Errorf("initializeAccount missing accounts")
		}
		summary.Type = "initializeAccount"
		summary.Accounts = map[string]string{
			"account": accounts[0].PublicKey.String(),
			"mint":    accounts[1].PublicKey.String(),
			"owner":   accounts[2].PublicKey.String(),
		}

	case TokenProgramTransferInstruction:
		// Transfer instruction format:
		// [0]     = instruction type (u8, 3 = Transfer)
		// [1..9]  = amount (u64)
		// Accounts: [source, destination, authority]
		if len(data) < 9 {
			return nil, fmt.Errorf("transfer instruction data too short")
		}
		if len(accounts) < 3 {
			return nil, fmt.Errorf("transfer missing accounts")
		}
		amount := binary.LittleEndian.Uint64(data[1:9])
		summary.Type = "transfer"
		summary.Amount = &amount
		summary.Accounts = map[string]string{
			"source":      accounts[0].PublicKey.String(),
			"destination": accounts[1].PublicKey.String(),
			"authority":   accounts[2].PublicKey.String(),
		}

	case TokenProgramTransferCheckedInstruction:
		// TransferChecked instruction format:
		// [0]      = instruction type (u8, 12 = TransferChecked)
		// [1..9]   = amount (u64)
		// [9]      = decimals (u8)
		// Accounts: [source, mint, destination, authority]
		if len(data) < 10 {
			return nil, fmt.Errorf("transferChecked instruction data too short")
		}
		if len(accounts) < 4 {
			return nil, fmt.Errorf("transferChecked missing accounts")
		}
		amount := binary.LittleEndian.Uint64(data[1:9])
		summary.Type = "transferChecked"
		summary.Amount = &amount
		summary.Accounts = map[string]string{
			"source":      accounts[0].PublicKey.String(),
			"mint":        accounts[1].PublicKey.String(),
			"destination": accounts[2].PublicKey.String(),
			"authority":   accounts[3].PublicKey.String(),
		}

	default:
		return nil, fmt.Errorf("unknown token instruction type: %d", instructionType)
	}

	return summary, nil
}
