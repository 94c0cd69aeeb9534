package solana

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return pk.PublicKey()
}

func TestDescribeInstruction_SystemTransfer(t *testing.T) {
	from := newKey(t)
	to := newKey(t)

	inst := system.NewTransferInstruction(1500000000, from, to).Build()

	summary, err := DescribeInstruction(inst)
	require.NoError(t, err)

	assert.Equal(t, "system", summary.Program)
	assert.Equal(t, "transfer", summary.Type)
	require.NotNil(t, summary.Amount)
	assert.Equal(t, uint64(1500000000), *summary.Amount)
	assert.Equal(t, from.String(), summary.Accounts["from"])
	assert.Equal(t, to.String(), summary.Accounts["to"])
}

func TestDescribeInstruction_CreateAccount(t *testing.T) {
	funder := newKey(t)
	newAccount := newKey(t)

	inst := system.NewCreateAccountInstruction(2039280, TokenAccountSize, TokenProgramID, funder, newAccount).Build()

	summary, err := DescribeInstruction(inst)
	require.NoError(t, err)

	assert.Equal(t, "createAccount", summary.Type)
	require.NotNil(t, summary.Amount)
	assert.Equal(t, uint64(2039280), *summary.Amount)
	require.NotNil(t, summary.Space)
	assert.Equal(t, uint64(TokenAccountSize), *summary.Space)
	require.NotNil(t, summary.Owner)
	assert.Equal(t, TokenProgramID.String(), *summary.Owner)
	assert.Equal(t, funder.String(), summary.Accounts["funder"])
	assert.Equal(t, newAccount.String(), summary.Accounts["new_account"])
}

func TestDescribeInstruction_TokenInstructions(t *testing.T) {
	account := newKey(t)
	mint := newKey(t)
	owner := newKey(t)
	source := newKey(t)

	t.Run("initialize account", func(t *testing.T) {
		inst := token.NewInitializeAccountInstruction(account, mint, owner, solana.SysVarRentPubkey).Build()

		summary, err := DescribeInstruction(inst)
		require.NoError(t, err)
		assert.Equal(t, "spl-token", summary.Program)
		assert.Equal(t, "initializeAccount", summary.Type)
		assert.Nil(t, summary.Amount)
		assert.Equal(t, account.String(), summary.Accounts["account"])
		assert.Equal(t, mint.String(), summary.Accounts["mint"])
		assert.Equal(t, owner.String(), summary.Accounts["owner"])
	})

	t.Run("transfer", func(t *testing.T) {
		inst := token.NewTransferInstruction(42, source, account, owner, []solana.PublicKey{}).Build()

		summary, err := DescribeInstruction(inst)
		require.NoError(t, err)
		assert.Equal(t, "transfer", summary.Type)
		require.NotNil(t, summary.Amount)
		assert.Equal(t, uint64(42), *summary.Amount)
		assert.Equal(t, source.String(), summary.Accounts["source"])
		assert.Equal(t, account.String(), summary.Accounts["destination"])
		assert.Equal(t, owner.String(), summary.Accounts["authority"])
	})

	t.Run("transfer checked", func(t *testing.T) {
		data := make([]byte, 10)
		data[0] = TokenProgramTransferCheckedInstruction
		binary.LittleEndian.PutUint64(data[1:9], 7)
		data[9] = 6

		inst := solana.NewInstruction(TokenProgramID, solana.AccountMetaSlice{
			solana.Meta(source).WRITE(),
			solana.Meta(mint),
			solana.Meta(account).WRITE(),
			solana.Meta(owner).SIGNER(),
		}, data)

		summary, err := DescribeInstruction(inst)
		require.NoError(t, err)
		assert.Equal(t, "transferChecked", summary.Type)
		assert.Equal(t, uint64(7), *summary.Amount)
		assert.Equal(t, mint.String(), summary.Accounts["mint"])
	})
}

func TestDescribeInstruction_Errors(t *testing.T) {
	a := newKey(t)
	b := newKey(t)

	tests := []struct {
		name    string
		inst    solana.Instruction
		wantErr string
	}{
		{
			name:    "unsupported program",
			inst:    solana.NewInstruction(newKey(t), solana.AccountMetaSlice{}, []byte{1}),
			wantErr: "unsupported program",
		},
		{
			name:    "system data too short",
			inst:    solana.NewInstruction(SystemProgramID, solana.AccountMetaSlice{solana.Meta(a), solana.Meta(b)}, []byte{2, 0}),
			wantErr: "too short",
		},
		{
			name:    "system transfer missing amount",
			inst:    solana.NewInstruction(SystemProgramID, solana.AccountMetaSlice{solana.Meta(a), solana.Meta(b)}, []byte{2, 0, 0, 0}),
			wantErr: "transfer instruction data too short",
		},
		{
			name:    "unknown system instruction",
			inst:    solana.NewInstruction(SystemProgramID, solana.AccountMetaSlice{}, []byte{9, 0, 0, 0}),
			wantErr: "unknown system instruction type: 9",
		},
		{
			name:    "empty token data",
			inst:    solana.NewInstruction(TokenProgramID, solana.AccountMetaSlice{}, []byte{}),
			wantErr: "empty instruction data",
		},
		{
			name:    "unknown token instruction",
			inst:    solana.NewInstruction(TokenProgramID, solana.AccountMetaSlice{}, []byte{99}),
			wantErr: "unknown token instruction type: 99",
		},
		{
			name:    "token transfer missing accounts",
			inst:    solana.NewInstruction(TokenProgramID, solana.AccountMetaSlice{solana.Meta(a)}, []byte{3, 1, 0, 0, 0, 0, 0, 0, 0}),
			wantErr: "transfer missing accounts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DescribeInstruction(tt.inst)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDescribeInstructions_PreservesOrder(t *testing.T) {
	from := newKey(t)
	to := newKey(t)
	mint := newKey(t)

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(1, TokenAccountSize, TokenProgramID, from, to).Build(),
		token.NewInitializeAccountInstruction(to, mint, to, solana.SysVarRentPubkey).Build(),
		token.NewTransferInstruction(5, from, to, from, []solana.PublicKey{}).Build(),
	}

	summaries, err := DescribeInstructions(instructions)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "createAccount", summaries[0].Type)
	assert.Equal(t, "initializeAccount", summaries[1].Type)
	assert.Equal(t, "transfer", summaries[2].Type)

	_, err = DescribeInstructions([]solana.Instruction{
		instructions[0],
		solana.NewInstruction(newKey(t), solana.AccountMetaSlice{}, nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction 1")
}
