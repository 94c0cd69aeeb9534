package wallet

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T, payer solanago.PublicKey, instructions ...solanago.Instruction) *solanago.Transaction {
	t.Helper()
	tx, err := solanago.NewTransaction(instructions, solanago.HashFromBytes(newKey(t).Bytes()), solanago.TransactionPayer(payer))
	require.NoError(t, err)
	return tx
}

func TestKeypairSession_ConnectLifecycle(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)
	session := NewKeypairSession(key)

	assert.False(t, session.IsConnected())
	assert.True(t, session.PublicKey().IsZero())

	pk, err := session.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), pk)
	assert.True(t, session.IsConnected())
	assert.Equal(t, key.PublicKey(), session.PublicKey())

	require.NoError(t, session.Disconnect(context.Background()))
	assert.False(t, session.IsConnected())
	assert.True(t, session.PublicKey().IsZero())
}

func TestKeypairSession_SignRequiresConnection(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)
	session := NewKeypairSession(key)

	tx := newTestTransaction(t, key.PublicKey(), system.NewTransferInstruction(1, key.PublicKey(), newKey(t)).Build())

	_, err = session.SignTransaction(context.Background(), tx)
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestKeypairSession_SignsOwnSlot(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)
	session := NewKeypairSession(key)
	_, err = session.Connect(context.Background())
	require.NoError(t, err)

	tx := newTestTransaction(t, key.PublicKey(), system.NewTransferInstruction(1, key.PublicKey(), newKey(t)).Build())

	signed, err := session.SignTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, signed.Signatures, 1)
	require.NoError(t, signed.VerifySignatures())
}

func TestKeypairSession_PartialSign(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)
	session := NewKeypairSession(key)
	_, err = session.Connect(context.Background())
	require.NoError(t, err)

	// createAccount needs the new account to sign too; the session only has the funder key.
	newAccount := newKey(t)
	tx := newTestTransaction(t, key.PublicKey(),
		system.NewCreateAccountInstruction(1, 165, solanago.TokenProgramID, key.PublicKey(), newAccount).Build(),
	)
	require.Equal(t, uint8(2), tx.Message.Header.NumRequiredSignatures)

	signed, err := session.SignTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, signed.Signatures, 2)
	assert.NotEqual(t, solanago.Signature{}, signed.Signatures[0])
	assert.Equal(t, solanago.Signature{}, signed.Signatures[1])
}

func TestKeypairSession_NoMatchingSigner(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)
	session := NewKeypairSession(key)
	_, err = session.Connect(context.Background())
	require.NoError(t, err)

	other := newKey(t)
	tx := newTestTransaction(t, other, system.NewTransferInstruction(1, other, newKey(t)).Build())

	_, err = session.SignTransaction(context.Background(), tx)
	require.ErrorIs(t, err, ErrNoSigner)
}

func TestLoadKeypairSession(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)

	// solana-keygen files are a JSON array of the 64 secret key bytes
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	session, err := LoadKeypairSession(path)
	require.NoError(t, err)

	pk, err := session.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), pk)

	_, err = LoadKeypairSession(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load keypair")
}
