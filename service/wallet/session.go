package wallet

import (
	"context"
	"fmt"
	"sync"

	solanago "github.com/gagliardetto/solana-go"
)

// Session is the wallet that holds the user's keys, typically a browser
// extension. The Wallet only keeps a reference to it and never assumes the
// session is still connected.
type Session interface {
	Connect(ctx context.Context) (solanago.PublicKey, error)
	Disconnect(ctx context.Context) error
	SignTransaction(ctx context.Context, tx *solanago.Transaction) (*solanago.Transaction, error)
	IsConnected() bool
	PublicKey() solanago.PublicKey
}

// KeypairSession is a Session backed by a local private key.
type KeypairSession struct {
	mu        sync.RWMutex
	key       solanago.PrivateKey
	connected bool
}

// NewKeypairSession wraps a private key. The session starts disconnected.
func NewKeypairSession(key solanago.PrivateKey) *KeypairSession {
	return &KeypairSession{key: key}
}

// LoadKeypairSession reads a solana-keygen JSON key file.
func LoadKeypairSession(path string) (*KeypairSession, error) {
	key, err := solanago.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	return NewKeypairSession(key), nil
}

func (s *KeypairSession) Connect(ctx context.Context) (solanago.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return s.key.PublicKey(), nil
}

func (s *KeypairSession) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *KeypairSession) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// PublicKey returns the zero key while disconnected.
func (s *KeypairSession) PublicKey() solanago.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return solanago.PublicKey{}
	}
	return s.key.PublicKey()
}

// SignTransaction fills the signature slot of every required signer this
// session holds a key for. Slots for other signers are left empty, the same
// way an extension wallet only signs for its own account.
func (s *KeypairSession) SignTransaction(ctx context.Context, tx *solanago.Transaction) (*solanago.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return nil, ErrNotConnected
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) < required {
		signatures := make([]solanago.Signature, required)
		copy(signatures, tx.Signatures)
		tx.Signatures = signatures
	}

	owner := s.key.PublicKey()
	signed := 0
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if !tx.Message.AccountKeys[i].Equals(owner) {
			continue
		}
		sig, err := s.key.Sign(message)
		if err != nil {
			return nil, fmt.Errorf("failed to sign: %w", err)
		}
		tx.Signatures[i] = sig
		signed++
	}
	if signed == 0 {
		return nil, ErrNoSigner
	}

	return tx, nil
}
